// Package crawler seeds the job catalog from the Saramin search listing.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mytime501/saramin/internal/config"
	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
)

// Store is the part of the job repository the crawler writes through.
type Store interface {
	Count(ctx context.Context) (int64, error)
	UpsertByLink(ctx context.Context, j *model.Job) (repository.UpsertResult, error)
}

var kst = time.FixedZone("KST", 9*60*60)

// Report summarizes one crawl.
type Report struct {
	Pages    int
	Parsed   int
	Inserted int
	Updated  int
	Skipped  int
	Errors   []error

	mu sync.Mutex
}

func (r *Report) addErr(err error) {
	r.mu.Lock()
	r.Errors = append(r.Errors, err)
	r.mu.Unlock()
}

func (r *Report) count(res repository.UpsertResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch res {
	case repository.UpsertInserted:
		r.Inserted++
	case repository.UpsertUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
}

// Err joins every recorded error, or returns nil.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.Errors...)
}

type Crawler struct {
	cfg    config.CrawlerConfig
	store  Store
	client *http.Client
	log    *zap.Logger
	now    func() time.Time
}

func New(cfg config.CrawlerConfig, store Store, log *zap.Logger) *Crawler {
	return &Crawler{
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("crawler"),
		now:    time.Now,
	}
}

// SeedIfEmpty crawls only when the jobs table has no rows. It returns a nil
// report when the crawl was skipped.
func (c *Crawler) SeedIfEmpty(ctx context.Context) (*Report, error) {
	n, err := c.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	if n > 0 {
		c.log.Info("jobs already present, skipping seed", zap.Int64("jobs", n))
		return nil, nil
	}
	rep := c.Run(ctx)
	c.log.Info("seed finished",
		zap.Int("pages", rep.Pages),
		zap.Int("parsed", rep.Parsed),
		zap.Int("inserted", rep.Inserted),
		zap.Int("updated", rep.Updated),
		zap.Int("skipped", rep.Skipped),
		zap.Int("errors", len(rep.Errors)))
	return rep, nil
}

// Run fetches the configured pages one after another. A page that fails to
// load is recorded and skipped.
func (c *Crawler) Run(ctx context.Context) *Report {
	rep := &Report{}
	for page := 1; page <= c.cfg.Pages; page++ {
		if err := ctx.Err(); err != nil {
			rep.addErr(err)
			break
		}
		listings, err := c.fetchPage(ctx, page)
		if err != nil {
			c.log.Warn("fetch page failed", zap.Int("page", page), zap.Error(err))
			rep.addErr(fmt.Errorf("page %d: %w", page, err))
			continue
		}
		rep.Pages++
		c.storePage(ctx, page, listings, rep)
	}
	return rep
}

func (c *Crawler) pageURL(page int) (*url.URL, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("searchword", c.cfg.Keyword)
	q.Set("recruitPage", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u, nil
}

func (c *Crawler) fetchPage(ctx context.Context, page int) ([]Listing, error) {
	u, err := c.pageURL(page)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParsePage(doc, u), nil
}

// storePage upserts the page's listings with at most cfg.Workers in flight
// and waits for all of them before returning.
func (c *Crawler) storePage(ctx context.Context, page int, listings []Listing, rep *Report) {
	now := c.now().In(kst)

	var g errgroup.Group
	g.SetLimit(max(c.cfg.Workers, 1))
	for i, l := range listings {
		job, err := l.Job(now)
		rep.mu.Lock()
		rep.Parsed++
		if err != nil {
			rep.Skipped++
		}
		rep.mu.Unlock()
		if err != nil {
			c.log.Debug("listing discarded", zap.Int("page", page), zap.Int("item", i), zap.Error(err))
			continue
		}

		g.Go(func() error {
			res, err := c.store.UpsertByLink(ctx, job)
			if err != nil {
				c.log.Warn("upsert job failed", zap.String("link", job.Link), zap.Error(err))
				rep.addErr(fmt.Errorf("page %d item %d (%s): %w", page, i, job.Link, err))
				return nil
			}
			rep.count(res)
			return nil
		})
	}
	_ = g.Wait()
}
