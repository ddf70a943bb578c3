package crawler

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mytime501/saramin/internal/model"
)

// Listing is one search result as scraped, before normalization.
type Listing struct {
	Title          string
	Company        string
	Link           string
	Location       string
	Experience     string
	Education      string
	EmploymentType string
	Deadline       string
	TechStack      []string
	Salary         string
	Description    string
}

// ErrIncomplete marks a listing missing its title, company or link.
var ErrIncomplete = errors.New("listing is missing title, company or link")

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// conditionSep splits a combined "경력 · 정규직" condition. A bare "·"
	// as in "신입·경력" is part of one value and is kept.
	conditionSep = regexp.MustCompile(`\s+·\s+`)
)

func clean(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ParsePage extracts every result item of a search page. Relative links
// are resolved against base.
func ParsePage(doc *goquery.Document, base *url.URL) []Listing {
	var out []Listing
	doc.Find("div.item_recruit").Each(func(_ int, item *goquery.Selection) {
		out = append(out, parseItem(item, base))
	})
	return out
}

func parseItem(item *goquery.Selection, base *url.URL) Listing {
	titleLink := item.Find("h2.job_tit a").First()
	l := Listing{
		Title:   clean(titleLink.AttrOr("title", titleLink.Text())),
		Company: clean(item.Find("strong.corp_name a").First().Text()),
		Link:    resolveLink(base, titleLink.AttrOr("href", "")),
	}

	var conds []string
	item.Find("div.job_condition span").Each(func(_ int, sp *goquery.Selection) {
		conds = append(conds, clean(sp.Text()))
	})
	at := func(i int) string {
		if i < len(conds) {
			return conds[i]
		}
		return ""
	}
	l.Location, l.Experience, l.Education, l.EmploymentType = at(0), at(1), at(2), at(3)
	if parts := conditionSep.Split(l.Experience, 2); len(parts) == 2 {
		l.Experience = strings.TrimSpace(parts[0])
		l.EmploymentType = strings.TrimSpace(parts[1])
	}

	l.Deadline = clean(item.Find("div.job_date span.date").First().Text())

	sector := item.Find("div.job_sector").First()
	sector.Find("a").Each(func(_ int, a *goquery.Selection) {
		if t := clean(a.Text()); t != "" {
			l.TechStack = append(l.TechStack, t)
		}
	})
	l.Description = clean(sector.Text())
	l.Salary = clean(item.Find("div.area_badge span.badge").First().Text())
	return l
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// Job normalizes the listing into a job row. The deadline is resolved
// relative to now.
func (l Listing) Job(now time.Time) (*model.Job, error) {
	if l.Title == "" || l.Company == "" || l.Link == "" {
		return nil, ErrIncomplete
	}
	return &model.Job{
		Title:          l.Title,
		Company:        l.Company,
		Location:       l.Location,
		Experience:     l.Experience,
		Education:      l.Education,
		EmploymentType: l.EmploymentType,
		Deadline:       ParseDeadline(l.Deadline, now),
		TechStack:      model.JoinTechStack(l.TechStack),
		Salary:         l.Salary,
		Description:    l.Description,
		Link:           l.Link,
	}, nil
}
