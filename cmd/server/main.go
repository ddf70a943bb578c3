// @title Saramin Job Board API
// @version 1.0
// @description Job postings, applications, interviews, companies, reviews, bookmarks and notifications.
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <JWT>

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/config"
	"github.com/mytime501/saramin/internal/crawler"
	"github.com/mytime501/saramin/internal/database"
	"github.com/mytime501/saramin/internal/logger"
	"github.com/mytime501/saramin/internal/queue"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/router"
	"github.com/mytime501/saramin/internal/service"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if n, err := repository.NewTokenRepo(db).PurgeExpired(ctx); err != nil {
		log.Warn("purge expired refresh tokens failed", zap.Error(err))
	} else if n > 0 {
		log.Info("purged expired refresh tokens", zap.Int64("count", n))
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	pub := service.NewPublisher(cfg.Queue.URL, log)
	if cfg.Queue.URL != "" {
		consumer := queue.NewConsumer(cfg.Queue.URL, repository.NewNotificationRepo(db), log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, events and notifications disabled")
	}

	if cfg.Crawler.Enabled {
		seeder := crawler.New(cfg.Crawler, repository.NewJobRepo(db), log)
		go func() {
			rep, err := seeder.SeedIfEmpty(ctx)
			if err != nil {
				log.Error("seed failed", zap.Error(err))
				return
			}
			if rep != nil && rep.Err() != nil {
				log.Warn("seed finished with errors", zap.Error(rep.Err()))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, router.Deps{Cfg: cfg, DB: db, Redis: rdb, Events: pub, Log: log})

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
