// Package router defines how HTTP routes are registered for the API.
package router

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/mytime501/saramin/docs"
	"github.com/mytime501/saramin/internal/config"
	"github.com/mytime501/saramin/internal/handler"
	"github.com/mytime501/saramin/internal/middleware"
	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/service"
)

// Deps carries everything the routes need. Redis and Events may be nil.
type Deps struct {
	Cfg    config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Events handler.EventPublisher
	Log    *zap.Logger
}

// Register installs the global middleware chain and every route group.
func Register(e *echo.Echo, d Deps) {
	if d.Events == nil {
		// A nil *Publisher drops events.
		d.Events = (*service.Publisher)(nil)
	}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.HTTPErrorHandler = middleware.ErrorHandler(d.Log)

	var (
		users         = repository.NewUserRepo(d.DB)
		tokens        = repository.NewTokenRepo(d.DB)
		jobs          = repository.NewJobRepo(d.DB)
		apps          = repository.NewApplicationRepo(d.DB)
		interviews    = repository.NewInterviewRepo(d.DB)
		companies     = repository.NewCompanyRepo(d.DB)
		reviews       = repository.NewReviewRepo(d.DB)
		bookmarks     = repository.NewBookmarkRepo(d.DB)
		notifications = repository.NewNotificationRepo(d.DB)
	)

	auth := handler.NewAuthHandler(d.Cfg.JWT, users, tokens, d.Log)
	jobH := handler.NewJobHandler(jobs, d.Log)
	appH := handler.NewApplicationHandler(apps, jobs, d.Events, d.Log)
	ivH := handler.NewInterviewHandler(interviews, d.Events, d.Log)
	coH := handler.NewCompanyHandler(companies, d.Log)
	rvH := handler.NewReviewHandler(reviews, jobs, d.Log)
	bmH := handler.NewBookmarkHandler(bookmarks, jobs, d.Log)
	ntH := handler.NewNotificationHandler(notifications, d.Log)

	e.GET("/healthz", handler.Health{DB: d.DB, Redis: d.Redis}.Check)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	limit := middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis, d.Log)

	pub := e.Group("/auth", limit)
	pub.POST("/register", auth.Register)
	pub.POST("/login", auth.Login)
	pub.POST("/refresh", auth.Refresh)
	pub.POST("/logout", auth.Logout)

	g := e.Group("", middleware.JWTAuth(d.Cfg.JWT.Secret), limit)
	writer := middleware.RequireRole(model.RoleCompanyUser, model.RoleAdmin)
	cache := middleware.NewRedisCache(d.Cfg.Cache, d.Redis, d.Log)
	// Job writes may create companies and company writes rename jobs' company.
	evict := middleware.InvalidateCache(d.Cfg.Cache, d.Redis, d.Log, "/jobs", "/companies")

	g.GET("/auth/profile", auth.GetProfile)
	g.PUT("/auth/profile", auth.UpdateProfile)
	g.DELETE("/auth/profile", auth.DeleteProfile)

	g.GET("/jobs", jobH.List, cache)
	g.GET("/jobs/:id", jobH.Get)
	g.POST("/jobs", jobH.Create, writer, evict)
	g.PUT("/jobs/:id", jobH.Update, writer, evict)
	g.DELETE("/jobs/:id", jobH.Delete, writer, evict)

	g.POST("/applications", appH.Apply)
	g.GET("/applications", appH.List)
	g.DELETE("/applications/:id", appH.Withdraw)
	g.GET("/applications/job/:jobId/summary", appH.Summary, writer)

	g.POST("/interviews/:applicationId", ivH.Create)
	g.GET("/interviews", ivH.List)
	g.PUT("/interviews/:id", ivH.Update)
	g.DELETE("/interviews/:id", ivH.Delete)

	g.GET("/companies", coH.List, cache)
	g.GET("/companies/:id", coH.Get)
	g.POST("/companies", coH.Create, writer, evict)
	g.PUT("/companies/:id", coH.Update, writer, evict)
	g.DELETE("/companies/:id", coH.Delete, writer, evict)

	g.POST("/jobreviews", rvH.Create)
	g.GET("/jobreviews/:jobId", rvH.ListByJob)

	g.POST("/bookmarks", bmH.Toggle)
	g.GET("/bookmarks", bmH.List)

	g.GET("/notifications", ntH.List)
	g.PATCH("/notifications/:id/read", ntH.MarkRead)
}
