package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mytime501/saramin/internal/response"
)

// Health reports liveness together with the reachability of the database
// and, when configured, Redis. It answers 503 if the database is down.
type Health struct {
	DB    *sql.DB
	Redis *redis.Client
}

// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /healthz [get]
func (h Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	out := map[string]string{"status": "ok", "db": "ok"}
	status := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		out["status"], out["db"] = "degraded", "down"
		status = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		out["redis"] = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			out["redis"] = "down"
		}
	}
	return response.Success(c, status, out)
}
