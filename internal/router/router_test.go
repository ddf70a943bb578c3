package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/config"
	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/response"
	"github.com/mytime501/saramin/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newServer(t *testing.T) *echo.Echo {
	e, _ := build(t, nil, func(*config.Config) {})
	return e
}

// build registers every route against a sqlmock database and, when rdb is
// set, a Redis client. tune adjusts the config before registration.
func build(t *testing.T, rdb *redis.Client, tune func(*config.Config)) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{JWT: config.JWTConfig{Secret: testSecret, AccessTTLMin: 60, RefreshTTLDays: 7, BcryptCost: 4}}
	tune(&cfg)

	e := echo.New()
	Register(e, Deps{Cfg: cfg, DB: db, Redis: rdb, Log: zap.NewNop()})
	return e, mock
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "192.0.2.1:40000"
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, role string) string {
	return tokenOf(t, 7, role)
}

func tokenOf(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, utils.Identity{ID: id, Email: "kim@example.com", Name: "Kim", Role: role}, time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func errorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, response.StatusError, env.Status)
	return env
}

func TestHealthIsPublicAndTagged(t *testing.T) {
	rec := serve(newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestCatalogRequiresToken(t *testing.T) {
	e := newServer(t)
	for _, path := range []string{"/jobs", "/companies", "/applications", "/notifications"} {
		rec := serve(e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "TOKEN_REQUIRED", path)
	}
}

func TestWriteRoutesRequireCompanyRole(t *testing.T) {
	e := newServer(t)
	tok := tokenFor(t, model.RoleUser)
	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/jobs"},
		{http.MethodPut, "/jobs/1"},
		{http.MethodDelete, "/jobs/1"},
		{http.MethodPost, "/companies"},
		{http.MethodGet, "/applications/job/1/summary"},
	} {
		rec := serve(e, r.method, r.path, tok)
		assert.Equal(t, http.StatusForbidden, rec.Code, r.path)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN", r.path)
	}
}

func TestCompanyRolePassesGateAndIsValidated(t *testing.T) {
	rec := serve(newServer(t), http.MethodPost, "/jobs", tokenFor(t, model.RoleCompanyUser))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestFrameworkErrorsUseEnvelope(t *testing.T) {
	e := newServer(t)
	tok := tokenFor(t, model.RoleUser)

	rec := serve(e, http.MethodGet, "/nope", tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorEnvelope(t, rec).Code)

	rec = serve(e, http.MethodPatch, "/jobs", tok)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code)
	assert.NotEmpty(t, errorEnvelope(t, rec).Code)
}

func TestRecoveredPanicUsesEnvelope(t *testing.T) {
	e := newServer(t)
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := errorEnvelope(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
	assert.NotContains(t, env.Message, "boom")
}

func TestSwaggerIsServed(t *testing.T) {
	rec := serve(newServer(t), http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/jobs/{id}"`)
}

func TestRateLimitKeysAuthenticatedCaller(t *testing.T) {
	e, _ := build(t, newRedis(t), func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{
			Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
			TTL: time.Hour, KeyStrategy: "ip_user_route", Prefix: "rl", Debug: true,
		}
	})

	rec := serve(e, http.MethodGet, "/jobs/abc", tokenOf(t, 7, model.RoleUser))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rl:ip:192.0.2.1:user:7:route:GET /jobs/:id", rec.Header().Get("X-RateLimit-Key"))

	rec = serve(e, http.MethodGet, "/jobs/abc", tokenOf(t, 7, model.RoleUser))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorEnvelope(t, rec).Code)

	// Same address, different user: separate bucket.
	rec = serve(e, http.MethodGet, "/jobs/abc", tokenOf(t, 8, model.RoleUser))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rl:ip:192.0.2.1:user:8:route:GET /jobs/:id", rec.Header().Get("X-RateLimit-Key"))

	rec = serve(e, http.MethodPost, "/auth/login", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rl:ip:192.0.2.1:user:anon@192.0.2.1:route:POST /auth/login", rec.Header().Get("X-RateLimit-Key"))
}

func TestWritesEvictCachedListings(t *testing.T) {
	e, mock := build(t, newRedis(t), func(cfg *config.Config) {
		cfg.Cache = config.CacheConfig{Enabled: true, RawMethods: "GET", TTLSeconds: 30, KeyStrategy: "route_query", Prefix: "cache"}
	})
	reader := tokenFor(t, model.RoleUser)
	expectListing := func(title string) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY j.created_at DESC")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "name", "deadline"}).AddRow(1, title, "Acme", "2024-07-31"))
	}

	expectListing("Backend")
	rec := serve(e, http.MethodGet, "/jobs", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = serve(e, http.MethodGet, "/jobs", reader)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id = ?")).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec = serve(e, http.MethodDelete, "/jobs/1", tokenFor(t, model.RoleCompanyUser))
	require.Equal(t, http.StatusNoContent, rec.Code)

	expectListing("Frontend")
	rec = serve(e, http.MethodGet, "/jobs", reader)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Frontend")
	require.NoError(t, mock.ExpectationsWereMet())
}
