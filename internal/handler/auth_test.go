package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/config"
	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/utils"
)

const authSecret = "0123456789abcdef"

var kim = utils.Identity{ID: 7, Email: "kim@example.com", Name: "Kim", Role: model.RoleUser}

func newAuth(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	cfg := config.JWTConfig{Secret: authSecret, AccessTTLMin: 60, RefreshTTLDays: 7, BcryptCost: 4}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), zap.NewNop()), mock
}

func userRows(id uint64, hash string) *sqlmock.Rows {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at", "updated_at"}).
		AddRow(id, "kim@example.com", hash, "Kim", model.RoleUser, now, now)
}

func storedRefresh(userID uint64, revoked any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
		AddRow(userID, time.Now().UTC().Add(24*time.Hour), revoked)
}

func refreshBody(token string) string {
	return `{"refreshToken":"` + token + `"}`
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuth(t)
	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("kim@example.com").
		WillReturnRows(userRows(7, hash))

	rec := call(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"kim@example.com","password":"secret2"}`, 0, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_PASSWORD", envelope(t, rec).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	h, mock := newAuth(t)
	tok, err := utils.NewRefreshToken(authSecret, kim, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = ?")).
		WithArgs(utils.HashToken(tok.Token)).
		WillReturnRows(storedRefresh(7, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(userRows(7, "x"))

	rec := call(t, h.Refresh, http.MethodPost, "/auth/refresh", refreshBody(tok.Token), 0, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data accessResp `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	claims, err := utils.ParseToken(authSecret, out.Data.AccessToken, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRejectsUnusableTokens(t *testing.T) {
	expired, err := utils.NewRefreshToken(authSecret, kim, -time.Minute)
	require.NoError(t, err)
	access, err := utils.NewAccessToken(authSecret, kim, time.Hour)
	require.NoError(t, err)
	foreign, err := utils.NewRefreshToken("another-secret-of-16+", kim, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired.Token,
		"access token": access.Token,
		"wrong secret": foreign.Token,
		"garbage":      "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			h, mock := newAuth(t)
			rec := call(t, h.Refresh, http.MethodPost, "/auth/refresh", refreshBody(token), 0, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "INVALID_REFRESH", envelope(t, rec).Code)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRefreshRejectsStoredState(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
	}{
		{"revoked", storedRefresh(7, time.Now().UTC().Add(-time.Minute))},
		{"unknown hash", sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"})},
		{"other owner", storedRefresh(8, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newAuth(t)
			tok, err := utils.NewRefreshToken(authSecret, kim, time.Hour)
			require.NoError(t, err)

			mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = ?")).
				WithArgs(utils.HashToken(tok.Token)).
				WillReturnRows(tt.rows)

			rec := call(t, h.Refresh, http.MethodPost, "/auth/refresh", refreshBody(tok.Token), 0, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "INVALID_REFRESH", envelope(t, rec).Code)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRefreshForDeletedUser(t *testing.T) {
	h, mock := newAuth(t)
	tok, err := utils.NewRefreshToken(authSecret, kim, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = ?")).
		WillReturnRows(storedRefresh(7, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := call(t, h.Refresh, http.MethodPost, "/auth/refresh", refreshBody(tok.Token), 0, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH", envelope(t, rec).Code)
}
