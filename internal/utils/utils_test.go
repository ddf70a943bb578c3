package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

var alice = Identity{ID: 7, Email: "alice@example.com", Name: "Alice", Role: "user"}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, alice, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims, err := ParseToken(testSecret, tok.Token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Identity())
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestRefreshAndAccessShareClaims(t *testing.T) {
	access, err := NewAccessToken(testSecret, alice, time.Minute)
	require.NoError(t, err)
	refresh, err := NewRefreshToken(testSecret, alice, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, refresh.Exp.After(access.Exp))

	rc, err := ParseToken(testSecret, refresh.Token, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, alice, rc.Identity())
}

func TestParseTokenWrongType(t *testing.T) {
	refresh, err := NewRefreshToken(testSecret, alice, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, refresh.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseTokenExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, alice, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tok.Token, TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseTokenBadSignature(t *testing.T) {
	tok, err := NewAccessToken(testSecret, alice, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("another-secret-0123456", tok.Token, TokenTypeAccess)
	require.Error(t, err)
	assert.False(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
