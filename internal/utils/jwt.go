package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA‑256 hashing for stored refresh tokens
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is presented where an
// access token is expected, or the other way round.
var ErrWrongTokenType = errors.New("wrong token type")

// Claims are the identity claims carried by both access and refresh
// tokens. Type distinguishes the two so neither can stand in for the other.
type Claims struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Identity is the subset of a user needed to issue tokens.
type Identity struct {
	ID    uint64
	Email string
	Name  string
	Role  string
}

// SignedToken is a serialized JWT with its expiry.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs a short-lived HS256 access token for id.
func NewAccessToken(secret string, id Identity, ttl time.Duration) (SignedToken, error) {
	return newToken(secret, id, TokenTypeAccess, ttl)
}

// NewRefreshToken signs a long-lived HS256 refresh token carrying the same
// identity claims as the access token.
func NewRefreshToken(secret string, id Identity, ttl time.Duration) (SignedToken, error) {
	return newToken(secret, id, TokenTypeRefresh, ttl)
}

func newToken(secret string, id Identity, typ string, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := &Claims{
		ID:    id.ID,
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(id.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies signature and expiry of raw and checks that it is of
// the wanted type. Expired tokens yield an error matching jwt.ErrTokenExpired.
func ParseToken(secret, raw, wantType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.Type != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Identity returns the identity the claims were issued for.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.ID, Email: c.Email, Name: c.Name, Role: c.Role}
}

// HashToken returns the SHA‑256 hash of a raw token as a hex string.
// Only this hash is persisted for refresh tokens.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
