package middleware

// identity.go defines the context keys set by JWTAuth and helpers to read
// them back in handlers and other middleware.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mytime501/saramin/internal/utils"
)

const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Claims returns the verified access token claims, or nil on public routes.
func Claims(c echo.Context) *utils.Claims {
	cl, _ := c.Get(ClaimsKey).(*utils.Claims)
	return cl
}

// UserID returns the authenticated user's id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" when unauthenticated.
func Role(c echo.Context) string {
	r, _ := c.Get(RoleKey).(string)
	return r
}

// userKey identifies the caller for rate limiting; "anon" when unknown.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
