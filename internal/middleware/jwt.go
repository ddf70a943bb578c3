package middleware

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mytime501/saramin/internal/response"
	"github.com/mytime501/saramin/internal/utils"
)

// JWTAuth validates a Bearer access token and stores its claims, user id
// and role in the request context. A missing token and an invalid token
// are both 403; only an expired token is 401 so clients know to refresh.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(auth, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !found || raw == "" {
				return response.Forbidden(c, "TOKEN_REQUIRED", "access token is required")
			}

			claims, err := utils.ParseToken(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return response.Unauthorized(c, "TOKEN_EXPIRED", "access token has expired")
				}
				return response.Forbidden(c, "TOKEN_INVALID", "access token is invalid")
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.ID)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}
