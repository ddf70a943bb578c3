package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/response"
)

// ErrorHandler renders errors returned by echo itself (unknown routes,
// wrong methods, oversized bodies, recovered panics) in the JSON envelope.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			log.Error("unhandled error",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
			_ = response.InternalError(c)
			return
		}
		if he.Internal != nil {
			log.Warn("http error", zap.Int("status", he.Code), zap.Error(he.Internal))
		}
		if he.Code >= http.StatusInternalServerError {
			_ = response.InternalError(c)
			return
		}

		msg, ok := he.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(he.Code)
		}
		_ = response.Error(c, he.Code, statusCode(he.Code), strings.ToLower(msg))
	}
}

// statusCode turns 405 into METHOD_NOT_ALLOWED and so on.
func statusCode(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	}
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
