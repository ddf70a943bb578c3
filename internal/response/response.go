// Package response writes the JSON envelope shared by every endpoint:
// {"status":"success","data":...} or {"status":"error","code":...,"message":...}.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps all API responses in a consistent structure.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Pagination is attached to paginated listings.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	PageSize    int   `json:"pageSize"`
}

// Success writes data with the given status code.
func Success(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Status: StatusSuccess, Data: data})
}

func OK(c echo.Context, data any) error {
	return Success(c, http.StatusOK, data)
}

func Created(c echo.Context, data any) error {
	return Success(c, http.StatusCreated, data)
}

// Error writes an error envelope.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Envelope{Status: StatusError, Code: code, Message: message})
}

func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// ValidationError is a 400 carrying all violation messages joined together.
func ValidationError(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Unauthorized(c echo.Context, code, message string) error {
	return Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c echo.Context, code, message string) error {
	return Error(c, http.StatusForbidden, code, message)
}

func NotFound(c echo.Context, message string) error {
	if message == "" {
		message = "resource not found"
	}
	return Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(c echo.Context, code, message string) error {
	return Error(c, http.StatusConflict, code, message)
}

func TooManyRequests(c echo.Context, message string) error {
	if message == "" {
		message = "rate limit exceeded"
	}
	return Error(c, http.StatusTooManyRequests, "RATE_LIMITED", message)
}

// InternalError sends a generic 500. Never pass internal error text here.
func InternalError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
