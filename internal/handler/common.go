package handler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/middleware"
	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/queue"
	"github.com/mytime501/saramin/internal/response"
)

// reqTimeout bounds every database round trip made by a handler.
const reqTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), reqTimeout)
}

// EventPublisher is satisfied by *service.Publisher, including a nil one.
type EventPublisher interface {
	PublishAsync(ev queue.ApplicationEvent)
}

var phoneRe = regexp.MustCompile(`^0\d{1,2}-\d{3,4}-\d{4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return v
}

// describe renders one violation as a readable sentence.
func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "url":
		return field + " must be a valid URL"
	case "email":
		return field + " must be a valid email address"
	case "phone":
		return field + " must look like 02-123-4567 or 010-1234-5678"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// validationMessage joins every violation in err into one message.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, describe(fe))
	}
	return strings.Join(msgs, "; ")
}

// bindValid binds the body into dst and validates it. On failure the 400
// response has already been written and the returned error is its result.
func bindValid(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return false, response.ValidationError(c, validationMessage(err))
	}
	return true, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter; absent is 0.
func queryID(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// pageParam returns the requested 1-based page, defaulting to 1.
func pageParam(c echo.Context) int {
	p, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func pagination(page int, total int64) response.Pagination {
	return response.Pagination{
		CurrentPage: page,
		TotalPages:  model.TotalPages(total),
		TotalItems:  total,
		PageSize:    model.PageSize,
	}
}

// caller returns the authenticated user id and whether their role may see
// other users' data.
func caller(c echo.Context) (uint64, bool) {
	id, _ := middleware.UserID(c)
	return id, model.IsPrivileged(middleware.Role(c))
}

// internalError logs err with request context and writes a generic 500.
func internalError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg,
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.String("path", c.Path()),
		zap.Error(err))
	return response.InternalError(c)
}

func trimAll(ps ...*string) {
	for _, p := range ps {
		*p = strings.TrimSpace(*p)
	}
}
