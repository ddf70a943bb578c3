// Package repository contains data access logic separated from HTTP
// handlers. This file defines the sentinel errors shared across
// repositories so that handlers can map failures onto status codes.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mytime501/saramin/internal/model"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailExists          = errors.New("email already exists")
	ErrRefreshInvalid       = errors.New("refresh token invalid or revoked")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyExists        = errors.New("company name already exists")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobLinkExists        = errors.New("job link already exists")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrInterviewNotFound    = errors.New("interview not found")
	ErrInterviewExists      = errors.New("interview already exists for application")
	ErrFeedbackNotAllowed   = errors.New("feedback can only be written for completed interviews")
	ErrNotificationNotFound = errors.New("notification not found")

	// Lifecycle errors decided by the model package.
	ErrAlreadyApplied    = model.ErrAlreadyApplied
	ErrInvalidTransition = model.ErrInvalidTransition
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// pageOffset converts a 1-based page into a LIMIT offset at model.PageSize.
func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * model.PageSize
}

// nullIfEmpty stores blank strings as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains builds a LIKE pattern matching s literally anywhere in the
// column. MySQL's default LIKE escape character is the backslash.
func likeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
