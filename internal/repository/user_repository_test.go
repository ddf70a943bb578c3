package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, ?)")).
		WithArgs("kim@example.com", sqlmock.AnyArg(), "Kim", "user").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), "  Kim@Example.com ", "secret123", "Kim", "user", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), "kim@example.com", "secret123", "Kim", "user", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByEmailMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\?").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateRefresh(t *testing.T) {
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{"active", sqlmock.NewRows(cols).AddRow(7, future, nil), nil},
		{"revoked", sqlmock.NewRows(cols).AddRow(7, future, past), ErrRefreshInvalid},
		{"expired", sqlmock.NewRows(cols).AddRow(7, past, nil), ErrRefreshInvalid},
		{"unknown", sqlmock.NewRows(cols), ErrRefreshInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewTokenRepo(db)
			mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
				WithArgs("hash").
				WillReturnRows(tt.rows)

			id, err := repo.ValidateRefresh(context.Background(), "hash")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(7), id)
		})
	}
}

func TestCompanyEnsureByNameReturnsExistingID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCompanyRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)")).
		WithArgs("Acme").
		WillReturnResult(sqlmock.NewResult(12, 0))

	id, err := repo.EnsureByName(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	_, err = repo.EnsureByName(context.Background(), "   ")
	assert.Error(t, err)
}
