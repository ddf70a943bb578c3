package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const columnQuery = "SELECT COUNT(*) FROM information_schema.COLUMNS"

func expectSchema(mock sqlmock.Sqlmock) {
	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestMigrateFreshSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSchema(mock)
	mock.ExpectQuery(regexp.QuoteMeta(columnQuery)).
		WithArgs("jobs", "company").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateLegacyCompanyColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSchema(mock)
	mock.ExpectQuery(regexp.QuoteMeta(columnQuery)).
		WithArgs("jobs", "company").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(columnQuery)).
		WithArgs("jobs", "company_id").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("ALTER TABLE jobs\\s+ADD COLUMN company_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO companies").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE jobs j").WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectExec("ALTER TABLE jobs DROP COLUMN company").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
