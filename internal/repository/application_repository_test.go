package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytime501/saramin/internal/model"
)

const lockApplication = "SELECT id, status FROM applications WHERE user_id = ? AND job_id = ? FOR UPDATE"

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestApplyInsertsFirstApplication(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)
	resume := "my resume"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockApplication)).
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WithArgs(uint64(7), uint64(3), resume, model.StatusSubmitted).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	app, action, err := repo.Apply(context.Background(), 7, 3, &resume)
	require.NoError(t, err)
	assert.Equal(t, model.ApplyInsert, action)
	assert.Equal(t, uint64(11), app.ID)
	assert.Equal(t, model.StatusSubmitted, app.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReactivatesWithdrawnRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockApplication)).
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(11, string(model.StatusWithdrawn)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = ?, resume = COALESCE(?, resume) WHERE id = ?")).
		WithArgs(model.StatusSubmitted, nil, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, action, err := repo.Apply(context.Background(), 7, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ApplyReactivate, action)
	assert.Equal(t, uint64(11), app.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRejectsSubmittedRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockApplication)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(11, string(model.StatusSubmitted)))
	mock.ExpectRollback()

	_, _, err := repo.Apply(context.Background(), 7, 3, nil)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyLostInsertRaceIsAlreadyApplied(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockApplication)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, _, err := repo.Apply(context.Background(), 7, 3, nil)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawCancelsScheduledInterviews(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, job_id, status FROM applications WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "job_id", "status"}).AddRow(7, 3, string(model.StatusSubmitted)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = ? WHERE id = ?")).
		WithArgs(model.StatusWithdrawn, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interviews SET interview_status = ?")).
		WithArgs(model.InterviewCancelled, uint64(11), model.InterviewScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := repo.Withdraw(context.Background(), 11, 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWithdrawn, app.Status)
	assert.Equal(t, uint64(3), app.JobID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawOtherUsersApplication(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, job_id, status FROM applications")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "job_id", "status"}).AddRow(8, 3, string(model.StatusSubmitted)))
	mock.ExpectRollback()

	_, err := repo.Withdraw(context.Background(), 11, 7)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawUnknownApplication(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, job_id, status FROM applications")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "job_id", "status"}))
	mock.ExpectRollback()

	_, err := repo.Withdraw(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListScopesPlainUsersToThemselves(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications a WHERE a.user_id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT(.|\n)+FROM applications a").
		WithArgs(uint64(7), model.PageSize, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "job_id", "title", "resume", "status", "name", "email", "created_at"}).
			AddRow(11, 7, 3, "Backend", nil, string(model.StatusSubmitted), "Kim", "kim@example.com", fixedTime))

	// A plain user asking for someone else's applications still gets their own.
	out, total, err := repo.List(context.Background(), ApplicationFilter{CallerID: 7, UserID: 8, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, model.Placeholder, out[0].Resume)
	assert.Empty(t, out[0].ApplicantName)
	assert.Empty(t, out[0].ApplicantEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCountsByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectQuery("SELECT j.title").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"title", "name"}).AddRow("Backend", "Acme"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM applications WHERE job_id = ? GROUP BY status")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).
			AddRow(string(model.StatusSubmitted), 4).
			AddRow(string(model.StatusWithdrawn), 1))

	s, err := repo.Summary(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Counts[model.StatusSubmitted])
	assert.Equal(t, 1, s.Counts[model.StatusWithdrawn])
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, "Acme", s.CompanyName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryMissingJob(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectQuery("SELECT j.title").
		WillReturnRows(sqlmock.NewRows([]string{"title", "name"}))

	_, err := repo.Summary(context.Background(), 3)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
