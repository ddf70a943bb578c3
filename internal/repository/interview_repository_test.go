package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytime501/saramin/internal/model"
)

var fixedTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

const lockInterview = "SELECT user_id, interview_status FROM interviews WHERE id = ? FOR UPDATE"

var interviewCols = []string{"id", "application_id", "user_id", "job_id", "interview_date",
	"interview_status", "status", "feedback", "created_at", "updated_at"}

func TestInterviewUpdateCompletesWithFeedback(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterviewRepo(db)
	completed := model.InterviewCompleted
	feedback := "strong candidate"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockInterview)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "interview_status"}).AddRow(7, "scheduled"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interviews SET interview_status = ?, feedback = COALESCE(?, feedback) WHERE id = ?")).
		WithArgs(model.InterviewCompleted, feedback, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT(.|\n)+FROM interviews i").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(interviewCols).
			AddRow(5, 11, 7, 3, fixedTime, "completed", string(model.StatusSubmitted), feedback, fixedTime, fixedTime))
	mock.ExpectCommit()

	iv, err := repo.Update(context.Background(), 5, 7, false, InterviewUpdate{Status: &completed, Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, model.InterviewCompleted, iv.Status)
	assert.Equal(t, model.StatusSubmitted, iv.ApplicationStatus)
	require.NotNil(t, iv.Feedback)
	assert.Equal(t, feedback, *iv.Feedback)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewUpdateRejectsFeedbackBeforeCompletion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterviewRepo(db)
	feedback := "too early"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockInterview)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "interview_status"}).AddRow(7, "scheduled"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 5, 7, false, InterviewUpdate{Feedback: &feedback})
	assert.ErrorIs(t, err, ErrFeedbackNotAllowed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewUpdateRejectsLeavingTerminalStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterviewRepo(db)
	scheduled := model.InterviewScheduled

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockInterview)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "interview_status"}).AddRow(7, "cancelled"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 5, 7, false, InterviewUpdate{Status: &scheduled})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewUpdateHidesOtherUsersInterview(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterviewRepo(db)
	completed := model.InterviewCompleted

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockInterview)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "interview_status"}).AddRow(8, "scheduled"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 5, 7, false, InterviewUpdate{Status: &completed})
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewCreateRequiresOwnApplication(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterviewRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM applications WHERE id = ?")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(8))

	_, err := repo.Create(context.Background(), 11, 7, fixedTime)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewListScopedToCaller(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterviewRepo(db)

	mock.ExpectQuery("WHERE i.user_id = \\? ORDER BY").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(interviewCols).
			AddRow(5, 11, 7, 3, fixedTime, "scheduled", string(model.StatusWithdrawn), nil, fixedTime, fixedTime))

	out, err := repo.List(context.Background(), InterviewFilter{CallerID: 7})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.StatusWithdrawn, out[0].ApplicationStatus)
	assert.Nil(t, out[0].Feedback)
	require.NoError(t, mock.ExpectationsWereMet())
}
