package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mytime501/saramin/internal/model"
)

// InterviewRepo tracks interviews. The application status shown alongside
// an interview is always read through the join, never copied.
type InterviewRepo struct{ db *sql.DB }

func NewInterviewRepo(db *sql.DB) *InterviewRepo { return &InterviewRepo{db: db} }

const interviewSelect = `SELECT
		i.id, i.application_id, i.user_id, a.job_id, i.interview_date,
		i.interview_status, a.status, i.feedback, i.created_at, i.updated_at
	FROM interviews i
	JOIN applications a ON a.id = i.application_id`

func scanInterview(row interface{ Scan(...any) error }) (*model.Interview, error) {
	var (
		iv       model.Interview
		feedback sql.NullString
	)
	if err := row.Scan(&iv.ID, &iv.ApplicationID, &iv.UserID, &iv.JobID, &iv.InterviewDate,
		&iv.Status, &iv.ApplicationStatus, &feedback, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		return nil, err
	}
	if feedback.Valid {
		fb := feedback.String
		iv.Feedback = &fb
	}
	return &iv, nil
}

// Create schedules an interview for an application owned by userID.
func (r *InterviewRepo) Create(ctx context.Context, applicationID, userID uint64, date time.Time) (*model.Interview, error) {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM applications WHERE id = ?", applicationID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO interviews (application_id, user_id, interview_date, interview_status) VALUES (?, ?, ?, ?)",
		applicationID, userID, date.UTC(), model.InterviewScheduled)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrInterviewExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads one interview.
func (r *InterviewRepo) GetByID(ctx context.Context, id uint64) (*model.Interview, error) {
	iv, err := scanInterview(r.db.QueryRowContext(ctx, interviewSelect+" WHERE i.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterviewNotFound
	}
	return iv, err
}

// InterviewFilter scopes List. Non-privileged callers only see their own
// interviews regardless of UserID.
type InterviewFilter struct {
	CallerID      uint64
	Privileged    bool
	UserID        uint64
	ApplicationID uint64
}

// List returns the interviews visible to the caller, soonest first.
func (r *InterviewRepo) List(ctx context.Context, f InterviewFilter) ([]model.Interview, error) {
	where := []string{}
	args := []any{}
	switch {
	case !f.Privileged:
		where = append(where, "i.user_id = ?")
		args = append(args, f.CallerID)
	case f.UserID != 0:
		where = append(where, "i.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ApplicationID != 0 {
		where = append(where, "i.application_id = ?")
		args = append(args, f.ApplicationID)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	rows, err := r.db.QueryContext(ctx,
		interviewSelect+" WHERE "+cond+" ORDER BY i.interview_date ASC, i.id ASC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

// InterviewUpdate carries the optional changes of an update request.
type InterviewUpdate struct {
	Status   *model.InterviewStatus
	Feedback *string
}

// Update applies u to the interview under a row lock. Non-privileged
// callers can only touch their own interviews; everyone else gets
// ErrInterviewNotFound.
func (r *InterviewRepo) Update(ctx context.Context, id, callerID uint64, privileged bool, u InterviewUpdate) (*model.Interview, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		owner   uint64
		current model.InterviewStatus
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, interview_status FROM interviews WHERE id = ? FOR UPDATE", id).
		Scan(&owner, &current)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !privileged && owner != callerID) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}

	next := current
	if u.Status != nil {
		next = *u.Status
	}
	if !model.CanTransition(current, next) {
		return nil, ErrInvalidTransition
	}
	if u.Feedback != nil && !model.FeedbackEditable(next) {
		return nil, ErrFeedbackNotAllowed
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE interviews SET interview_status = ?, feedback = COALESCE(?, feedback) WHERE id = ?",
		next, u.Feedback, id); err != nil {
		return nil, err
	}
	iv, err := scanInterview(tx.QueryRowContext(ctx, interviewSelect+" WHERE i.id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return iv, nil
}

// DeleteForUser removes one of the user's own interviews.
func (r *InterviewRepo) DeleteForUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM interviews WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInterviewNotFound
	}
	return nil
}
