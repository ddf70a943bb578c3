package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mytime501/saramin/internal/model"
)

// ApplicationRepo stores job applications. At most one row exists per
// (user, job) pair; withdrawing and re-applying flip that row's status.
type ApplicationRepo struct{ db *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// Apply submits an application for the user. The existing row, if any,
// is locked for the duration of the transaction.
func (r *ApplicationRepo) Apply(ctx context.Context, userID, jobID uint64, resume *string) (*model.Application, model.ApplyAction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var (
		id       uint64
		status   string
		existing *model.ApplicationStatus
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, status FROM applications WHERE user_id = ? AND job_id = ? FOR UPDATE",
		userID, jobID).Scan(&id, &status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, 0, err
	default:
		s := model.ApplicationStatus(status)
		existing = &s
	}

	action, err := model.ApplyTransition(existing)
	if err != nil {
		return nil, 0, err
	}

	switch action {
	case model.ApplyInsert:
		res, err := tx.ExecContext(ctx,
			"INSERT INTO applications (user_id, job_id, resume, status) VALUES (?, ?, ?, ?)",
			userID, jobID, resume, model.StatusSubmitted)
		if err != nil {
			if isDuplicate(err) {
				return nil, 0, ErrAlreadyApplied
			}
			return nil, 0, err
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return nil, 0, err
		}
		id = uint64(newID)
	case model.ApplyReactivate:
		if _, err := tx.ExecContext(ctx,
			"UPDATE applications SET status = ?, resume = COALESCE(?, resume) WHERE id = ?",
			model.StatusSubmitted, resume, id); err != nil {
			return nil, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return &model.Application{
		ID:     id,
		UserID: userID,
		JobID:  jobID,
		Resume: resume,
		Status: model.StatusSubmitted,
	}, action, nil
}

// Withdraw marks the application withdrawn and cancels its scheduled
// interviews in the same transaction. Only the applicant may withdraw.
func (r *ApplicationRepo) Withdraw(ctx context.Context, id, userID uint64) (*model.Application, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	app := model.Application{ID: id}
	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, job_id, status FROM applications WHERE id = ? FOR UPDATE", id).
		Scan(&app.UserID, &app.JobID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, ErrForbidden
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE applications SET status = ? WHERE id = ?", model.StatusWithdrawn, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE interviews SET interview_status = ? WHERE application_id = ? AND interview_status = ?",
		model.InterviewCancelled, id, model.InterviewScheduled); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	app.Status = model.StatusWithdrawn
	return &app, nil
}

// ApplicationFilter narrows List. Applicant details are only selected for
// privileged callers; plain users are always scoped to themselves.
type ApplicationFilter struct {
	CallerID   uint64
	Privileged bool
	UserID     uint64
	JobID      uint64
	Status     model.ApplicationStatus
	Page       int
}

func (f ApplicationFilter) where() (string, []any) {
	where := []string{}
	args := []any{}
	switch {
	case !f.Privileged:
		where = append(where, "a.user_id = ?")
		args = append(args, f.CallerID)
	case f.UserID != 0:
		where = append(where, "a.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.JobID != 0 {
		where = append(where, "a.job_id = ?")
		args = append(args, f.JobID)
	}
	if f.Status != "" {
		where = append(where, "a.status = ?")
		args = append(args, f.Status)
	}
	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// List returns one page of applications with job titles.
func (r *ApplicationRepo) List(ctx context.Context, f ApplicationFilter) ([]model.ApplicationView, int64, error) {
	cond, args := f.where()

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM applications a WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argsData := append(append([]any{}, args...), model.PageSize, pageOffset(f.Page))
	rows, err := r.db.QueryContext(ctx, `SELECT
			a.id, a.user_id, a.job_id, j.title, a.resume, a.status,
			u.name, u.email, a.created_at
		FROM applications a
		JOIN jobs j  ON j.id = a.job_id
		JOIN users u ON u.id = a.user_id
		WHERE `+cond+`
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ? OFFSET ?`, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.ApplicationView, 0, model.PageSize)
	for rows.Next() {
		var (
			v      model.ApplicationView
			resume sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.JobID, &v.JobTitle, &resume, &v.Status,
			&v.ApplicantName, &v.ApplicantEmail, &v.CreatedAt); err != nil {
			return nil, 0, err
		}
		v.Resume = model.OrPlaceholder(resume.String)
		if !f.Privileged {
			v.ApplicantName, v.ApplicantEmail = "", ""
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Summary counts the applications of one job by status.
func (r *ApplicationRepo) Summary(ctx context.Context, jobID uint64) (*model.ApplicationSummary, error) {
	s := model.ApplicationSummary{
		JobID: jobID,
		Counts: map[model.ApplicationStatus]int{
			model.StatusSubmitted: 0,
			model.StatusWithdrawn: 0,
		},
	}
	err := r.db.QueryRowContext(ctx, `SELECT j.title, COALESCE(c.name, '')
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE j.id = ?`, jobID).Scan(&s.JobTitle, &s.CompanyName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM applications WHERE job_id = ? GROUP BY status", jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		s.Counts[model.ApplicationStatus(status)] = n
		s.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.CompanyName = model.OrPlaceholder(s.CompanyName)
	return &s, nil
}
