package repository

import (
	"context"
	"database/sql"

	"github.com/mytime501/saramin/internal/model"
)

type BookmarkRepo struct{ db *sql.DB }

func NewBookmarkRepo(db *sql.DB) *BookmarkRepo { return &BookmarkRepo{db: db} }

// Toggle removes the bookmark if present, otherwise creates it. It reports
// whether the job is bookmarked afterwards.
func (r *BookmarkRepo) Toggle(ctx context.Context, userID, jobID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE user_id = ? AND job_id = ?", userID, jobID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO bookmarks (user_id, job_id) VALUES (?, ?)", userID, jobID); err != nil {
		// A concurrent toggle inserted first; the job is bookmarked either way.
		if isDuplicate(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// ListByUser returns one page of the user's bookmarks, newest first.
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID uint64, page int) ([]model.Bookmark, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookmarks WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT
			b.id, b.user_id, b.job_id, b.created_at,
			j.title, COALESCE(c.name, ''), COALESCE(DATE_FORMAT(j.deadline, '%Y-%m-%d'), '')
		FROM bookmarks b
		JOIN jobs j ON j.id = b.job_id
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ? OFFSET ?`, userID, model.PageSize, pageOffset(page))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Bookmark, 0, model.PageSize)
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.JobID, &b.CreatedAt,
			&b.Job.Title, &b.Job.Company, &b.Job.Deadline); err != nil {
			return nil, 0, err
		}
		b.Job.ID = b.JobID
		b.Job = b.Job.WithPlaceholders()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
