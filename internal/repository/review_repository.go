package repository

import (
	"context"
	"database/sql"

	"github.com/mytime501/saramin/internal/model"
)

type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create stores a review and fills in its ID.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.JobReview) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO job_reviews (job_id, user_id, rating, review_text) VALUES (?, ?, ?, ?)",
		rv.JobID, rv.UserID, rv.Rating, rv.ReviewText)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ListByJob returns the reviews of a job, newest first, and their average
// rating (0 when there are none).
func (r *ReviewRepo) ListByJob(ctx context.Context, jobID uint64) ([]model.JobReview, float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			r.id, r.job_id, r.user_id, u.name, r.rating, r.review_text, r.created_at
		FROM job_reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.job_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, jobID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.JobReview{}
	sum := 0
	for rows.Next() {
		var rv model.JobReview
		if err := rows.Scan(&rv.ID, &rv.JobID, &rv.UserID, &rv.UserName,
			&rv.Rating, &rv.ReviewText, &rv.CreatedAt); err != nil {
			return nil, 0, err
		}
		sum += rv.Rating
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		return out, 0, nil
	}
	return out, float64(sum) / float64(len(out)), nil
}
