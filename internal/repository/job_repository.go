package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mytime501/saramin/internal/model"
)

// JobRepo provides CRUD operations for job postings. The company name is
// never stored on the job; writes resolve it to a companies row first.
type JobRepo struct{ db *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{db: db} }

// RelatedLimit caps the related jobs returned with a detail view.
const RelatedLimit = 5

const jobSelect = `SELECT
		j.id, j.title, j.company_id, COALESCE(c.name, ''),
		j.location, j.experience, j.education, j.employment_type,
		COALESCE(DATE_FORMAT(j.deadline, '%Y-%m-%d'), ''),
		COALESCE(j.tech_stack, ''), j.salary, COALESCE(j.description, ''),
		j.link, j.views, j.created_at, j.updated_at
	FROM jobs j
	LEFT JOIN companies c ON c.id = j.company_id`

func scanJob(row interface{ Scan(...any) error }) (*model.Job, error) {
	var (
		j         model.Job
		companyID sql.NullInt64
	)
	if err := row.Scan(&j.ID, &j.Title, &companyID, &j.Company,
		&j.Location, &j.Experience, &j.Education, &j.EmploymentType,
		&j.Deadline, &j.TechStack, &j.Salary, &j.Description,
		&j.Link, &j.Views, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	if companyID.Valid {
		id := uint64(companyID.Int64)
		j.CompanyID = &id
	}
	return &j, nil
}

// Count returns the number of stored jobs.
func (r *JobRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&n)
	return n, err
}

// Exists reports whether a job with the id is stored.
func (r *JobRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM jobs WHERE id = ? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetByID loads one job with its company name.
func (r *JobRepo) GetByID(ctx context.Context, id uint64) (*model.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, jobSelect+" WHERE j.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return j, err
}

// IncrementViews bumps the view counter by exactly one.
func (r *JobRepo) IncrementViews(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE jobs SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Related returns up to limit other jobs sharing the company or any tech
// stack entry with job, most viewed first.
func (r *JobRepo) Related(ctx context.Context, job *model.Job, limit int) ([]model.Job, error) {
	or := []string{}
	args := []any{}
	if job.CompanyID != nil {
		or = append(or, "j.company_id = ?")
		args = append(args, *job.CompanyID)
	}
	for _, tech := range model.SplitTechStack(job.TechStack) {
		or = append(or, "j.tech_stack LIKE ?")
		args = append(args, likeContains(tech))
	}
	if len(or) == 0 {
		return []model.Job{}, nil
	}
	args = append(args, job.ID, limit)

	rows, err := r.db.QueryContext(ctx, jobSelect+`
		WHERE (`+strings.Join(or, " OR ")+`) AND j.id <> ?
		ORDER BY j.views DESC, j.id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Job, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// Create resolves the company name and inserts the job, filling in ID and
// CompanyID.
func (r *JobRepo) Create(ctx context.Context, j *model.Job) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	companyID, err := ensureCompany(ctx, tx, j.Company)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO jobs
		(title, company_id, location, experience, education, employment_type,
		 deadline, tech_stack, salary, description, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.Title, companyID, j.Location, j.Experience, j.Education, j.EmploymentType,
		nullIfEmpty(j.Deadline), j.TechStack, j.Salary, j.Description, j.Link)
	if err != nil {
		if isDuplicate(err) {
			return ErrJobLinkExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	j.ID = uint64(id)
	j.CompanyID = &companyID
	return nil
}

// Update overwrites every editable column and resets views to zero.
func (r *JobRepo) Update(ctx context.Context, j *model.Job) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	companyID, err := ensureCompany(ctx, tx, j.Company)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE jobs SET
		title = ?, company_id = ?, location = ?, experience = ?, education = ?,
		employment_type = ?, deadline = ?, tech_stack = ?, salary = ?,
		description = ?, link = ?, views = 0
		WHERE id = ?`,
		j.Title, companyID, j.Location, j.Experience, j.Education,
		j.EmploymentType, nullIfEmpty(j.Deadline), j.TechStack, j.Salary,
		j.Description, j.Link, j.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrJobLinkExists
		}
		return err
	}
	// views = 0 always changes a viewed row, so zero here can also mean an
	// untouched row that was never viewed.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM jobs WHERE id = ?", j.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	j.CompanyID = &companyID
	j.Views = 0
	return nil
}

// Delete removes the job; applications, reviews and bookmarks cascade.
func (r *JobRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// UpsertResult tells what UpsertByLink did to the stored row.
type UpsertResult int

const (
	UpsertUnchanged UpsertResult = iota
	UpsertInserted
	UpsertUpdated
)

// UpsertByLink inserts the job or refreshes the row with the same link.
// Views and creation time of an existing row are kept.
func (r *JobRepo) UpsertByLink(ctx context.Context, j *model.Job) (UpsertResult, error) {
	companyID, err := ensureCompany(ctx, r.db, j.Company)
	if err != nil {
		return UpsertUnchanged, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO jobs
		(title, company_id, location, experience, education, employment_type,
		 deadline, tech_stack, salary, description, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			company_id = VALUES(company_id),
			location = VALUES(location),
			experience = VALUES(experience),
			education = VALUES(education),
			employment_type = VALUES(employment_type),
			deadline = VALUES(deadline),
			tech_stack = VALUES(tech_stack),
			salary = VALUES(salary),
			description = VALUES(description)`,
		j.Title, companyID, j.Location, j.Experience, j.Education, j.EmploymentType,
		nullIfEmpty(j.Deadline), j.TechStack, j.Salary, j.Description, j.Link)
	if err != nil {
		return UpsertUnchanged, err
	}
	// MySQL reports 1 for an insert, 2 for an update and 0 for a no-op.
	n, err := res.RowsAffected()
	if err != nil {
		return UpsertUnchanged, err
	}
	switch n {
	case 1:
		return UpsertInserted, nil
	case 2:
		return UpsertUpdated, nil
	default:
		return UpsertUnchanged, nil
	}
}
