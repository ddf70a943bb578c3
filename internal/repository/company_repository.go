package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mytime501/saramin/internal/model"
)

// CompanyRepo manages the companies table. Jobs reference companies by id
// and are detached (company_id set to NULL) when a company is deleted.
type CompanyRepo struct{ db *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

const companySelect = `SELECT
		c.id, c.name, c.location, c.industry, c.website, c.contact_number,
		(SELECT COUNT(*) FROM jobs j WHERE j.company_id = c.id) AS job_count,
		c.created_at, c.updated_at
	FROM companies c`

func scanCompany(row interface{ Scan(...any) error }) (*model.Company, error) {
	var c model.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Location, &c.Industry, &c.Website,
		&c.ContactNumber, &c.JobCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a company and fills in its ID.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (name, location, industry, website, contact_number) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Location, c.Industry, c.Website, c.ContactNumber)
	if err != nil {
		if isDuplicate(err) {
			return ErrCompanyExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID returns the company with its current job count.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (*model.Company, error) {
	c, err := scanCompany(r.db.QueryRowContext(ctx, companySelect+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	return c, err
}

// List pages through companies ordered by name, optionally filtered by a
// case-insensitive name substring.
func (r *CompanyRepo) List(ctx context.Context, name string, page int) ([]model.Company, int64, error) {
	cond := "1=1"
	args := []any{}
	if name = strings.TrimSpace(name); name != "" {
		cond = "LOWER(c.name) LIKE ?"
		args = append(args, likeContains(strings.ToLower(name)))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies c WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argsData := append(append([]any{}, args...), model.PageSize, pageOffset(page))
	rows, err := r.db.QueryContext(ctx,
		companySelect+" WHERE "+cond+" ORDER BY c.name ASC, c.id ASC LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Company, 0, model.PageSize)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// Update overwrites the editable columns of a company.
func (r *CompanyRepo) Update(ctx context.Context, c *model.Company) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = ?, location = ?, industry = ?, website = ?, contact_number = ? WHERE id = ?`,
		c.Name, c.Location, c.Industry, c.Website, c.ContactNumber, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrCompanyExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the company. Referencing jobs keep existing without one.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// EnsureByName returns the id of the company with the given name, creating
// a bare row when none exists.
func (r *CompanyRepo) EnsureByName(ctx context.Context, name string) (uint64, error) {
	return ensureCompany(ctx, r.db, name)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ensureCompany relies on LAST_INSERT_ID(expr) so that the existing id is
// reported on the duplicate path as well.
func ensureCompany(ctx context.Context, ex execer, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("company name is empty")
	}
	res, err := ex.ExecContext(ctx,
		`INSERT INTO companies (name) VALUES (?) ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`, name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
