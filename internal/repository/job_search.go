package repository

import (
	"context"
	"strings"

	"github.com/mytime501/saramin/internal/model"
)

// JobSearchQuery defines filters, sorting and pagination for listing jobs.
type JobSearchQuery struct {
	Location   string
	Experience string
	Salary     string
	TechStack  string
	Company    string
	Keyword    string
	Position   string
	SortBy     string
	SortOrder  string
	Page       int
}

// jobSortColumns maps the accepted sortBy values onto SQL expressions.
// Anything else falls back to creation time.
var jobSortColumns = map[string]string{
	"id":             "j.id",
	"title":          "j.title",
	"company":        "c.name",
	"location":       "j.location",
	"experience":     "j.experience",
	"education":      "j.education",
	"employmentType": "j.employment_type",
	"deadline":       "j.deadline",
	"salary":         "CAST(j.salary AS UNSIGNED)",
	"views":          "j.views",
	"createdAt":      "j.created_at",
}

// IsJobSortField reports whether sortBy is accepted by Search.
func IsJobSortField(sortBy string) bool {
	_, ok := jobSortColumns[sortBy]
	return ok
}

func (q JobSearchQuery) orderBy() string {
	col, ok := jobSortColumns[q.SortBy]
	if !ok {
		col = jobSortColumns["createdAt"]
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", j.id " + dir
}

func (q JobSearchQuery) where() (string, []any) {
	where := []string{}
	args := []any{}

	if q.Location != "" {
		where = append(where, "j.location = ?")
		args = append(args, q.Location)
	}
	if q.Experience != "" {
		where = append(where, "j.experience = ?")
		args = append(args, q.Experience)
	}
	if q.Salary != "" {
		where = append(where, "j.salary LIKE ?")
		args = append(args, likeContains(q.Salary))
	}
	if q.TechStack != "" {
		where = append(where, "j.tech_stack LIKE ?")
		args = append(args, likeContains(q.TechStack))
	}
	if q.Company != "" {
		where = append(where, "c.name LIKE ?")
		args = append(args, likeContains(q.Company))
	}
	if q.Keyword != "" {
		where = append(where, "(j.title LIKE ? OR j.description LIKE ?)")
		args = append(args, likeContains(q.Keyword), likeContains(q.Keyword))
	}
	if q.Position != "" {
		where = append(where, "j.description LIKE ?")
		args = append(args, likeContains(q.Position))
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page of job summaries and the total match count.
func (r *JobRepo) Search(ctx context.Context, q JobSearchQuery) ([]model.JobSummary, int64, error) {
	cond, args := q.where()

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT
			j.id,
			j.title,
			COALESCE(c.name, ''),
			COALESCE(DATE_FORMAT(j.deadline, '%Y-%m-%d'), '')
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE ` + cond + `
		ORDER BY ` + q.orderBy() + `
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), model.PageSize, pageOffset(q.Page))

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.JobSummary, 0, model.PageSize)
	for rows.Next() {
		var s model.JobSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Company, &s.Deadline); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
