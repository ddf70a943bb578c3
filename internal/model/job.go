package model

import (
	"strings"
	"time"
)

// Placeholder replaces blank display fields in API responses.
const Placeholder = "정보 없음"

// PageSize is the fixed page size of every paginated listing.
const PageSize = 20

// EmploymentTypes lists the accepted values of jobs.employment_type.
var EmploymentTypes = []string{"정규직", "계약직", "인턴", "파견직", "프리랜서", "아르바이트"}

// Job represents a posting in the `jobs` table. Company is not a column;
// it is the name of the referenced companies row, filled in by joins.
type Job struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	CompanyID      *uint64   `json:"companyId,omitempty"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Experience     string    `json:"experience"`
	Education      string    `json:"education"`
	EmploymentType string    `json:"employmentType"`
	Deadline       string    `json:"deadline"`
	TechStack      string    `json:"techStack"`
	Salary         string    `json:"salary"`
	Description    string    `json:"description"`
	Link           string    `json:"link"`
	Views          uint64    `json:"views"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// JobSummary is the reduced projection returned by listings.
type JobSummary struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Deadline string `json:"deadline"`
}

// OrPlaceholder returns s, or Placeholder when s is blank.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// WithPlaceholders returns a copy of the job with blank display fields
// substituted.
func (j Job) WithPlaceholders() Job {
	j.Title = OrPlaceholder(j.Title)
	j.Company = OrPlaceholder(j.Company)
	j.Location = OrPlaceholder(j.Location)
	j.Experience = OrPlaceholder(j.Experience)
	j.Education = OrPlaceholder(j.Education)
	j.EmploymentType = OrPlaceholder(j.EmploymentType)
	j.Deadline = OrPlaceholder(j.Deadline)
	j.TechStack = OrPlaceholder(j.TechStack)
	j.Salary = OrPlaceholder(j.Salary)
	j.Description = OrPlaceholder(j.Description)
	return j
}

func (s JobSummary) WithPlaceholders() JobSummary {
	s.Title = OrPlaceholder(s.Title)
	s.Company = OrPlaceholder(s.Company)
	s.Deadline = OrPlaceholder(s.Deadline)
	return s
}

// SplitTechStack splits the stored comma separated stack into trimmed,
// non-empty entries.
func SplitTechStack(stack string) []string {
	var out []string
	for _, p := range strings.Split(stack, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTechStack is the inverse of SplitTechStack.
func JoinTechStack(items []string) string {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			clean = append(clean, it)
		}
	}
	return strings.Join(clean, ", ")
}

// TotalPages computes the page count for total items at PageSize.
func TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + PageSize - 1) / PageSize)
}
