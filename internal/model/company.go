package model

import "time"

// Company represents a row in the `companies` table. Jobs reference it
// through jobs.company_id.
type Company struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	Industry      string    `json:"industry"`
	Website       string    `json:"website"`
	ContactNumber string    `json:"contactNumber"`
	JobCount      int       `json:"jobCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
