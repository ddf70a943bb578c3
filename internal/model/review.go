package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// JobReview represents a row in the `job_reviews` table.
type JobReview struct {
	ID         uint64    `json:"id"`
	JobID      uint64    `json:"jobId"`
	UserID     uint64    `json:"userId"`
	UserName   string    `json:"userName"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Bookmark represents a row in the `bookmarks` table joined with its job.
type Bookmark struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"userId"`
	JobID     uint64     `json:"jobId"`
	Job       JobSummary `json:"job"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Notification represents a row in the `notifications` table.
type Notification struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
