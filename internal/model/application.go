package model

import (
	"errors"
	"time"
)

// ApplicationStatus is the state of an application. Only two states exist;
// completion is tracked on the interview, never on the application.
type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "지원 완료"
	StatusWithdrawn ApplicationStatus = "지원 취소"
)

// Valid reports whether s is one of the known states.
func (s ApplicationStatus) Valid() bool {
	return s == StatusSubmitted || s == StatusWithdrawn
}

// ErrAlreadyApplied is returned when a submitted application already exists
// for the same user and job.
var ErrAlreadyApplied = errors.New("already applied")

// ApplyAction is what an apply request does to the stored row.
type ApplyAction int

const (
	ApplyInsert     ApplyAction = iota + 1 // no row yet
	ApplyReactivate                        // withdrawn row flips back to submitted
)

// ApplyTransition decides what applying does given the status of the
// existing row for the (user, job) pair, or nil when there is none.
func ApplyTransition(existing *ApplicationStatus) (ApplyAction, error) {
	if existing == nil {
		return ApplyInsert, nil
	}
	if *existing == StatusWithdrawn {
		return ApplyReactivate, nil
	}
	return 0, ErrAlreadyApplied
}

// Application represents a row in the `applications` table.
type Application struct {
	ID        uint64            `json:"id"`
	UserID    uint64            `json:"userId"`
	JobID     uint64            `json:"jobId"`
	Resume    *string           `json:"-"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ApplicationView is the listing projection. Applicant name and email are
// only populated for privileged callers.
type ApplicationView struct {
	ID             uint64            `json:"id"`
	UserID         uint64            `json:"userId"`
	JobID          uint64            `json:"jobId"`
	JobTitle       string            `json:"jobTitle"`
	Resume         string            `json:"resume"`
	Status         ApplicationStatus `json:"status"`
	ApplicantName  string            `json:"applicantName,omitempty"`
	ApplicantEmail string            `json:"applicantEmail,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ApplicationSummary aggregates the applications of one job by status.
type ApplicationSummary struct {
	JobID       uint64                    `json:"jobId"`
	JobTitle    string                    `json:"jobTitle"`
	CompanyName string                    `json:"companyName"`
	Counts      map[ApplicationStatus]int `json:"counts"`
	Total       int                       `json:"total"`
}
