package model

import (
	"errors"
	"time"
)

// InterviewStatus is tracked independently from the application status.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid interview status transition")

func (s InterviewStatus) Valid() bool {
	switch s {
	case InterviewScheduled, InterviewCompleted, InterviewCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an interview may move from one status to
// another. Completed and cancelled are terminal.
func CanTransition(from, to InterviewStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	return from == InterviewScheduled
}

// FeedbackEditable reports whether feedback may be written at status s.
func FeedbackEditable(s InterviewStatus) bool {
	return s == InterviewCompleted
}

// Interview represents a row in the `interviews` table. ApplicationStatus
// is read through a join and never stored on the interview.
type Interview struct {
	ID                uint64            `json:"id"`
	ApplicationID     uint64            `json:"applicationId"`
	UserID            uint64            `json:"userId"`
	JobID             uint64            `json:"jobId"`
	InterviewDate     time.Time         `json:"interviewDate"`
	Status            InterviewStatus   `json:"interviewStatus"`
	ApplicationStatus ApplicationStatus `json:"applicationStatus"`
	Feedback          *string           `json:"feedback"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}
