// Package queue defines the application lifecycle events exchanged over
// RabbitMQ and the consumer that turns them into user notifications.
package queue

import (
	"fmt"
	"time"
)

// ApplicationQueue is the durable queue carrying ApplicationEvent messages.
const ApplicationQueue = "application.events"

type EventType string

const (
	EventApplicationSubmitted   EventType = "application.submitted"
	EventApplicationResubmitted EventType = "application.resubmitted"
	EventApplicationWithdrawn   EventType = "application.withdrawn"
	EventInterviewScheduled     EventType = "interview.scheduled"
	EventInterviewUpdated       EventType = "interview.updated"
)

// ApplicationEvent is published after an application or interview change
// is committed. It carries enough to build the notification text without
// querying the database.
type ApplicationEvent struct {
	Type            EventType `json:"type"`
	ApplicationID   uint64    `json:"application_id"`
	UserID          uint64    `json:"user_id"`
	JobID           uint64    `json:"job_id"`
	JobTitle        string    `json:"job_title,omitempty"`
	InterviewID     uint64    `json:"interview_id,omitempty"`
	InterviewStatus string    `json:"interview_status,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (e ApplicationEvent) jobLabel() string {
	if e.JobTitle != "" {
		return fmt.Sprintf("'%s'", e.JobTitle)
	}
	return fmt.Sprintf("채용공고 #%d", e.JobID)
}

// Message renders the notification text shown to the user.
func (e ApplicationEvent) Message() string {
	switch e.Type {
	case EventApplicationSubmitted:
		return e.jobLabel() + " 지원이 완료되었습니다."
	case EventApplicationResubmitted:
		return e.jobLabel() + " 재지원이 완료되었습니다."
	case EventApplicationWithdrawn:
		return e.jobLabel() + " 지원이 취소되었습니다."
	case EventInterviewScheduled:
		return e.jobLabel() + " 면접이 등록되었습니다."
	case EventInterviewUpdated:
		return fmt.Sprintf("%s 면접 상태가 '%s'(으)로 변경되었습니다.", e.jobLabel(), e.InterviewStatus)
	default:
		return fmt.Sprintf("%s: %s", e.jobLabel(), e.Type)
	}
}
