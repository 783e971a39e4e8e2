package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by this service
const (
	EventAssessmentPublished = "assessment.published"
	EventAssessmentArchived  = "assessment.archived"
	EventSubmissionStarted   = "submission.started"
	EventSubmissionSubmitted = "submission.submitted"
	EventSubmissionGraded    = "submission.graded"
	EventSubmissionReview    = "submission.needs_review"
)

// Event is the envelope every published message shares
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with the service identity filled in
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "assessment-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// AssessmentEvent carries assessment lifecycle changes
type AssessmentEvent struct {
	AssessmentID uint   `json:"assessment_id"`
	CourseID     *uint  `json:"course_id,omitempty"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	ActorID      string `json:"actor_id"`
}

// SubmissionEvent carries submission lifecycle changes
type SubmissionEvent struct {
	SubmissionID  uint     `json:"submission_id"`
	AssessmentID  uint     `json:"assessment_id"`
	StudentID     string   `json:"student_id"`
	AttemptNumber int      `json:"attempt_number"`
	Status        string   `json:"status"`
	Score         *float64 `json:"score,omitempty"`
	Passed        *bool    `json:"passed,omitempty"`
}
