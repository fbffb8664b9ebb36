package events

import (
	"time"
)

// EventType represents the notification events the service emits.
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
)

// Event is the envelope for all published events.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AttemptStartedEvent struct {
	AttemptID string    `json:"attempt_id"`
	QuizID    string    `json:"quiz_id"`
	QuizTitle string    `json:"quiz_title"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	TimeLimit int       `json:"time_limit"` // minutes
	Resumed   bool      `json:"resumed"`
}

type AttemptSubmittedEvent struct {
	AttemptID   string    `json:"attempt_id"`
	QuizID      string    `json:"quiz_id"`
	UserID      string    `json:"user_id"`
	Score       float64   `json:"score"`
	TotalPoints float64   `json:"total_points"`
	TimeTaken   int       `json:"time_taken"` // seconds
	SubmittedAt time.Time `json:"submitted_at"`
}
