package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/study-service/internal/models"
)

// EventType represents the kinds of attempt lifecycle events
type EventType string

const (
	EventAttemptStarted     EventType = "attempt.started"
	EventAttemptTimeWarning EventType = "attempt.time_warning"
	EventAttemptSubmitted   EventType = "attempt.submitted"
)

const (
	eventSource  = "study-service"
	eventVersion = "1.0"
)

// AttemptEvent is the envelope for every published attempt event
type AttemptEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AttemptStartedEvent struct {
	AttemptID     string `json:"attempt_id"`
	BankID        string `json:"bank_id"`
	QuestionCount int    `json:"question_count"`
	TimeLimit     int    `json:"time_limit"` // seconds
}

type AttemptTimeWarningEvent struct {
	AttemptID     string `json:"attempt_id"`
	TimeRemaining int    `json:"time_remaining"` // seconds
}

type AttemptSubmittedEvent struct {
	AttemptID     string                  `json:"attempt_id"`
	BankID        string                  `json:"bank_id"`
	EndReason     models.AttemptEndReason `json:"end_reason"`
	AnsweredCount int                     `json:"answered_count"`
	QuestionCount int                     `json:"question_count"`
	TimeRemaining int                     `json:"time_remaining"`
}

func newEvent(eventType EventType, data interface{}) *AttemptEvent {
	return &AttemptEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAttemptStartedEvent(data AttemptStartedEvent) *AttemptEvent {
	return newEvent(EventAttemptStarted, data)
}

func NewAttemptTimeWarningEvent(data AttemptTimeWarningEvent) *AttemptEvent {
	return newEvent(EventAttemptTimeWarning, data)
}

func NewAttemptSubmittedEvent(data AttemptSubmittedEvent) *AttemptEvent {
	return newEvent(EventAttemptSubmitted, data)
}

// GenerateEventID returns a fresh unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
