package models

import "time"

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
)

type AttemptEndReason string

const (
	AttemptEndReasonCompleted   AttemptEndReason = "completed"
	AttemptEndReasonTimeExpired AttemptEndReason = "time_expired"
)

// QuestionResult is one row of the results review.
type QuestionResult struct {
	Position        int          `json:"position"`
	QuestionID      string       `json:"question_id"`
	Type            QuestionType `json:"type"`
	Text            string       `json:"text"`
	Options         []string     `json:"options,omitempty"`
	Answer          any          `json:"answer,omitempty"`
	Answered        bool         `json:"answered"`
	ReferenceAnswer any          `json:"reference_answer,omitempty"`
	Explanation     string       `json:"explanation,omitempty"`
	Points          int          `json:"points"`
}

// AttemptResults is the artifact handed to the results view once an attempt
// is submitted. Correctness is left to whoever renders it.
type AttemptResults struct {
	AttemptID     string           `json:"attempt_id"`
	BankID        string           `json:"bank_id"`
	BankTitle     string           `json:"bank_title"`
	Status        AttemptStatus    `json:"status"`
	EndReason     AttemptEndReason `json:"end_reason"`
	TimeRemaining int              `json:"time_remaining"`
	TotalPoints   int              `json:"total_points"`
	AnsweredCount int              `json:"answered_count"`
	QuestionCount int              `json:"question_count"`
	CurrentIndex  int              `json:"current_index"`
	Questions     []QuestionResult `json:"questions"`
	StartedAt     time.Time        `json:"started_at"`
	SubmittedAt   time.Time        `json:"submitted_at"`
}
