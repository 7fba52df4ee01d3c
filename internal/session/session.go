// Package session drives a single timed attempt at a fixed list of questions.
//
// A Session is not safe for concurrent use. Hosts that receive answers and
// timer ticks on different goroutines must serialise access to it.
package session

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/study-service/internal/models"
)

var (
	ErrInvalidConfiguration = errors.New("invalid session configuration")
	ErrInvalidState         = errors.New("session already submitted")
)

// Answer is whatever the rendering layer captured for a question: an option
// index, a bool or free text. The engine stores it untouched.
type Answer = any

type Session struct {
	questions     []models.Question
	currentIndex  int
	answers       map[int]Answer
	timeRemaining int
	status        models.AttemptStatus
	endReason     models.AttemptEndReason
}

// Snapshot is a read-only copy of a session's answers and status.
type Snapshot struct {
	Questions     []models.Question       `json:"questions"`
	Answers       map[int]Answer          `json:"answers"`
	Status        models.AttemptStatus    `json:"status"`
	EndReason     models.AttemptEndReason `json:"end_reason,omitempty"`
	CurrentIndex  int                     `json:"current_index"`
	TimeRemaining int                     `json:"time_remaining"`
}

// New starts a session over questions with duration seconds on the clock.
// A zero duration yields a session that is already submitted.
func New(questions []models.Question, duration int) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidConfiguration)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: negative duration %d", ErrInvalidConfiguration, duration)
	}

	qs := make([]models.Question, len(questions))
	copy(qs, questions)

	s := &Session{
		questions:     qs,
		answers:       make(map[int]Answer),
		timeRemaining: duration,
		status:        models.AttemptStatusInProgress,
	}
	if duration == 0 {
		s.submit(models.AttemptEndReasonTimeExpired)
	}
	return s, nil
}

// RecordAnswer stores value against the current question, replacing any
// earlier answer at that position.
func (s *Session) RecordAnswer(value Answer) error {
	if s.submitted() {
		return ErrInvalidState
	}
	s.answers[s.currentIndex] = value
	return nil
}

// Advance moves to the next question. On the last question it submits the
// session instead. Unanswered questions may be skipped.
func (s *Session) Advance() (models.AttemptStatus, error) {
	if s.submitted() {
		return s.status, ErrInvalidState
	}
	if s.IsLast() {
		s.submit(models.AttemptEndReasonCompleted)
		return s.status, nil
	}
	s.currentIndex++
	return s.status, nil
}

// Retreat moves to the previous question. It does nothing on the first one.
func (s *Session) Retreat() error {
	if s.submitted() {
		return ErrInvalidState
	}
	if s.currentIndex > 0 {
		s.currentIndex--
	}
	return nil
}

// Tick takes elapsed seconds off the clock, flooring at zero. Running out of
// time submits the session in the same call. Negative values count as zero.
func (s *Session) Tick(elapsed int) (models.AttemptStatus, error) {
	if s.submitted() {
		return s.status, ErrInvalidState
	}
	if elapsed < 0 {
		elapsed = 0
	}

	s.timeRemaining = max(0, s.timeRemaining-elapsed)
	if s.timeRemaining == 0 {
		s.submit(models.AttemptEndReasonTimeExpired)
	}
	return s.status, nil
}

func (s *Session) CurrentQuestion() models.Question {
	return s.questions[s.currentIndex]
}

func (s *Session) CurrentIndex() int {
	return s.currentIndex
}

func (s *Session) Len() int {
	return len(s.questions)
}

// IsLast reports whether the current question is the final one, i.e. whether
// the next Advance submits.
func (s *Session) IsLast() bool {
	return s.currentIndex == len(s.questions)-1
}

func (s *Session) Status() models.AttemptStatus {
	return s.status
}

// EndReason is empty while the session is in progress.
func (s *Session) EndReason() models.AttemptEndReason {
	return s.endReason
}

func (s *Session) TimeRemaining() int {
	return s.timeRemaining
}

// Answer returns the value recorded at position, if any.
func (s *Session) Answer(position int) (Answer, bool) {
	v, ok := s.answers[position]
	return v, ok
}

// AnsweredCount is the number of positions holding an answer.
func (s *Session) AnsweredCount() int {
	return len(s.answers)
}

// Snapshot copies the session's current state for an external scorer.
// It may be called at any time; before submission it holds partial results.
func (s *Session) Snapshot() Snapshot {
	questions := make([]models.Question, len(s.questions))
	copy(questions, s.questions)

	answers := make(map[int]Answer, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	return Snapshot{
		Questions:     questions,
		Answers:       answers,
		Status:        s.status,
		EndReason:     s.endReason,
		CurrentIndex:  s.currentIndex,
		TimeRemaining: s.timeRemaining,
	}
}

func (s *Session) submitted() bool {
	return s.status == models.AttemptStatusSubmitted
}

func (s *Session) submit(reason models.AttemptEndReason) {
	s.status = models.AttemptStatusSubmitted
	s.endReason = reason
}
