package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/study-service/internal/cache"
	"github.com/SAP-F-2025/study-service/internal/events"
	"github.com/SAP-F-2025/study-service/internal/metrics"
	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/session"
	"github.com/SAP-F-2025/study-service/internal/validator"
)

type AttemptConfig struct {
	DefaultDuration int // seconds
	TimeWarning     int // seconds remaining at which attempt.time_warning fires, 0 disables
}

// liveAttempt is one running session. mu serialises answers, navigation and
// ticks arriving from different goroutines.
type liveAttempt struct {
	mu        sync.Mutex
	id        string
	bank      *models.QuestionBank
	session   *session.Session
	duration  int
	startedAt time.Time
	warned    bool
}

type attemptService struct {
	mu       sync.RWMutex
	attempts map[string]*liveAttempt

	banks     repositories.QuestionBankRepository
	results   cache.ResultsStore
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	validator *validator.Validator
	logger    *ServiceLogger
	config    AttemptConfig
	now       func() time.Time
}

func NewAttemptService(
	banks repositories.QuestionBankRepository,
	results cache.ResultsStore,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	validator *validator.Validator,
	logger *slog.Logger,
	config AttemptConfig,
) AttemptService {
	return &attemptService{
		attempts:  make(map[string]*liveAttempt),
		banks:     banks,
		results:   results,
		publisher: publisher,
		metrics:   m,
		validator: validator,
		logger:    NewServiceLogger(logger, LogConfig{Service: "study", Component: "attempts"}),
		config:    config,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest) (view *AttemptView, err error) {
	start := time.Now()
	defer func() {
		s.logger.LogOperation(ctx, "start_attempt", "question_bank", req.BankID, time.Since(start), err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bank, err := s.banks.GetBank(ctx, req.BankID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("failed to get question bank: %w", err)
	}

	duration := s.durationFor(bank, req.DurationSeconds)
	sess, err := session.New(bank.Questions, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	attempt := &liveAttempt{
		id:        uuid.NewString(),
		bank:      bank,
		session:   sess,
		duration:  duration,
		startedAt: s.now(),
	}

	s.metrics.AttemptStarted()
	s.publish(ctx, events.NewAttemptStartedEvent(events.AttemptStartedEvent{
		AttemptID:     attempt.id,
		BankID:        bank.ID,
		QuestionCount: sess.Len(),
		TimeLimit:     duration,
	}))

	// The attempt is locked before TickAll can see it, so a tick never
	// observes a half-started attempt.
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	// A zero time limit yields a session that is already over.
	if sess.Status() == models.AttemptStatusSubmitted {
		return s.finalize(ctx, attempt)
	}

	s.mu.Lock()
	s.attempts[attempt.id] = attempt
	s.mu.Unlock()
	return s.view(attempt), nil
}

func (s *attemptService) Get(ctx context.Context, attemptID string) (*AttemptView, error) {
	attempt, err := s.lookup(ctx, attemptID)
	if err != nil {
		if errors.Is(err, ErrAttemptAlreadySubmitted) {
			return s.submittedView(ctx, attemptID)
		}
		return nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return s.view(attempt), nil
}

// RecordAnswer stores req.Answer for the current question. A missing or null
// answer is rejected: unanswered questions have no entry at all.
func (s *attemptService) RecordAnswer(ctx context.Context, attemptID string, req *RecordAnswerRequest) (*AttemptView, error) {
	if req == nil || req.Answer == nil {
		return nil, ValidationErrors{*NewValidationError("answer", "is required", nil)}
	}

	return s.withAttempt(ctx, "record_answer", attemptID, func(attempt *liveAttempt) error {
		if err := attempt.session.RecordAnswer(req.Answer); err != nil {
			return err
		}
		s.metrics.AnswersRecorded.Inc()
		return nil
	})
}

// Next moves forward, or submits when the current question is the last one.
func (s *attemptService) Next(ctx context.Context, attemptID string) (*AttemptView, error) {
	return s.withAttempt(ctx, "next_question", attemptID, func(attempt *liveAttempt) error {
		_, err := attempt.session.Advance()
		return err
	})
}

func (s *attemptService) Previous(ctx context.Context, attemptID string) (*AttemptView, error) {
	return s.withAttempt(ctx, "previous_question", attemptID, func(attempt *liveAttempt) error {
		return attempt.session.Retreat()
	})
}

// Snapshot returns the live session state, or the stored results rendered
// as a snapshot once the attempt is submitted.
func (s *attemptService) Snapshot(ctx context.Context, attemptID string) (*AttemptSnapshot, error) {
	attempt, err := s.lookup(ctx, attemptID)
	if err != nil {
		if errors.Is(err, ErrAttemptAlreadySubmitted) {
			results, err := s.GetResults(ctx, attemptID)
			if err != nil {
				return nil, err
			}
			return snapshotFromResults(results), nil
		}
		return nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return &AttemptSnapshot{
		AttemptID: attempt.id,
		BankID:    attempt.bank.ID,
		Snapshot:  attempt.session.Snapshot(),
	}, nil
}

// TickAll removes elapsed seconds from every live attempt and submits the
// ones whose time has run out.
func (s *attemptService) TickAll(ctx context.Context, elapsed int) {
	s.mu.RLock()
	live := make([]*liveAttempt, 0, len(s.attempts))
	for _, attempt := range s.attempts {
		live = append(live, attempt)
	}
	s.mu.RUnlock()

	for _, attempt := range live {
		s.tick(ctx, attempt, elapsed)
	}
}

func (s *attemptService) tick(ctx context.Context, attempt *liveAttempt, elapsed int) {
	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if attempt.session.Status() == models.AttemptStatusSubmitted {
		// Still listed while submitted means storing the results failed
		// earlier; retry. Otherwise another goroutine finalised it after
		// collection.
		if s.isLive(attempt.id) {
			if _, err := s.finalize(ctx, attempt); err != nil {
				s.logger.Logger().ErrorContext(ctx, "Failed to finalize submitted attempt", "attempt_id", attempt.id, "error", err)
			}
		}
		return
	}

	status, err := attempt.session.Tick(elapsed)
	if err != nil {
		return
	}

	if status == models.AttemptStatusSubmitted {
		if _, err := s.finalize(ctx, attempt); err != nil {
			s.logger.Logger().ErrorContext(ctx, "Failed to finalize expired attempt", "attempt_id", attempt.id, "error", err)
		}
		return
	}

	remaining := attempt.session.TimeRemaining()
	if !attempt.warned && s.config.TimeWarning > 0 && remaining <= s.config.TimeWarning {
		attempt.warned = true
		s.publish(ctx, events.NewAttemptTimeWarningEvent(events.AttemptTimeWarningEvent{
			AttemptID:     attempt.id,
			TimeRemaining: remaining,
		}))
	}
}

func (s *attemptService) GetResults(ctx context.Context, attemptID string) (*models.AttemptResults, error) {
	results, err := s.results.Get(ctx, attemptID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			if retried, ok, err := s.retryFinalize(ctx, attemptID); ok {
				return retried, err
			}
			if s.isLive(attemptID) {
				return nil, NewBusinessRuleError("attempt_in_progress", "results are available once the attempt is submitted",
					map[string]any{"attempt_id": attemptID})
			}
			return nil, ErrResultsNotFound
		}
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return results, nil
}

// Retake starts a fresh attempt on the bank of a submitted attempt.
func (s *attemptService) Retake(ctx context.Context, attemptID string) (*AttemptView, error) {
	results, err := s.GetResults(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.Start(ctx, &StartAttemptRequest{BankID: results.BankID})
}

func (s *attemptService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}

// ===== HELPERS =====

// withAttempt runs op under the attempt's lock, finalises the attempt if op
// submitted it, and returns the resulting view.
func (s *attemptService) withAttempt(ctx context.Context, operation, attemptID string, op func(*liveAttempt) error) (view *AttemptView, err error) {
	start := time.Now()
	defer func() {
		s.logger.LogOperation(ctx, operation, "attempt", attemptID, time.Since(start), err)
	}()

	attempt, err := s.lookup(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if err := op(attempt); err != nil {
		if errors.Is(err, session.ErrInvalidState) {
			return nil, ErrAttemptAlreadySubmitted
		}
		return nil, err
	}

	if attempt.session.Status() == models.AttemptStatusSubmitted {
		return s.finalize(ctx, attempt)
	}
	return s.view(attempt), nil
}

func (s *attemptService) lookup(ctx context.Context, attemptID string) (*liveAttempt, error) {
	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if ok {
		return attempt, nil
	}

	if _, err := s.results.Get(ctx, attemptID); err == nil {
		return nil, ErrAttemptAlreadySubmitted
	}
	return nil, ErrAttemptNotFound
}

// retryFinalize finalises a listed attempt whose session is already
// submitted and returns its results. ok is false when there is nothing to
// retry.
func (s *attemptService) retryFinalize(ctx context.Context, attemptID string) (results *models.AttemptResults, ok bool, err error) {
	s.mu.RLock()
	attempt, listed := s.attempts[attemptID]
	s.mu.RUnlock()
	if !listed {
		return nil, false, nil
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if attempt.session.Status() != models.AttemptStatusSubmitted || !s.isLive(attemptID) {
		return nil, false, nil
	}
	if _, err := s.finalize(ctx, attempt); err != nil {
		return nil, true, err
	}
	results, err = s.results.Get(ctx, attemptID)
	if err != nil {
		return nil, true, fmt.Errorf("failed to get results: %w", err)
	}
	return results, true, nil
}

// snapshotFromResults renders stored results in the shape of a live snapshot.
func snapshotFromResults(results *models.AttemptResults) *AttemptSnapshot {
	snapshot := session.Snapshot{
		Questions:     make([]models.Question, 0, len(results.Questions)),
		Answers:       make(map[int]session.Answer, results.AnsweredCount),
		Status:        results.Status,
		EndReason:     results.EndReason,
		CurrentIndex:  results.CurrentIndex,
		TimeRemaining: results.TimeRemaining,
	}
	for _, q := range results.Questions {
		snapshot.Questions = append(snapshot.Questions, models.Question{
			ID:            q.QuestionID,
			Type:          q.Type,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.ReferenceAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		})
		if q.Answered {
			snapshot.Answers[q.Position] = q.Answer
		}
	}
	return &AttemptSnapshot{
		AttemptID: results.AttemptID,
		BankID:    results.BankID,
		Snapshot:  snapshot,
	}
}

func (s *attemptService) isLive(attemptID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.attempts[attemptID]
	return ok
}

// finalize turns a submitted session into its results, stores them and
// discards the session. Caller holds attempt.mu.
func (s *attemptService) finalize(ctx context.Context, attempt *liveAttempt) (*AttemptView, error) {
	view := s.view(attempt)
	results := s.buildResults(attempt)

	// Results are stored before the session is dropped so lookups always
	// find one of them. When storing fails the session stays listed and the
	// next tick or results read retries.
	if err := s.results.Save(ctx, results); err != nil {
		s.mu.Lock()
		s.attempts[attempt.id] = attempt
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to save results: %w", err)
	}

	s.mu.Lock()
	delete(s.attempts, attempt.id)
	s.mu.Unlock()

	s.metrics.AttemptSubmitted(results.EndReason)
	s.publish(ctx, events.NewAttemptSubmittedEvent(events.AttemptSubmittedEvent{
		AttemptID:     attempt.id,
		BankID:        attempt.bank.ID,
		EndReason:     results.EndReason,
		AnsweredCount: results.AnsweredCount,
		QuestionCount: results.QuestionCount,
		TimeRemaining: results.TimeRemaining,
	}))

	s.logger.Logger().InfoContext(ctx, "Attempt submitted",
		"attempt_id", attempt.id,
		"bank_id", attempt.bank.ID,
		"reason", results.EndReason,
		"answered", results.AnsweredCount,
		"questions", results.QuestionCount)

	return view, nil
}

func (s *attemptService) buildResults(attempt *liveAttempt) *models.AttemptResults {
	snapshot := attempt.session.Snapshot()

	results := &models.AttemptResults{
		AttemptID:     attempt.id,
		BankID:        attempt.bank.ID,
		BankTitle:     attempt.bank.Title,
		Status:        snapshot.Status,
		EndReason:     snapshot.EndReason,
		TimeRemaining: snapshot.TimeRemaining,
		QuestionCount: len(snapshot.Questions),
		CurrentIndex:  snapshot.CurrentIndex,
		Questions:     make([]models.QuestionResult, 0, len(snapshot.Questions)),
		StartedAt:     attempt.startedAt,
		SubmittedAt:   s.now(),
	}

	for i, question := range snapshot.Questions {
		answer, answered := snapshot.Answers[i]
		if answered {
			results.AnsweredCount++
		}
		results.TotalPoints += question.Points
		results.Questions = append(results.Questions, models.QuestionResult{
			Position:        i,
			QuestionID:      question.ID,
			Type:            question.Type,
			Text:            question.Text,
			Options:         question.Options,
			Answer:          answer,
			Answered:        answered,
			ReferenceAnswer: question.CorrectAnswer,
			Explanation:     question.Explanation,
			Points:          question.Points,
		})
	}
	return results
}

func (s *attemptService) view(attempt *liveAttempt) *AttemptView {
	sess := attempt.session
	view := &AttemptView{
		AttemptID:     attempt.id,
		BankID:        attempt.bank.ID,
		BankTitle:     attempt.bank.Title,
		Status:        sess.Status(),
		EndReason:     sess.EndReason(),
		CurrentIndex:  sess.CurrentIndex(),
		QuestionCount: sess.Len(),
		AnsweredCount: sess.AnsweredCount(),
		Progress:      sess.ProgressLabel(),
		IsLast:        sess.IsLast(),
		TimeRemaining: sess.TimeRemaining(),
		TimeLabel:     session.FormatTime(sess.TimeRemaining()),
	}

	if view.Status == models.AttemptStatusInProgress {
		question := sess.CurrentQuestion()
		view.Question = &QuestionView{
			ID:        question.ID,
			Type:      question.Type,
			TypeLabel: question.Type.DisplayName(),
			Text:      question.Text,
			Options:   append([]string(nil), question.Options...),
			Points:    question.Points,
		}
		view.Answer, _ = sess.Answer(sess.CurrentIndex())
		view.NextLabel = sess.NextLabel()
	}
	return view
}

func (s *attemptService) submittedView(ctx context.Context, attemptID string) (*AttemptView, error) {
	results, err := s.GetResults(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return &AttemptView{
		AttemptID:     results.AttemptID,
		BankID:        results.BankID,
		BankTitle:     results.BankTitle,
		Status:        results.Status,
		EndReason:     results.EndReason,
		CurrentIndex:  max(results.QuestionCount-1, 0),
		QuestionCount: results.QuestionCount,
		AnsweredCount: results.AnsweredCount,
		Progress:      fmt.Sprintf("Question %d of %d", results.QuestionCount, results.QuestionCount),
		IsLast:        true,
		TimeRemaining: results.TimeRemaining,
		TimeLabel:     session.FormatTime(results.TimeRemaining),
	}, nil
}

func (s *attemptService) durationFor(bank *models.QuestionBank, override *int) int {
	switch {
	case override != nil:
		return *override
	case bank.Duration > 0:
		return bank.Duration
	default:
		return s.config.DefaultDuration
	}
}

func (s *attemptService) publish(ctx context.Context, event *events.AttemptEvent) {
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to publish attempt event",
			"event_type", event.Type,
			"error", err)
	}
}
