package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/session"
)

// ===== ATTEMPTS =====

type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest) (*AttemptView, error)
	Get(ctx context.Context, attemptID string) (*AttemptView, error)
	RecordAnswer(ctx context.Context, attemptID string, req *RecordAnswerRequest) (*AttemptView, error)
	Next(ctx context.Context, attemptID string) (*AttemptView, error)
	Previous(ctx context.Context, attemptID string) (*AttemptView, error)
	Snapshot(ctx context.Context, attemptID string) (*AttemptSnapshot, error)
	TickAll(ctx context.Context, elapsed int)
	GetResults(ctx context.Context, attemptID string) (*models.AttemptResults, error)
	Retake(ctx context.Context, attemptID string) (*AttemptView, error)
	ActiveCount() int
}

type StartAttemptRequest struct {
	BankID string `json:"bank_id" validate:"required,max=100"`
	// DurationSeconds overrides the configured time limit when set.
	DurationSeconds *int `json:"duration_seconds,omitempty" validate:"omitempty,min=0,max=86400"`
}

type RecordAnswerRequest struct {
	Answer any `json:"answer"`
}

// QuestionView is a question as shown while the attempt is running. The
// reference answer and explanation stay hidden until results.
type QuestionView struct {
	ID        string              `json:"id"`
	Type      models.QuestionType `json:"type"`
	TypeLabel string              `json:"type_label"`
	Text      string              `json:"text"`
	Options   []string            `json:"options,omitempty"`
	Points    int                 `json:"points"`
}

type AttemptView struct {
	AttemptID     string                  `json:"attempt_id"`
	BankID        string                  `json:"bank_id"`
	BankTitle     string                  `json:"bank_title"`
	Status        models.AttemptStatus    `json:"status"`
	EndReason     models.AttemptEndReason `json:"end_reason,omitempty"`
	Question      *QuestionView           `json:"question,omitempty"`
	Answer        any                     `json:"answer,omitempty"`
	CurrentIndex  int                     `json:"current_index"`
	QuestionCount int                     `json:"question_count"`
	AnsweredCount int                     `json:"answered_count"`
	Progress      string                  `json:"progress"`
	NextLabel     string                  `json:"next_label,omitempty"`
	IsLast        bool                    `json:"is_last"`
	TimeRemaining int                     `json:"time_remaining"`
	TimeLabel     string                  `json:"time_label"`
}

type AttemptSnapshot struct {
	AttemptID string `json:"attempt_id"`
	BankID    string `json:"bank_id"`
	session.Snapshot
}

// ===== QUESTION BANKS =====

type QuestionBankService interface {
	List(ctx context.Context, filters repositories.QuestionBankFilters) ([]repositories.QuestionBankSummary, error)
	Get(ctx context.Context, bankID string) (*models.QuestionBank, error)
}

type ImportExportService interface {
	ImportQuestionBank(ctx context.Context, req *ImportBankRequest, filename string, reader io.Reader) (*ImportResult, error)
	ExportResults(ctx context.Context, attemptID string, writer io.Writer) error
}

type ImportBankRequest struct {
	ID       string `json:"id" validate:"required,max=100"`
	Title    string `json:"title" validate:"required,max=200"`
	Subject  string `json:"subject" validate:"max=100"`
	Duration int    `json:"duration" validate:"min=0,max=86400"`
}

type ImportResult struct {
	BankID        string           `json:"bank_id"`
	TotalRows     int              `json:"total_rows"`
	ImportedCount int              `json:"imported_count"`
	Errors        []ImportRowError `json:"errors,omitempty"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ===== CHAT =====

type ChatService interface {
	Transcript(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
	Send(ctx context.Context, conversationID, text string) ([]models.ChatMessage, error)
	ContextDocuments(ctx context.Context, conversationID string) ([]models.ChatDocument, error)
	SetActiveDocument(ctx context.Context, conversationID, documentID string) ([]models.ChatDocument, error)
}

// ===== DOCUMENTS =====

type DocumentService interface {
	List(ctx context.Context, filter DocumentFilter) ([]DocumentView, error)
	ToggleSelect(ctx context.Context, documentID string) ([]string, error)
	Selected(ctx context.Context) []string
	RequestDelete(ctx context.Context, documentID string) (*models.StudyDocument, error)
	ConfirmDelete(ctx context.Context) (*models.StudyDocument, error)
	CancelDelete(ctx context.Context) error
}

type DocumentFilter struct {
	Search string `form:"search" json:"search"`
}

type DocumentView struct {
	models.StudyDocument
	Category models.FileCategory `json:"category"`
	Selected bool                `json:"selected"`
}
