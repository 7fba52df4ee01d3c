package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-service/internal/models"
)

var ErrNotFound = errors.New("record not found")

// QuestionBankFilters narrows ListBanks results
type QuestionBankFilters struct {
	Subject string `json:"subject"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// QuestionBankSummary is a bank without its questions
type QuestionBankSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Subject       string `json:"subject"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"question_count"`
	TotalPoints   int    `json:"total_points"`
}

// QuestionBankRepository is the question source tests are started from
type QuestionBankRepository interface {
	GetBank(ctx context.Context, id string) (*models.QuestionBank, error)
	ListBanks(ctx context.Context, filters QuestionBankFilters) ([]QuestionBankSummary, error)
	SaveBank(ctx context.Context, bank *models.QuestionBank) error
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Summarize builds the list view of a bank
func Summarize(bank *models.QuestionBank) QuestionBankSummary {
	return QuestionBankSummary{
		ID:            bank.ID,
		Title:         bank.Title,
		Subject:       bank.Subject,
		Duration:      bank.Duration,
		QuestionCount: len(bank.Questions),
		TotalPoints:   bank.TotalPoints(),
	}
}

// Paginate applies offset and limit to an already filtered slice
func Paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
