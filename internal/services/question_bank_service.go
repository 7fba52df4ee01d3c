package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories"
)

const maxBankPageSize = 100

type questionBankService struct {
	banks  repositories.QuestionBankRepository
	logger *slog.Logger
}

func NewQuestionBankService(banks repositories.QuestionBankRepository, logger *slog.Logger) QuestionBankService {
	return &questionBankService{
		banks:  banks,
		logger: logger.With("component", "question_banks"),
	}
}

func (s *questionBankService) List(ctx context.Context, filters repositories.QuestionBankFilters) ([]repositories.QuestionBankSummary, error) {
	if filters.Limit <= 0 || filters.Limit > maxBankPageSize {
		filters.Limit = maxBankPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	banks, err := s.banks.ListBanks(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list question banks: %w", err)
	}
	return banks, nil
}

// Get returns the bank including reference answers, for authoring views.
func (s *questionBankService) Get(ctx context.Context, bankID string) (*models.QuestionBank, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("failed to get question bank: %w", err)
	}
	return bank, nil
}
