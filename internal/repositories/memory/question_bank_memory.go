package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories"
)

type QuestionBankMemory struct {
	mu    sync.RWMutex
	banks map[string]*models.QuestionBank
}

func NewQuestionBankMemory(seed ...*models.QuestionBank) *QuestionBankMemory {
	m := &QuestionBankMemory{banks: make(map[string]*models.QuestionBank)}
	for _, b := range seed {
		m.banks[b.ID] = cloneBank(b)
	}
	return m
}

func (m *QuestionBankMemory) GetBank(ctx context.Context, id string) (*models.QuestionBank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bank, ok := m.banks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneBank(bank), nil
}

func (m *QuestionBankMemory) ListBanks(ctx context.Context, filters repositories.QuestionBankFilters) ([]repositories.QuestionBankSummary, error) {
	m.mu.RLock()
	summaries := make([]repositories.QuestionBankSummary, 0, len(m.banks))
	for _, b := range m.banks {
		if filters.Subject != "" && !strings.EqualFold(b.Subject, filters.Subject) {
			continue
		}
		summaries = append(summaries, repositories.Summarize(b))
	}
	m.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return repositories.Paginate(summaries, filters.Limit, filters.Offset), nil
}

// SaveBank inserts or replaces the bank with the same ID.
func (m *QuestionBankMemory) SaveBank(ctx context.Context, bank *models.QuestionBank) error {
	m.mu.Lock()
	m.banks[bank.ID] = cloneBank(bank)
	m.mu.Unlock()
	return nil
}

func cloneBank(b *models.QuestionBank) *models.QuestionBank {
	out := *b
	out.Questions = make([]models.Question, len(b.Questions))
	for i, q := range b.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return &out
}
