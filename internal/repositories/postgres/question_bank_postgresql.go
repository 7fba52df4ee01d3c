package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories"
)

// QuestionBankRecord is the question_banks row
type QuestionBankRecord struct {
	ID        string           `gorm:"primaryKey;size:100"`
	Title     string           `gorm:"not null;size:200"`
	Subject   string           `gorm:"size:100;index"`
	Duration  int              `gorm:"not null;default:0"`
	Questions []QuestionRecord `gorm:"foreignKey:BankID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (QuestionBankRecord) TableName() string { return "question_banks" }

// QuestionRecord is the questions row. Options and the reference answer are stored as jsonb.
type QuestionRecord struct {
	BankID        string              `gorm:"primaryKey;size:100"`
	ID            string              `gorm:"primaryKey;size:100"`
	Position      int                 `gorm:"not null"`
	Type          models.QuestionType `gorm:"not null;size:32"`
	Text          string              `gorm:"type:text;not null"`
	Options       datatypes.JSON      `gorm:"type:jsonb"`
	CorrectAnswer datatypes.JSON      `gorm:"type:jsonb"`
	Points        int                 `gorm:"not null;default:1"`
	Explanation   string              `gorm:"type:text"`
}

func (QuestionRecord) TableName() string { return "questions" }

type QuestionBankPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionBankPostgreSQL(db *gorm.DB) repositories.QuestionBankRepository {
	return &QuestionBankPostgreSQL{db: db}
}

// AutoMigrate creates the question bank tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&QuestionBankRecord{}, &QuestionRecord{})
}

func (q *QuestionBankPostgreSQL) GetBank(ctx context.Context, id string) (*models.QuestionBank, error) {
	var record QuestionBankRecord
	err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return fromRecord(&record)
}

func (q *QuestionBankPostgreSQL) ListBanks(ctx context.Context, filters repositories.QuestionBankFilters) ([]repositories.QuestionBankSummary, error) {
	query := q.db.WithContext(ctx).
		Table("question_banks AS b").
		Select("b.id, b.title, b.subject, b.duration, COUNT(qs.id) AS question_count, COALESCE(SUM(qs.points), 0) AS total_points").
		Joins("LEFT JOIN questions qs ON qs.bank_id = b.id").
		Group("b.id, b.title, b.subject, b.duration").
		Order("b.id ASC")

	if filters.Subject != "" {
		query = query.Where("LOWER(b.subject) = ?", strings.ToLower(filters.Subject))
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var summaries []repositories.QuestionBankSummary
	if err := query.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// SaveBank replaces the bank and all of its questions in one transaction.
func (q *QuestionBankPostgreSQL) SaveBank(ctx context.Context, bank *models.QuestionBank) error {
	record, err := toRecord(bank)
	if err != nil {
		return err
	}
	questions := record.Questions
	record.Questions = nil

	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "subject", "duration", "updated_at"}),
		}).Create(record).Error; err != nil {
			return fmt.Errorf("failed to save question bank: %w", err)
		}

		if err := tx.Where("bank_id = ?", bank.ID).Delete(&QuestionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear questions: %w", err)
		}

		if len(questions) == 0 {
			return nil
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to save questions: %w", err)
		}
		return nil
	})
}

func toRecord(bank *models.QuestionBank) (*QuestionBankRecord, error) {
	record := &QuestionBankRecord{
		ID:        bank.ID,
		Title:     bank.Title,
		Subject:   bank.Subject,
		Duration:  bank.Duration,
		Questions: make([]QuestionRecord, 0, len(bank.Questions)),
	}

	for i, question := range bank.Questions {
		options, err := json.Marshal(question.Options)
		if err != nil {
			return nil, fmt.Errorf("question %s: failed to marshal options: %w", question.ID, err)
		}
		answer, err := json.Marshal(question.CorrectAnswer)
		if err != nil {
			return nil, fmt.Errorf("question %s: failed to marshal answer: %w", question.ID, err)
		}

		record.Questions = append(record.Questions, QuestionRecord{
			BankID:        bank.ID,
			ID:            question.ID,
			Position:      i,
			Type:          question.Type,
			Text:          question.Text,
			Options:       datatypes.JSON(options),
			CorrectAnswer: datatypes.JSON(answer),
			Points:        question.Points,
			Explanation:   question.Explanation,
		})
	}
	return record, nil
}

func fromRecord(record *QuestionBankRecord) (*models.QuestionBank, error) {
	bank := &models.QuestionBank{
		ID:        record.ID,
		Title:     record.Title,
		Subject:   record.Subject,
		Duration:  record.Duration,
		Questions: make([]models.Question, 0, len(record.Questions)),
	}

	for _, r := range record.Questions {
		question := models.Question{
			ID:          r.ID,
			Type:        r.Type,
			Text:        r.Text,
			Points:      r.Points,
			Explanation: r.Explanation,
		}
		if len(r.Options) > 0 {
			if err := json.Unmarshal(r.Options, &question.Options); err != nil {
				return nil, fmt.Errorf("question %s: invalid options: %w", r.ID, err)
			}
		}
		if len(r.CorrectAnswer) > 0 {
			if err := json.Unmarshal(r.CorrectAnswer, &question.CorrectAnswer); err != nil {
				return nil, fmt.Errorf("question %s: invalid answer: %w", r.ID, err)
			}
		}
		bank.Questions = append(bank.Questions, question)
	}
	return bank, nil
}
