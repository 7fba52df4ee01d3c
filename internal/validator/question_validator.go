package validator

import (
	"fmt"
	"math"

	"github.com/SAP-F-2025/study-service/internal/errors"
	"github.com/SAP-F-2025/study-service/internal/models"
)

// QuestionValidator checks that a question's options and reference answer fit its type.
// Recorded answers are never checked here; they are stored as given.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion returns every rule the question breaks.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) errors.ValidationErrors {
	var errs errors.ValidationErrors

	if question.Text == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule("text", "is required", "required", nil))
	}
	if question.Points < 1 {
		errs = append(errs, *errors.NewValidationErrorWithRule("points", "must be at least 1", "min", question.Points))
	}

	switch question.Type {
	case models.MultipleChoice:
		errs = append(errs, v.validateMultipleChoice(question)...)
	case models.TrueFalse:
		if _, ok := question.CorrectAnswer.(bool); !ok {
			errs = append(errs, correctAnswerError(question))
		}
	case models.ShortAnswer:
		if s, ok := question.CorrectAnswer.(string); !ok || s == "" {
			errs = append(errs, correctAnswerError(question))
		}
	case models.Essay:
		if question.CorrectAnswer != nil {
			errs = append(errs, correctAnswerError(question))
		}
	default:
		errs = append(errs, *errors.NewValidationErrorWithRule("type", "must be a valid question type (multiple_choice, true_false, short_answer, essay)", "question_type", question.Type))
	}

	if question.Type != models.MultipleChoice && len(question.Options) > 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("options", "are only allowed for multiple choice questions", "options", question.Options))
	}

	return errs
}

// ValidateBatch validates every question and rejects duplicate IDs.
// Field names are prefixed with the question position.
func (v *QuestionValidator) ValidateBatch(questions []models.Question) errors.ValidationErrors {
	var errs errors.ValidationErrors

	if len(questions) == 0 {
		return append(errs, *errors.NewValidationErrorWithRule("questions", "is required", "required", nil))
	}

	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		for _, e := range v.ValidateQuestion(q) {
			e.Field = fmt.Sprintf("questions[%d].%s", i, e.Field)
			errs = append(errs, e)
		}
		if seen[q.ID] {
			errs = append(errs, *errors.NewValidationErrorWithRule(fmt.Sprintf("questions[%d].id", i), "must not contain duplicates", "unique", q.ID))
		}
		seen[q.ID] = true
	}

	return errs
}

func (v *QuestionValidator) validateMultipleChoice(question *models.Question) errors.ValidationErrors {
	var errs errors.ValidationErrors

	if len(question.Options) == 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("options", "must be a non-empty list of distinct options", "options", question.Options))
	}

	seen := make(map[string]bool, len(question.Options))
	for _, opt := range question.Options {
		if seen[opt] {
			errs = append(errs, *errors.NewValidationErrorWithRule("options", "must be a non-empty list of distinct options", "options", opt))
			break
		}
		seen[opt] = true
	}

	idx, ok := OptionIndex(question.CorrectAnswer)
	if !ok || idx < 0 || idx >= len(question.Options) {
		errs = append(errs, correctAnswerError(question))
	}

	return errs
}

// OptionIndex reads a multiple choice reference answer. JSON decoding turns
// integers into float64, so integral floats are accepted too.
func OptionIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func correctAnswerError(question *models.Question) errors.ValidationError {
	return *errors.NewValidationErrorWithRule("correct_answer", "does not match the question type", "correct_answer", question.CorrectAnswer)
}
