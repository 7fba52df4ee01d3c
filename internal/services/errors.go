package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/study-service/internal/errors"
	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/session"
)

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Question bank errors
	ErrQuestionBankNotFound = errors.New("question bank not found")
	ErrImportFailed         = errors.New("question bank import failed")

	// Attempt errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = fmt.Errorf("attempt already submitted: %w", session.ErrInvalidState)
	ErrResultsNotFound         = errors.New("results not found")

	// Chat errors
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrConversationNotFound = errors.New("conversation not found")

	// Document errors
	ErrDocumentNotFound  = errors.New("document not found")
	ErrNoPendingDeletion = errors.New("no document is pending deletion")

	// Timer errors
	ErrInvalidTickInterval = errors.New("tick interval must be a whole number of seconds, at least 1s")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// BusinessRuleError reports a request that is well formed but not allowed.
type BusinessRuleError struct {
	Rule    string         `json:"rule"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]any) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionBankNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrResultsNotFound) ||
		errors.Is(err, ErrConversationNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrImportFailed) ||
		errors.Is(err, session.ErrInvalidConfiguration) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, session.ErrInvalidState) ||
		errors.Is(err, ErrNoPendingDeletion)
}
