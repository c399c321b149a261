package services

import (
	"errors"
	"fmt"

	apperrors "github.com/worksheetlab/worksheet-service/internal/errors"
	"github.com/worksheetlab/worksheet-service/internal/ingest"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Session specific errors
	ErrSessionCompleted    = errors.New("session is already completed")
	ErrSessionNotCompleted = errors.New("session is not completed yet")

	// Worksheet specific errors
	ErrWorksheetNotLoaded = errors.New("no worksheet loaded for this session")
	ErrQuestionNotFound   = errors.New("question not found in worksheet")

	// Report specific errors
	ErrStudentInfoMissing = errors.New("student info not saved for this session")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorksheetNotLoaded) ||
		errors.Is(err, ErrQuestionNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrStudentInfoMissing) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrSessionNotCompleted) ||
		errors.Is(err, ingest.ErrIngestionInProgress)
}
