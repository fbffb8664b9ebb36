package services

import (
	"errors"
	"fmt"

	apperrors "github.com/quizdesk/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Quiz policy errors - user-correctable or informative, surfaced
	// verbatim to the UI
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizNotAvailable   = errors.New("quiz is not active")
	ErrQuizNotYetOpen     = errors.New("quiz has not started yet")
	ErrStartWindowExpired = errors.New("quiz start window has expired; you must start within 30 minutes of the start time")
	ErrQuizExpired        = errors.New("quiz has expired")
	ErrNotEnrolled        = errors.New("you don't have access to this quiz")

	// Attempt state errors - benign notices, usually a double-click or a
	// race with an auto-submit
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrNoActiveAttempt         = errors.New("no active quiz attempt found")
	ErrAttemptNotActive        = errors.New("attempt is not in progress")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrInvalidQuestion         = errors.New("question does not belong to this quiz")
	ErrCheckAnswerDisabled     = errors.New("answer checking is not enabled for this quiz")
	ErrNoSavedAnswer           = errors.New("no saved answer for this question")

	// Data integrity errors - upstream authoring corruption, hard failures
	ErrNoValidQuestions = errors.New("no valid questions found for this quiz")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// AttemptLimitError carries the count and limit so the UI can show
// "you have completed N/M attempts".
type AttemptLimitError struct {
	Used  int
	Limit int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("maximum attempts reached: you have completed %d/%d attempts", e.Used, e.Limit)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrNoActiveAttempt) ||
		errors.Is(err, ErrNoSavedAnswer) ||
		errors.Is(err, ErrUserNotFound)
}

// IsPolicyViolation checks if error represents a quiz policy failure; these
// are user-facing and never logged as server faults.
func IsPolicyViolation(err error) bool {
	var limitErr *AttemptLimitError
	return errors.Is(err, ErrQuizNotAvailable) ||
		errors.Is(err, ErrQuizNotYetOpen) ||
		errors.Is(err, ErrStartWindowExpired) ||
		errors.Is(err, ErrQuizExpired) ||
		errors.Is(err, ErrNotEnrolled) ||
		errors.Is(err, ErrCheckAnswerDisabled) ||
		errors.As(err, &limitErr)
}

// IsStateConflict checks if error represents a benign attempt-state race.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrAttemptNotActive) ||
		errors.Is(err, ErrAttemptAlreadySubmitted)
}

// IsDataIntegrity checks if error indicates corrupt authoring data.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrNoValidQuestions)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}
