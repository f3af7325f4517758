package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent is returned when a required name or text is blank.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInsufficientNeurons is returned when a spend exceeds the balance.
	ErrInsufficientNeurons = errors.New("insufficient neurons")

	// ErrMultiplierActive is returned when buying the multiplier while one is pending.
	ErrMultiplierActive = errors.New("multiplier already active")

	// ErrUnknownItem is returned for a shop item id that is not in the catalog.
	ErrUnknownItem = errors.New("unknown shop item")

	// ErrItemNotOwned is returned when selecting a cosmetic that was never bought.
	ErrItemNotOwned = errors.New("item not owned")

	ErrSubjectNotFound   = errors.New("subject not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")
	ErrAudioNotFound     = errors.New("audio not found")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a rejected input field. It wraps a sentinel so
// callers can match with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
