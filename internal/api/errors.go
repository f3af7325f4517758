package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/phrazzld/focus-api/internal/service"
	"github.com/phrazzld/focus-api/internal/service/auth"
	"github.com/phrazzld/focus-api/internal/session"
	"github.com/phrazzld/focus-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrSubjectNotFound),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrFlashcardNotFound),
		errors.Is(err, domain.ErrAudioNotFound),
		errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInsufficientNeurons),
		errors.Is(err, domain.ErrMultiplierActive),
		errors.Is(err, domain.ErrItemNotOwned),
		errors.Is(err, session.ErrSessionInProgress),
		errors.Is(err, session.ErrNotRunning),
		errors.Is(err, session.ErrNotFinished),
		errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case isValidation(err),
		errors.Is(err, session.ErrEmptyTask),
		errors.Is(err, session.ErrInvalidDuration),
		errors.Is(err, session.ErrInvalidMasteryLevel),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrWorkspaceClosed),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, service.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrEmptyResponse),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	var ve *domain.ValidationError
	var fe validator.ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &fe) ||
		errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrEmptyContent)
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
	}
	var fe validator.ValidationErrors
	if errors.As(err, &fe) {
		return SanitizeValidationError(fe)
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, domain.ErrSubjectNotFound):
		return "Subject not found"
	case errors.Is(err, domain.ErrLessonNotFound):
		return "Lesson not found"
	case errors.Is(err, domain.ErrExerciseNotFound):
		return "Exercise not found"
	case errors.Is(err, domain.ErrFlashcardNotFound):
		return "Flashcard not found"
	case errors.Is(err, domain.ErrAudioNotFound):
		return "Audio not found"
	case errors.Is(err, domain.ErrUnknownItem):
		return "Item not found"
	case errors.Is(err, domain.ErrInsufficientNeurons):
		return "Not enough neurons"
	case errors.Is(err, domain.ErrMultiplierActive):
		return "A multiplier is already active"
	case errors.Is(err, domain.ErrItemNotOwned):
		return "Item not owned"

	case errors.Is(err, session.ErrEmptyTask):
		return "Task label is required"
	case errors.Is(err, session.ErrInvalidDuration):
		return "Duration must be between 1 and 600 minutes"
	case errors.Is(err, session.ErrInvalidMasteryLevel):
		return "Mastery level must be between 0 and 5"
	case errors.Is(err, session.ErrSessionInProgress):
		return "A session is already in progress"
	case errors.Is(err, session.ErrNotRunning):
		return "No session is running"
	case errors.Is(err, session.ErrNotFinished):
		return "No finished session awaits a rating"

	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyEmail):
		return "Invalid email"
	case errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		return "Password must be between 6 and 72 characters"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrWorkspaceClosed),
		errors.Is(err, session.ErrClosed):
		return "Workspace is reloading, try again"
	case errors.Is(err, service.ErrRemoteUnavailable):
		return "Account storage is unavailable"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrEmptyResponse),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrTransientFailure):
		return "The assistant is unavailable right now"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into "Invalid <field>:
// <reason>" for the first failing field.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "url", "http_url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// fallbackMsg replaces the generic 500 message when given.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMsg != "" {
		msg = fallbackMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
