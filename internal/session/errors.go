package session

import (
	"errors"

	"github.com/phrazzld/focus-api/internal/domain/focus"
)

var (
	// ErrEmptyTask is returned by Start when the task label is blank.
	ErrEmptyTask = errors.New("task label cannot be empty")

	// ErrSessionInProgress is returned when an operation needs the idle state.
	ErrSessionInProgress = errors.New("a session is already in progress")

	// ErrNotRunning is returned by Cancel outside the running state.
	ErrNotRunning = errors.New("no session is running")

	// ErrNotFinished is returned by RateMastery when no session awaits a rating.
	ErrNotFinished = errors.New("no finished session awaits a mastery rating")

	// ErrInvalidDuration is returned for a non-positive or oversized duration.
	ErrInvalidDuration = errors.New("session duration must be between 1 and 600 minutes")

	// ErrInvalidMasteryLevel is returned for ratings outside 0..5.
	ErrInvalidMasteryLevel = focus.ErrInvalidMasteryLevel

	// ErrClosed is returned by operations on a machine after Close.
	ErrClosed = errors.New("session machine is closed")
)
