package service

import "errors"

// Common service errors.
var (
	// ErrWorkspaceClosed is returned when mutating a workspace after its
	// identity signed out or the server began shutting down.
	ErrWorkspaceClosed = errors.New("workspace is closed")

	// ErrRemoteUnavailable is returned when an authenticated identity is used
	// but no remote store is configured.
	ErrRemoteUnavailable = errors.New("remote persistence is not configured")

	// ErrLoadInterrupted is returned when a snapshot load ran out of time
	// before storage answered.
	ErrLoadInterrupted = errors.New("snapshot load interrupted")
)
