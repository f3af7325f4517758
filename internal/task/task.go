package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TaskTypeSnapshotSave writes one stats snapshot to its persistence target
	TaskTypeSnapshotSave = "snapshot_save"
)

var (
	// ErrQueueFull is returned by Submit when the buffer has no free slot.
	ErrQueueFull = errors.New("task queue is full, try again later")

	// ErrRunnerStopped is returned by Submit after Stop.
	ErrRunnerStopped = errors.New("task runner is stopped")
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// funcTask adapts a function to Task.
type funcTask struct {
	id   uuid.UUID
	kind string
	fn   func(ctx context.Context) error
}

// NewFuncTask wraps fn as a Task of the given type.
func NewFuncTask(kind string, fn func(ctx context.Context) error) Task {
	return &funcTask{id: uuid.New(), kind: kind, fn: fn}
}

func (t *funcTask) ID() uuid.UUID                     { return t.id }
func (t *funcTask) Type() string                      { return t.kind }
func (t *funcTask) Execute(ctx context.Context) error { return t.fn(ctx) }
