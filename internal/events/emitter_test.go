package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	payload := SessionPayload{Task: "Math", DurationSeconds: 1500, Reward: 20, ComboActive: true}
	event, err := NewEvent(TypeSessionCompleted, "local", payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeSessionCompleted, event.Type)
	assert.Equal(t, "local", event.Identity)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded SessionPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEventRejectsUnmarshalablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewEvent(TypePurchase, "local", make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent(TypeSessionStarted, "local", SessionPayload{Task: "x"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent(TypeSessionStarted, "local", SessionPayload{Task: "x"})
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		failing := &MockEventHandler{HandlerError: errors.New("handler error")}
		later := &MockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(later)

		event, err := NewEvent(TypeSessionCancelled, "local", SessionPayload{Task: "x"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, later.HandledCount, "later handlers still run")
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var seen []string
		emitter.RegisterHandler(HandlerFunc(func(_ context.Context, e *Event) error {
			seen = append(seen, e.Type)
			return nil
		}))

		for _, typ := range []string{TypeSessionStarted, TypeSessionCompleted} {
			event, err := NewEvent(typ, "u1", nil)
			require.NoError(t, err)
			require.NoError(t, emitter.EmitEvent(context.Background(), event))
		}
		assert.Equal(t, []string{TypeSessionStarted, TypeSessionCompleted}, seen)
	})
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Discard.EmitEvent(context.Background(), &Event{}))
}
