package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the application.
const (
	TypeSessionStarted   = "session.started"
	TypeSessionCompleted = "session.completed"
	TypeSessionCancelled = "session.cancelled"
	TypeReviewScheduled  = "review.scheduled"
	TypePurchase         = "shop.purchase"
	TypeSnapshotSaved    = "snapshot.saved"
	TypeSnapshotFailed   = "snapshot.failed"
)

// Event represents a change to one identity's stats aggregate.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Identity is the user id, or "local" for the anonymous workspace
	Identity string `json:"identity"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType, identity string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Identity:  identity,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// SessionPayload accompanies session.* events.
type SessionPayload struct {
	Task            string `json:"task"`
	DurationSeconds int    `json:"duration_seconds"`
	Reward          int    `json:"reward,omitempty"`
	Streak          int    `json:"streak,omitempty"`
	ComboActive     bool   `json:"combo_active,omitempty"`
	MultiplierUsed  bool   `json:"multiplier_used,omitempty"`
}

// ReviewPayload accompanies review.scheduled events.
type ReviewPayload struct {
	Task      string    `json:"task"`
	Mastery   int       `json:"mastery"`
	ReviewAt  time.Time `json:"review_at"`
	DelayDays int       `json:"delay_days"`
}

// PurchasePayload accompanies shop.purchase events.
type PurchasePayload struct {
	ItemID string `json:"item_id"`
	Spent  int    `json:"spent"`
}

// SnapshotPayload accompanies snapshot.* events.
type SnapshotPayload struct {
	Target string `json:"target"`
	Error  string `json:"error,omitempty"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Discard is an EventEmitter that drops every event.
var Discard EventEmitter = discard{}

type discard struct{}

func (discard) EmitEvent(context.Context, *Event) error { return nil }
