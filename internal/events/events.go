package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies what a user did.
type ActivityType string

// Activity types emitted by the services.
const (
	FlashcardsGenerated ActivityType = "flashcards_generated"
	PathCreated         ActivityType = "path_created"
	PathDeleted         ActivityType = "path_deleted"
	QuizRecorded        ActivityType = "quiz_recorded"
)

// ActivityEvent records one user action that changed durable state.
type ActivityEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      ActivityType    `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *ActivityEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewActivityEvent creates an event, serializing payload as JSON. A nil
// payload is omitted.
func NewActivityEvent(t ActivityType, userID uuid.UUID, payload any) (*ActivityEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &ActivityEvent{
		ID:        uuid.New(),
		Type:      t,
		UserID:    userID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes activity events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *ActivityEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ActivityEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ActivityEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *ActivityEvent) error
}

// Publish builds and emits an event. Failures are returned but callers
// normally log and continue, since the underlying action already happened.
func Publish(ctx context.Context, emitter EventEmitter, t ActivityType, userID uuid.UUID, payload any) error {
	if emitter == nil {
		return nil
	}
	event, err := NewActivityEvent(t, userID, payload)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
