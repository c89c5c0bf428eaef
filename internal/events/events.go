package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Content event types
const (
	PostCreated    = "post.created"
	PostUpdated    = "post.updated"
	PostDeleted    = "post.deleted"
	TagCreated     = "tag.created"
	TagUpdated     = "tag.updated"
	TagDeleted     = "tag.deleted"
	PostTagAdded   = "post_tag.added"
	PostTagRemoved = "post_tag.removed"
)

// ContentEvent records a committed change to posts, tags or their associations.
type ContentEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the content event type constants
	Type string `json:"type"`

	// Key identifies the affected entity, e.g. "post:42" or "post_tag:42:7".
	// Publishers use it as the partition key so events for one entity stay ordered.
	Key string `json:"key"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ContentEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewContentEvent creates a new ContentEvent with the specified type, key and payload.
func NewContentEvent(eventType, key string, payload interface{}) (*ContentEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ContentEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Key:       key,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ContentEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows stores to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ContentEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *ContentEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *ContentEvent) error {
	return f(ctx, event)
}
