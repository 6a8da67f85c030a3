// Package events carries booking events from the module that persisted a
// change to the modules that react to it. Events are published after the
// change is stored and are never used to decide whether to store it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a fact about a booking that already happened.
type Event interface {
	// EventName is the subscription key, e.g. "bookings.booking.changed".
	EventName() string
	// EventID is unique per published event. Consumers use it to drop
	// duplicates when a handler is retried.
	EventID() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by every booking event.
type BaseEvent struct {
	ID        string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a new event with a fresh id and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one published event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus delivers events to the handlers subscribed to their name.
type Bus interface {
	// Publish hands the event to every subscriber without waiting.
	Publish(ctx context.Context, event Event)
	// PublishSync runs every subscriber and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
