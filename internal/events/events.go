package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type enumerates the operations that emit events.
type Type string

const (
	TypeAsk           Type = "ask"
	TypeVerify        Type = "verify"
	TypeSemanticMatch Type = "semantic_match"
)

// Event records the outcome of one completed gateway operation.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	Provider   string    `json:"provider"`
	Question   string    `json:"question,omitempty"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// Handler processes one delivered event.
type Handler func(context.Context, Event) error

// Publisher emits events. Implementations must not block request handling for long.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Subscriber delivers events to a handler until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, handler Handler) error
}

// stamp fills in the id and timestamp when the caller left them empty.
func stamp(ev Event) Event {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return ev
}
