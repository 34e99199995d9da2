// Package journal records service lifecycle events to a pluggable store.
// Writes are best-effort: callers ignore errors so a broken journal never
// blocks a start or stop.
package journal

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart EventType = "start"
	EventStop  EventType = "stop"
	EventStale EventType = "stale"
)

// Event represents one lifecycle observation for a supervised service.
type Event struct {
	Type       EventType `json:"type"`
	Service    string    `json:"service"`
	PID        int       `json:"pid"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink is a destination for lifecycle events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	// Recent returns up to limit events, newest first. Empty service matches all.
	Recent(ctx context.Context, service string, limit int) ([]Event, error)
	Close() error
}
