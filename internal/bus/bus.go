// Package bus publishes client lifecycle events. Without a Redis URL every
// publish is a no-op.
package bus

import (
	"context"
	"io"
	"log/slog"
	"time"
)

type Kind string

const (
	ClientCreated Kind = "client.created"
	ClientUpdated Kind = "client.updated"
	ClientDeleted Kind = "client.deleted"
	NoteAdded     Kind = "note.added"
	TrackingAdded Kind = "tracking.added"
)

// Stream is the Redis stream events are appended to.
const Stream = "greenlight:clients"

type Event struct {
	Kind     Kind
	ClientID string
	// Actor is the email of the authenticated user that caused the event.
	Actor string
	// Payload is the JSON body of the affected record, if any.
	Payload string
	At      time.Time
}

func (e Event) fields() map[string]any {
	return map[string]any{
		"kind":      string(e.Kind),
		"client_id": e.ClientID,
		"actor":     e.Actor,
		"payload":   e.Payload,
		"timestamp": e.At.UnixMilli(),
	}
}

type Bus interface {
	Publish(ctx context.Context, e Event) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// NewBus connects to redisURL. An empty or unreachable URL yields a NullBus.
func NewBus(redisURL string, logger *slog.Logger) Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if redisURL == "" {
		return NewNullBus(logger)
	}
	rb, err := NewRedisBus(redisURL, logger)
	if err != nil {
		logger.Warn("redis unavailable, events disabled", "err", err)
		return NewNullBus(logger)
	}
	return rb
}
