// Package events publishes domain events for downstream consumers (points ledger,
// push delivery, analytics). Publishing is best effort and never blocks a request on the broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	PriceSubmitted Type = "price.submitted"
	AlertTriggered Type = "alert.triggered"
	PointsCredited Type = "points.credited"
)

// Event is the envelope written to the broker. Key controls partitioning.
type Event struct {
	ID         string      `json:"event_id"`
	Type       Type        `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Key        string      `json:"-"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, key string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Key:        key,
		Payload:    payload,
	}
}

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}
