// Package reward hands point credits to the external points ledger.
package reward

import (
	"context"
	"fmt"

	"pricehive_backend/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PointsCreditedPayload is the body of a points.credited event.
type PointsCreditedPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
	Reason string    `json:"reason"`
}

// EventRewarder implements shared.Rewarder by publishing points.credited events.
type EventRewarder struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func NewEventRewarder(publisher events.Publisher, logger *zap.Logger) *EventRewarder {
	return &EventRewarder{publisher: publisher, logger: logger.Named("Rewarder")}
}

// Credit emits one credit. Non-positive amounts are ignored.
func (r *EventRewarder) Credit(ctx context.Context, userID uuid.UUID, points int, reason string) error {
	if points <= 0 {
		return nil
	}
	ev := events.New(events.PointsCredited, userID.String(), PointsCreditedPayload{
		UserID: userID,
		Points: points,
		Reason: reason,
	})
	if err := r.publisher.Publish(ctx, ev); err != nil {
		return fmt.Errorf("credit %d points to %s: %w", points, userID, err)
	}
	r.logger.Debug("Points credited", zap.String("user_id", userID.String()), zap.Int("points", points), zap.String("reason", reason))
	return nil
}
