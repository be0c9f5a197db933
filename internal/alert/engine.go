package alert

import (
	"context"
	"errors"
	"fmt"

	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/events"
	"pricehive_backend/internal/shared"

	"go.uber.org/zap"
)

const notificationTitle = "Price Alert"

// Engine evaluates standing alerts against a price change.
type Engine interface {
	Evaluate(ctx context.Context, ev PriceEvent) ([]Alert, error)
}

type engine struct {
	repo      Repository
	catalog   catalog.Directory
	notifier  shared.Notifier
	publisher events.Publisher
	logger    *zap.Logger
}

// NewEngine creates the alert evaluation engine.
func NewEngine(repo Repository, dir catalog.Directory, notifier shared.Notifier, publisher events.Publisher, logger *zap.Logger) Engine {
	return &engine{
		repo:      repo,
		catalog:   dir,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger.Named("AlertEngine"),
	}
}

// Evaluate triggers every matching active alert whose predicate holds and notifies its owner.
// Callers only invoke it for changes above the epsilon, so any_change alerts always fire.
// A flip that loses the race to a concurrent evaluation is skipped. Notification and event
// failures are logged and never undo a flip.
func (e *engine) Evaluate(ctx context.Context, ev PriceEvent) ([]Alert, error) {
	candidates, err := e.repo.FindActive(ctx, ev.ProductID, ev.SupermarketID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	names, err := catalog.Resolve(ctx, e.catalog, catalog.NewRefs().
		Add(catalog.KindProduct, &ev.ProductID).
		Add(catalog.KindSupermarket, &ev.SupermarketID))
	if err != nil {
		e.logger.Warn("Could not resolve names for alert message", zap.Error(err))
	}
	message := FormatMessage(
		names.GetOr(catalog.KindProduct, &ev.ProductID, "Product"),
		names.GetOr(catalog.KindSupermarket, &ev.SupermarketID, "Supermarket"),
		ev,
	)

	var (
		triggered []Alert
		errs      []error
	)
	for i := range candidates {
		a := candidates[i]
		if !a.ShouldTrigger(ev.NewPrice) {
			continue
		}

		flipped, err := e.repo.MarkTriggered(ctx, a.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !flipped {
			e.logger.Debug("Alert already triggered by a concurrent evaluation", zap.String("alert_id", a.ID.String()))
			continue
		}
		a.Triggered = true
		triggered = append(triggered, a)

		if err := e.notifier.Notify(ctx, shared.NotificationInput{
			UserID:  a.UserID,
			Title:   notificationTitle,
			Message: message,
			Type:    shared.NotificationTypePriceAlert,
		}); err != nil {
			e.logger.Warn("Alert triggered but notification failed",
				zap.String("alert_id", a.ID.String()),
				zap.String("user_id", a.UserID.String()),
				zap.Error(err),
			)
		}

		if err := e.publisher.Publish(ctx, events.New(events.AlertTriggered, a.UserID.String(), AlertTriggeredPayload{
			AlertID:       a.ID,
			UserID:        a.UserID,
			ProductID:     ev.ProductID,
			SupermarketID: ev.SupermarketID,
			NewPrice:      ev.NewPrice,
			Delta:         ev.Delta,
		})); err != nil {
			e.logger.Warn("Failed to publish alert.triggered", zap.String("alert_id", a.ID.String()), zap.Error(err))
		}
	}

	if len(triggered) > 0 {
		e.logger.Info("Alerts triggered",
			zap.String("product_id", ev.ProductID.String()),
			zap.String("supermarket_id", ev.SupermarketID.String()),
			zap.Int("count", len(triggered)),
		)
	}
	return triggered, errors.Join(errs...)
}

// FormatMessage renders e.g. "Milk at Mercadona: 1.20€ (+0.30€)".
func FormatMessage(productName, supermarketName string, ev PriceEvent) string {
	change := ev.Delta.StringFixed(2)
	if ev.Delta.IsPositive() {
		change = "+" + change
	}
	return fmt.Sprintf("%s at %s: %s€ (%s€)", productName, supermarketName, ev.NewPrice.StringFixed(2), change)
}
