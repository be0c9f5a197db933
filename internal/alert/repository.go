package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, alert *Alert) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Alert, error)
	DeleteOwned(ctx context.Context, alertID, userID uuid.UUID) (bool, error)
	FindActive(ctx context.Context, productID, supermarketID uuid.UUID) ([]Alert, error)
	MarkTriggered(ctx context.Context, alertID uuid.UUID) (bool, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM alert repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, alert *Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// ListByUser returns the user's alerts, newest first.
func (r *GORMRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Alert, error) {
	var alerts []Alert
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("listing alerts for user %s failed: %w", userID, err)
	}
	return alerts, nil
}

// DeleteOwned deletes the alert if it belongs to userID. It reports whether a row was removed.
func (r *GORMRepository) DeleteOwned(ctx context.Context, alertID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", alertID, userID).Delete(&Alert{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete alert %s: %w", alertID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindActive selects untriggered alerts for the product at this supermarket or at any supermarket.
func (r *GORMRepository) FindActive(ctx context.Context, productID, supermarketID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND triggered = ?", productID, false).
		Where(r.db.Where("supermarket_id = ?", supermarketID).Or("supermarket_id IS NULL")).
		Order("created_at ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("loading active alerts for product %s failed: %w", productID, err)
	}
	return alerts, nil
}

// MarkTriggered flips triggered only if the alert is still active. It returns false when
// another evaluation got there first, so each alert fires at most once.
func (r *GORMRepository) MarkTriggered(ctx context.Context, alertID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Alert{}).
		Where("id = ? AND triggered = ?", alertID, false).
		Update("triggered", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark alert %s triggered: %w", alertID, result.Error)
	}
	return result.RowsAffected == 1, nil
}
