package notification

import (
	"context"
	"fmt"
	"time"

	"pricehive_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("insert notification for user %s: %w", n.UserID, err)
	}
	return nil
}

// inbox scopes queries to one user's notifications.
func (r *GORMRepository) inbox(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
}

// GetByUserID returns one page of the user's inbox, newest first.
func (r *GORMRepository) GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var total int64
	if err := r.inbox(ctx, userID).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("count notifications for user %s: %w", userID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)
	items := []Notification{}
	if total == 0 {
		return items, pagination, nil
	}

	err := r.inbox(ctx, userID).
		Order("created_at DESC").
		Limit(pagination.PageSize).
		Offset(common.Offset(pagination.CurrentPage, pagination.PageSize)).
		Find(&items).Error
	if err != nil {
		return nil, nil, fmt.Errorf("list notifications for user %s: %w", userID, err)
	}
	return items, pagination, nil
}

func (r *GORMRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := r.inbox(ctx, userID).Where("read = ?", false).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count unread notifications for user %s: %w", userID, err)
	}
	return n, nil
}

// MarkAsRead is idempotent for the owner. A missing or foreign notification is ErrNotFound.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	res := r.inbox(ctx, userID).Where("id = ?", notificationID).Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

// MarkAllAsRead flips every unread notification of the user and returns how many changed.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.inbox(ctx, userID).Where("read = ?", false).Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all notifications read for user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteReadBefore removes read notifications created before cutoff. Unread ones are kept.
func (r *GORMRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge read notifications before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
