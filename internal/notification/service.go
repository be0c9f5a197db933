package notification

import (
	"context"
	"errors"
	"time"

	"pricehive_backend/internal/common"
	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages user notifications.
type Service interface {
	CreateNotification(ctx context.Context, in shared.NotificationInput) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ServiceImplementation implements Service and shared.Notifier.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger.Named("NotificationService")}
}

// Notify stores the message in the user's inbox.
func (s *ServiceImplementation) Notify(ctx context.Context, in shared.NotificationInput) error {
	_, err := s.CreateNotification(ctx, in)
	return err
}

func (s *ServiceImplementation) CreateNotification(ctx context.Context, in shared.NotificationInput) (*Notification, error) {
	n := &Notification{
		UserID:  in.UserID,
		Title:   in.Title,
		Message: in.Message,
		Type:    in.Type,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.String("user_id", in.UserID.String()),
			zap.String("type", string(in.Type)),
			zap.Error(err),
		)
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	return n, nil
}

func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to get notifications", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return notifications, pagination, nil
}

func (s *ServiceImplementation) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.String("user_id", userID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not count notifications.")
	}
	return n, nil
}

func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	err := s.repo.MarkAsRead(ctx, notificationID, userID)
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	s.logger.Error("Failed to mark notification as read",
		zap.String("notification_id", notificationID.String()),
		zap.Error(err),
	)
	return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
}

func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.String("user_id", userID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return n, nil
}

// PurgeReadBefore is used by the retention job.
func (s *ServiceImplementation) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	return n, nil
}
