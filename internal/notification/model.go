package notification

import (
	"time"

	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a message in a user's inbox. Only Read ever changes after creation.
type Notification struct {
	ID        uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID               `gorm:"type:uuid;not null;index:idx_notification_user_status" json:"user_id"`
	Title     string                  `gorm:"type:varchar(255);not null" json:"title"`
	Message   string                  `gorm:"type:text;not null" json:"message"`
	Type      shared.NotificationType `gorm:"column:notification_type;type:varchar(100);not null" json:"notification_type"`
	Read      bool                    `gorm:"column:read;not null;default:false;index:idx_notification_user_status" json:"read"`
	CreatedAt time.Time               `gorm:"not null;index:idx_notification_user_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// UnreadCountResponse is the body of GET /notifications/unread-count.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse is the body of PUT /notifications/read-all.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
