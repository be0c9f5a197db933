// Package shared holds the collaborator contracts that cross feature packages.
package shared

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the verified payload of an access token issued by the identity service.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// NotificationType classifies user notifications.
type NotificationType string

const (
	NotificationTypePriceAlert NotificationType = "price_alert"
)

// NotificationInput is the payload handed to a Notifier.
type NotificationInput struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    NotificationType
}

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, in NotificationInput) error
}

// Rewarder credits gamification points to a user.
type Rewarder interface {
	Credit(ctx context.Context, userID uuid.UUID, points int, reason string) error
}
