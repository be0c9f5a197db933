package alert

import (
	"time"

	"pricehive_backend/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertType selects the trigger predicate.
type AlertType string

const (
	TypeBelow     AlertType = "below"
	TypeAbove     AlertType = "above"
	TypeAnyChange AlertType = "any_change"
)

func (t AlertType) Valid() bool {
	switch t {
	case TypeBelow, TypeAbove, TypeAnyChange:
		return true
	}
	return false
}

// Alert is a standing rule that fires at most once. A nil SupermarketID matches any supermarket.
type Alert struct {
	common.BaseModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_alerts_active,priority:1" json:"product_id"`
	SupermarketID *uuid.UUID      `gorm:"type:uuid" json:"supermarket_id"`
	TargetPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"target_price"`
	AlertType     AlertType       `gorm:"type:varchar(20);not null" json:"alert_type"`
	Triggered     bool            `gorm:"not null;default:false;index:idx_alerts_active,priority:2" json:"triggered"`
}

// TableName specifies the table name for GORM.
func (Alert) TableName() string {
	return "alerts"
}

// ShouldTrigger evaluates the alert's predicate against a new price.
func (a *Alert) ShouldTrigger(newPrice decimal.Decimal) bool {
	switch a.AlertType {
	case TypeBelow:
		return newPrice.LessThanOrEqual(a.TargetPrice)
	case TypeAbove:
		return newPrice.GreaterThanOrEqual(a.TargetPrice)
	case TypeAnyChange:
		return true
	}
	return false
}

// PriceEvent is a price change worth evaluating. Delta is new minus previous price.
type PriceEvent struct {
	ProductID     uuid.UUID
	SupermarketID uuid.UUID
	NewPrice      decimal.Decimal
	Delta         decimal.Decimal
}

// CreateAlertRequest is the body of POST /alerts.
type CreateAlertRequest struct {
	ProductID     uuid.UUID           `json:"product_id" binding:"required"`
	SupermarketID *uuid.UUID          `json:"supermarket_id"`
	TargetPrice   decimal.NullDecimal `json:"target_price" binding:"omitempty,gte=0"`
	AlertType     AlertType           `json:"alert_type"`
}

// AlertResponse is an alert with display names.
type AlertResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     *string         `json:"product_name"`
	SupermarketID   *uuid.UUID      `json:"supermarket_id"`
	SupermarketName *string         `json:"supermarket_name"`
	TargetPrice     decimal.Decimal `json:"target_price"`
	AlertType       AlertType       `json:"alert_type"`
	Triggered       bool            `json:"triggered"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AlertTriggeredPayload is the body of an alert.triggered event.
type AlertTriggeredPayload struct {
	AlertID       uuid.UUID       `json:"alert_id"`
	UserID        uuid.UUID       `json:"user_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	SupermarketID uuid.UUID       `json:"supermarket_id"`
	NewPrice      decimal.Decimal `json:"new_price"`
	Delta         decimal.Decimal `json:"delta"`
}
