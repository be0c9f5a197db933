package shopping

import (
	"time"

	"pricehive_backend/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShoppingList is a user's list for one supermarket. Estimates are never stored.
type ShoppingList struct {
	common.BaseModel
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string             `gorm:"type:varchar(255);not null" json:"name"`
	SupermarketID uuid.UUID          `gorm:"type:uuid;not null" json:"supermarket_id"`
	Items         []ShoppingListItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"items"`
}

func (ShoppingList) TableName() string { return "shopping_lists" }

// ShoppingListItem is one line of a list. Price, when set, is the total paid for Quantity.
type ShoppingListItem struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey" json:"-"`
	ListID            uuid.UUID           `gorm:"type:uuid;not null;index" json:"-"`
	Position          int                 `gorm:"not null" json:"-"`
	SellableProductID uuid.UUID           `gorm:"type:uuid;not null" json:"sellable_product_id"`
	Quantity          decimal.Decimal     `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitID            uuid.UUID           `gorm:"type:uuid;not null" json:"unit_id"`
	Price             decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	Purchased         bool                `gorm:"not null;default:false" json:"purchased"`
}

func (ShoppingListItem) TableName() string { return "shopping_list_items" }

func (i *ShoppingListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ItemRequest is one item in a create or update body.
type ItemRequest struct {
	SellableProductID uuid.UUID           `json:"sellable_product_id" binding:"required"`
	Quantity          decimal.Decimal     `json:"quantity" binding:"gt=0"`
	UnitID            uuid.UUID           `json:"unit_id" binding:"required"`
	Price             decimal.NullDecimal `json:"price" binding:"omitempty,gte=0"`
	Purchased         bool                `json:"purchased"`
}

type CreateShoppingListRequest struct {
	Name          string        `json:"name" binding:"required,max=255"`
	SupermarketID uuid.UUID     `json:"supermarket_id" binding:"required"`
	Items         []ItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateShoppingListRequest changes only the fields present. Items, when present, replace the list's items.
type UpdateShoppingListRequest struct {
	Name          *string        `json:"name" binding:"omitempty,min=1,max=255"`
	SupermarketID *uuid.UUID     `json:"supermarket_id"`
	Items         *[]ItemRequest `json:"items" binding:"omitempty,dive"`
}

type ShoppingListItemResponse struct {
	SellableProductID uuid.UUID        `json:"sellable_product_id"`
	ProductID         *uuid.UUID       `json:"product_id"`
	ProductName       *string          `json:"product_name"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitID            uuid.UUID        `json:"unit_id"`
	UnitName          *string          `json:"unit_name"`
	Price             *decimal.Decimal `json:"price"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	EstimatedPrice    *decimal.Decimal `json:"estimated_price"`
	Purchased         bool             `json:"purchased"`
	BrandID           *uuid.UUID       `json:"brand_id"`
	BrandName         *string          `json:"brand_name"`
}

type ShoppingListResponse struct {
	ID              uuid.UUID                  `json:"id"`
	Name            string                     `json:"name"`
	SupermarketID   uuid.UUID                  `json:"supermarket_id"`
	SupermarketName *string                    `json:"supermarket_name"`
	Items           []ShoppingListItemResponse `json:"items"`
	UserID          uuid.UUID                  `json:"user_id"`
	TotalEstimated  decimal.Decimal            `json:"total_estimated"`
	TotalActual     decimal.Decimal            `json:"total_actual"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// CommitResponse is the body of POST /shopping-lists/:list_id/submit-prices.
type CommitResponse struct {
	Message       string `json:"message"`
	PricesCreated int    `json:"prices_created"`
	PointsEarned  int    `json:"points_earned"`
}

func itemsFromRequest(reqs []ItemRequest) []ShoppingListItem {
	items := make([]ShoppingListItem, len(reqs))
	for i, r := range reqs {
		items[i] = ShoppingListItem{
			Position:          i,
			SellableProductID: r.SellableProductID,
			Quantity:          r.Quantity,
			UnitID:            r.UnitID,
			Price:             r.Price,
			Purchased:         r.Purchased,
		}
	}
	return items
}
