package price

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceRecord is an immutable price observation. Price is the total paid for Quantity units.
// Current records carry SellableProductID; legacy records carry ProductID and SupermarketID instead.
type PriceRecord struct {
	// Seq is the insertion order, used to break created_at ties.
	Seq               int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	ID                uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	SellableProductID *uuid.UUID      `gorm:"type:uuid;index:idx_prices_sellable" json:"sellable_product_id,omitempty"`
	ProductID         *uuid.UUID      `gorm:"type:uuid;index:idx_prices_legacy,priority:1" json:"product_id,omitempty"`
	SupermarketID     *uuid.UUID      `gorm:"type:uuid;index:idx_prices_legacy,priority:2" json:"supermarket_id,omitempty"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity          decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt         time.Time       `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (PriceRecord) TableName() string {
	return "prices"
}

func (r *PriceRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Key returns the identity the record's history is kept under.
func (r *PriceRecord) Key() Key {
	if r.SellableProductID != nil {
		return BySellable(*r.SellableProductID)
	}
	return ByLegacy(derefUUID(r.ProductID), derefUUID(r.SupermarketID))
}

// SubmitPriceRequest is the body of POST /prices. Either sellable_product_id or the
// legacy product_id + supermarket_id pair must be given.
type SubmitPriceRequest struct {
	SellableProductID *uuid.UUID          `json:"sellable_product_id"`
	ProductID         *uuid.UUID          `json:"product_id"`
	SupermarketID     *uuid.UUID          `json:"supermarket_id"`
	Price             decimal.NullDecimal `json:"price" binding:"omitempty,gte=0"`
	Quantity          decimal.NullDecimal `json:"quantity" binding:"omitempty,gt=0"`
}

// PriceResponse is a price record enriched with display names.
type PriceResponse struct {
	ID                uuid.UUID       `json:"id"`
	SellableProductID *uuid.UUID      `json:"sellable_product_id"`
	ProductID         *uuid.UUID      `json:"product_id"`
	SupermarketID     *uuid.UUID      `json:"supermarket_id"`
	ProductName       *string         `json:"product_name"`
	SupermarketName   *string         `json:"supermarket_name"`
	BrandName         *string         `json:"brand_name"`
	Price             decimal.Decimal `json:"price"`
	Quantity          decimal.Decimal `json:"quantity"`
	UserID            uuid.UUID       `json:"user_id"`
	UserName          *string         `json:"user_name"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Key returns the partition key used when the record is published.
func (r PriceResponse) Key() string {
	if r.SellableProductID != nil {
		return r.SellableProductID.String()
	}
	return derefUUID(r.ProductID).String() + ":" + derefUUID(r.SupermarketID).String()
}

// PriceSubmittedPayload is the body of a price.submitted event.
type PriceSubmittedPayload struct {
	PriceResponse
	PreviousPrice *decimal.Decimal `json:"previous_price,omitempty"`
}

// LatestPriceResponse answers GET /prices/latest/:product_id. A missing price is a
// normal answer with Price nil and Message set.
type LatestPriceResponse struct {
	Price     *decimal.Decimal `json:"price"`
	CreatedAt *time.Time       `json:"created_at,omitempty"`
	Message   string           `json:"message,omitempty"`
}

const (
	msgNoSellable = "No sellable product found"
	msgNoPrice    = "No price found"
)

func derefUUID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
