package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryPoint is one observation in a product's price history.
type HistoryPoint struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// ProductAnalyticsResponse summarises a product's recorded prices. Figures are over raw
// record prices, not per-unit prices; records with different quantities are compared as-is.
type ProductAnalyticsResponse struct {
	ProductID       uuid.UUID        `json:"product_id"`
	ProductName     string           `json:"product_name"`
	SupermarketID   *uuid.UUID       `json:"supermarket_id"`
	SupermarketName *string          `json:"supermarket_name"`
	CurrentPrice    *decimal.Decimal `json:"current_price"`
	AvgPrice        *decimal.Decimal `json:"avg_price"`
	MinPrice        *decimal.Decimal `json:"min_price"`
	MaxPrice        *decimal.Decimal `json:"max_price"`
	PriceHistory    []HistoryPoint   `json:"price_history"`
}

type ComparisonEntry struct {
	SupermarketID     uuid.UUID       `json:"supermarket_id"`
	SupermarketName   *string         `json:"supermarket_name"`
	SellableProductID *uuid.UUID      `json:"sellable_product_id"`
	Price             decimal.Decimal `json:"price"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CompareResponse lists the latest price per supermarket, cheapest first.
type CompareResponse struct {
	ProductID   uuid.UUID         `json:"product_id"`
	ProductName string            `json:"product_name"`
	Comparison  []ComparisonEntry `json:"comparison"`
	BestPrice   *ComparisonEntry  `json:"best_price"`
}

type RecentActivity struct {
	ProductName     string          `json:"product_name"`
	SupermarketName string          `json:"supermarket_name"`
	Price           decimal.Decimal `json:"price"`
	CreatedAt       time.Time       `json:"created_at"`
}

type StatsResponse struct {
	TotalProducts     int64            `json:"total_products"`
	TotalPrices       int64            `json:"total_prices"`
	TotalUsers        int64            `json:"total_users"`
	TotalSupermarkets int64            `json:"total_supermarkets"`
	RecentActivity    []RecentActivity `json:"recent_activity"`
}
