// Package catalog is a read-only view of the product catalog. The tables are owned and
// written by the catalog management service; this module only resolves ids and names.
package catalog

import (
	"pricehive_backend/internal/common"

	"github.com/google/uuid"
)

// SellableProduct is a (product, supermarket, brand) combination carrying its own price history.
type SellableProduct struct {
	common.BaseModel
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	SupermarketID uuid.UUID  `gorm:"type:uuid;not null;index" json:"supermarket_id"`
	BrandID       *uuid.UUID `gorm:"type:uuid" json:"brand_id,omitempty"`
}

func (SellableProduct) TableName() string { return "sellable_products" }

type Product struct {
	common.BaseModel
	Name    string     `gorm:"type:varchar(255);not null" json:"name"`
	BrandID *uuid.UUID `gorm:"type:uuid" json:"brand_id,omitempty"`
	UnitID  *uuid.UUID `gorm:"type:uuid" json:"unit_id,omitempty"`
}

func (Product) TableName() string { return "products" }

type Supermarket struct {
	common.BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

func (Supermarket) TableName() string { return "supermarkets" }

type Brand struct {
	common.BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

func (Brand) TableName() string { return "brands" }

type Unit struct {
	common.BaseModel
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

func (Unit) TableName() string { return "units" }

// User carries only what the price core displays. Accounts live in the identity service.
type User struct {
	common.BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

func (User) TableName() string { return "users" }

// Kind selects the entity whose display names are resolved.
type Kind string

const (
	KindProduct     Kind = "product"
	KindSupermarket Kind = "supermarket"
	KindBrand       Kind = "brand"
	KindUnit        Kind = "unit"
	KindUser        Kind = "user"
)

func (k Kind) table() string {
	switch k {
	case KindProduct:
		return Product{}.TableName()
	case KindSupermarket:
		return Supermarket{}.TableName()
	case KindBrand:
		return Brand{}.TableName()
	case KindUnit:
		return Unit{}.TableName()
	case KindUser:
		return User{}.TableName()
	}
	return ""
}

// Totals are catalog-wide counters used by the stats endpoint.
type Totals struct {
	Products     int64 `json:"total_products"`
	Users        int64 `json:"total_users"`
	Supermarkets int64 `json:"total_supermarkets"`
}

// Models lists the catalog tables for development auto-migration.
func Models() []interface{} {
	return []interface{}{&Product{}, &Supermarket{}, &Brand{}, &Unit{}, &User{}, &SellableProduct{}}
}
