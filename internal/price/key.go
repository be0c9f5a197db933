package price

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Key identifies one price history: a sellable product, or a legacy
// (product, supermarket) pair written before sellable products existed.
type Key struct {
	sellableID    uuid.UUID
	productID     uuid.UUID
	supermarketID uuid.UUID
	legacy        bool
}

func BySellable(id uuid.UUID) Key {
	return Key{sellableID: id}
}

func ByLegacy(productID, supermarketID uuid.UUID) Key {
	return Key{productID: productID, supermarketID: supermarketID, legacy: true}
}

func (k Key) IsLegacy() bool { return k.legacy }

// SellableID is uuid.Nil for legacy keys.
func (k Key) SellableID() uuid.UUID { return k.sellableID }

func (k Key) ProductID() uuid.UUID { return k.productID }

func (k Key) SupermarketID() uuid.UUID { return k.supermarketID }

// Valid reports whether every id the variant needs is present.
func (k Key) Valid() bool {
	if k.legacy {
		return k.productID != uuid.Nil && k.supermarketID != uuid.Nil
	}
	return k.sellableID != uuid.Nil
}

// scope restricts a query to the key's history. Legacy keys never match sellable records.
func (k Key) scope(db *gorm.DB) *gorm.DB {
	if k.legacy {
		return db.Where("sellable_product_id IS NULL AND product_id = ? AND supermarket_id = ?", k.productID, k.supermarketID)
	}
	return db.Where("sellable_product_id = ?", k.sellableID)
}

// stamp writes the key's ids onto a new record.
func (k Key) stamp(r *PriceRecord) {
	if k.legacy {
		p, s := k.productID, k.supermarketID
		r.ProductID, r.SupermarketID, r.SellableProductID = &p, &s, nil
		return
	}
	id := k.sellableID
	r.SellableProductID, r.ProductID, r.SupermarketID = &id, nil, nil
}

// keyFromRequest picks the variant; sellable_product_id wins when both are present.
func keyFromRequest(req SubmitPriceRequest) Key {
	if req.SellableProductID != nil {
		return BySellable(*req.SellableProductID)
	}
	return ByLegacy(derefUUID(req.ProductID), derefUUID(req.SupermarketID))
}
