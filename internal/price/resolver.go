package price

import (
	"context"

	"pricehive_backend/internal/catalog"

	"github.com/google/uuid"
)

// Resolver answers "what is the current price of X". It is read-only.
type Resolver interface {
	Latest(ctx context.Context, key Key) (*PriceRecord, error)
	LatestBySellable(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*PriceRecord, error)
	LatestForProduct(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) (*LatestPriceResponse, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID, limit int) ([]PriceRecord, error)
	SupermarketLatest(ctx context.Context, productID uuid.UUID) ([]SupermarketPrice, error)
}

// SupermarketPrice is the latest price of one history of a product.
// SellableProductID is nil for legacy histories.
type SupermarketPrice struct {
	SupermarketID     uuid.UUID
	SellableProductID *uuid.UUID
	Record            PriceRecord
}

type resolver struct {
	repo    Repository
	catalog catalog.Directory
}

// NewResolver creates the latest-price resolver.
func NewResolver(repo Repository, dir catalog.Directory) Resolver {
	return &resolver{repo: repo, catalog: dir}
}

func (r *resolver) Latest(ctx context.Context, key Key) (*PriceRecord, error) {
	return r.repo.Latest(ctx, key)
}

// LatestBySellable resolves each id independently; ids without history map to nil.
func (r *resolver) LatestBySellable(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*PriceRecord, error) {
	ids = catalog.Unique(ids)
	out := make(map[uuid.UUID]*PriceRecord, len(ids))
	for _, id := range ids {
		rec, err := r.repo.Latest(ctx, BySellable(id))
		if err != nil {
			return nil, err
		}
		out[id] = rec
	}
	return out, nil
}

// LatestForProduct returns the newest price across the product's sellable variants,
// falling back to legacy records. Not finding one is an answer, not an error.
func (r *resolver) LatestForProduct(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) (*LatestPriceResponse, error) {
	sellables, err := r.catalog.ListSellablesByProduct(ctx, productID, supermarketID)
	if err != nil {
		return nil, err
	}

	rec, err := r.repo.LatestOf(ctx, HistoryQuery{
		SellableIDs:     sellableIDs(sellables),
		LegacyProductID: &productID,
		SupermarketID:   supermarketID,
	})
	if err != nil {
		return nil, err
	}

	if rec == nil {
		msg := msgNoPrice
		if len(sellables) == 0 {
			msg = msgNoSellable
		}
		return &LatestPriceResponse{Message: msg}, nil
	}
	p, at := rec.Price, rec.CreatedAt
	return &LatestPriceResponse{Price: &p, CreatedAt: &at}, nil
}

// ProductHistory returns the product's records oldest first, capped at limit.
func (r *resolver) ProductHistory(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID, limit int) ([]PriceRecord, error) {
	sellables, err := r.catalog.ListSellablesByProduct(ctx, productID, supermarketID)
	if err != nil {
		return nil, err
	}
	return r.repo.History(ctx, HistoryQuery{
		SellableIDs:     sellableIDs(sellables),
		LegacyProductID: &productID,
		SupermarketID:   supermarketID,
		Limit:           limit,
	})
}

// SupermarketLatest returns the latest price of every sellable variant of the product,
// plus one entry per supermarket that only has legacy records.
func (r *resolver) SupermarketLatest(ctx context.Context, productID uuid.UUID) ([]SupermarketPrice, error) {
	sellables, err := r.catalog.ListSellablesByProduct(ctx, productID, nil)
	if err != nil {
		return nil, err
	}

	var out []SupermarketPrice
	for _, sp := range sellables {
		rec, err := r.repo.Latest(ctx, BySellable(sp.ID))
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		id := sp.ID
		out = append(out, SupermarketPrice{SupermarketID: sp.SupermarketID, SellableProductID: &id, Record: *rec})
	}

	legacy, err := r.repo.LegacySupermarkets(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, supermarketID := range legacy {
		rec, err := r.repo.Latest(ctx, ByLegacy(productID, supermarketID))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, SupermarketPrice{SupermarketID: supermarketID, Record: *rec})
		}
	}
	return out, nil
}

func sellableIDs(sellables []catalog.SellableProduct) []uuid.UUID {
	ids := make([]uuid.UUID, len(sellables))
	for i, sp := range sellables {
		ids[i] = sp.ID
	}
	return ids
}
