package price

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newestFirst orders by recency, insertion order breaking timestamp ties.
const (
	newestFirst = "created_at DESC, seq DESC"
	oldestFirst = "created_at ASC, seq ASC"
)

// HistoryQuery selects records of a set of sellable products and, optionally, the legacy
// records of a product (narrowed to one supermarket when SupermarketID is set).
type HistoryQuery struct {
	SellableIDs     []uuid.UUID
	LegacyProductID *uuid.UUID
	SupermarketID   *uuid.UUID
	Limit           int
}

// Repository is the append-only store of price records.
type Repository interface {
	Create(ctx context.Context, record *PriceRecord) error
	CreateBatch(ctx context.Context, records []PriceRecord) error
	Latest(ctx context.Context, key Key) (*PriceRecord, error)
	LatestOf(ctx context.Context, q HistoryQuery) (*PriceRecord, error)
	History(ctx context.Context, q HistoryQuery) ([]PriceRecord, error)
	LegacySupermarkets(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, sellableID *uuid.UUID, limit int) ([]PriceRecord, error)
	Count(ctx context.Context) (int64, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]PriceRecord, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM price repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, record *PriceRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to append price record: %w", err)
	}
	return nil
}

// CreateBatch appends all records in one statement, so either all or none are written.
func (r *GORMRepository) CreateBatch(ctx context.Context, records []PriceRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to append %d price records: %w", len(records), err)
	}
	return nil
}

// Latest returns the newest record of key, or nil when the history is empty.
func (r *GORMRepository) Latest(ctx context.Context, key Key) (*PriceRecord, error) {
	var rec PriceRecord
	err := key.scope(r.db.WithContext(ctx).Model(&PriceRecord{})).Order(newestFirst).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest price: %w", err)
	}
	return &rec, nil
}

// LatestOf returns the newest record matching q, or nil.
func (r *GORMRepository) LatestOf(ctx context.Context, q HistoryQuery) (*PriceRecord, error) {
	query, ok := r.historyScope(ctx, q)
	if !ok {
		return nil, nil
	}
	var rec PriceRecord
	if err := query.Order(newestFirst).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest price: %w", err)
	}
	return &rec, nil
}

// History returns matching records oldest first, at most q.Limit of them.
func (r *GORMRepository) History(ctx context.Context, q HistoryQuery) ([]PriceRecord, error) {
	query, ok := r.historyScope(ctx, q)
	if !ok {
		return []PriceRecord{}, nil
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	var records []PriceRecord
	if err := query.Order(oldestFirst).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	return records, nil
}

func (r *GORMRepository) historyScope(ctx context.Context, q HistoryQuery) (*gorm.DB, bool) {
	db := r.db.WithContext(ctx).Model(&PriceRecord{})
	switch {
	case len(q.SellableIDs) > 0 && q.LegacyProductID != nil:
		return db.Where(r.db.Where("sellable_product_id IN ?", q.SellableIDs).Or(legacyScope(r.db, *q.LegacyProductID, q.SupermarketID))), true
	case len(q.SellableIDs) > 0:
		return db.Where("sellable_product_id IN ?", q.SellableIDs), true
	case q.LegacyProductID != nil:
		return db.Where(legacyScope(r.db, *q.LegacyProductID, q.SupermarketID)), true
	}
	return nil, false
}

func legacyScope(db *gorm.DB, productID uuid.UUID, supermarketID *uuid.UUID) *gorm.DB {
	scope := db.Where("sellable_product_id IS NULL AND product_id = ?", productID)
	if supermarketID != nil {
		scope = scope.Where("supermarket_id = ?", *supermarketID)
	}
	return scope
}

// LegacySupermarkets lists supermarkets that have legacy records for a product.
func (r *GORMRepository) LegacySupermarkets(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&PriceRecord{}).
		Where("sellable_product_id IS NULL AND product_id = ?", productID).
		Distinct().Pluck("supermarket_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy supermarkets for product %s: %w", productID, err)
	}
	return ids, nil
}

// List returns records newest first, optionally restricted to one sellable product.
func (r *GORMRepository) List(ctx context.Context, sellableID *uuid.UUID, limit int) ([]PriceRecord, error) {
	query := r.db.WithContext(ctx).Model(&PriceRecord{})
	if sellableID != nil {
		query = query.Where("sellable_product_id = ?", *sellableID)
	}
	var records []PriceRecord
	if err := query.Order(newestFirst).Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	return records, nil
}

func (r *GORMRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&PriceRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count prices: %w", err)
	}
	return n, nil
}

// FindAllForSync pages through the ledger in insertion order.
func (r *GORMRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]PriceRecord, error) {
	var records []PriceRecord
	if err := r.db.WithContext(ctx).Order("seq ASC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch prices for sync: %w", err)
	}
	return records, nil
}
