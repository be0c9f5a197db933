package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory resolves catalog references. Lookups of missing rows are not errors:
// single lookups return nil and name lookups simply omit the id.
type Directory interface {
	FindSellable(ctx context.Context, id uuid.UUID) (*SellableProduct, error)
	FindSellables(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]SellableProduct, error)
	ListSellablesByProduct(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) ([]SellableProduct, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	Names(ctx context.Context, kind Kind, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Totals(ctx context.Context) (*Totals, error)
}

// GORMDirectory implements Directory using GORM.
type GORMDirectory struct {
	db *gorm.DB
}

// NewGORMDirectory creates a new GORM-backed catalog directory.
func NewGORMDirectory(db *gorm.DB) *GORMDirectory {
	return &GORMDirectory{db: db}
}

func (r *GORMDirectory) FindSellable(ctx context.Context, id uuid.UUID) (*SellableProduct, error) {
	var sp SellableProduct
	if err := r.db.WithContext(ctx).First(&sp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding sellable product %s: %w", id, err)
	}
	return &sp, nil
}

func (r *GORMDirectory) FindSellables(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]SellableProduct, error) {
	out := make(map[uuid.UUID]SellableProduct, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []SellableProduct
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("finding sellable products: %w", err)
	}
	for _, sp := range rows {
		out[sp.ID] = sp
	}
	return out, nil
}

func (r *GORMDirectory) ListSellablesByProduct(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) ([]SellableProduct, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if supermarketID != nil {
		query = query.Where("supermarket_id = ?", *supermarketID)
	}
	var rows []SellableProduct
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing sellable products for product %s: %w", productID, err)
	}
	return rows, nil
}

func (r *GORMDirectory) FindProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding product %s: %w", id, err)
	}
	return &p, nil
}

func (r *GORMDirectory) Names(ctx context.Context, kind Kind, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	ids = Unique(ids)
	if len(ids) == 0 {
		return out, nil
	}
	table := kind.table()
	if table == "" {
		return nil, fmt.Errorf("unknown catalog kind %q", kind)
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := r.db.WithContext(ctx).Table(table).Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolving %s names: %w", kind, err)
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *GORMDirectory) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	db := r.db.WithContext(ctx)
	if err := db.Model(&Product{}).Count(&t.Products).Error; err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}
	if err := db.Model(&User{}).Count(&t.Users).Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if err := db.Model(&Supermarket{}).Count(&t.Supermarkets).Error; err != nil {
		return nil, fmt.Errorf("counting supermarkets: %w", err)
	}
	return &t, nil
}

// Unique drops nil and duplicate ids, preserving order.
func Unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
