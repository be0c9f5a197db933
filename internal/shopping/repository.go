package shopping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, list *ShoppingList) error
	FindOwned(ctx context.Context, listID, userID uuid.UUID) (*ShoppingList, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ShoppingList, error)
	// Update writes name and supermarket. When replaceItems is set the stored items are
	// swapped for list.Items in the same transaction.
	Update(ctx context.Context, list *ShoppingList, replaceItems bool) error
	DeleteOwned(ctx context.Context, listID, userID uuid.UUID) (bool, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM shopping list repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create stores the list and its items.
func (r *GORMRepository) Create(ctx context.Context, list *ShoppingList) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("failed to create shopping list: %w", err)
	}
	return nil
}

// FindOwned returns the list with its items, or nil when it does not exist or belongs to someone else.
func (r *GORMRepository) FindOwned(ctx context.Context, listID, userID uuid.UUID) (*ShoppingList, error) {
	var list ShoppingList
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load shopping list %s: %w", listID, err)
	}
	return &list, nil
}

// ListByUser returns the user's lists, most recently updated first.
func (r *GORMRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ShoppingList, error) {
	var lists []ShoppingList
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists for user %s: %w", userID, err)
	}
	return lists, nil
}

func (r *GORMRepository) Update(ctx context.Context, list *ShoppingList, replaceItems bool) error {
	list.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&ShoppingList{}).
			Where("id = ? AND user_id = ?", list.ID, list.UserID).
			Updates(map[string]interface{}{
				"name":           list.Name,
				"supermarket_id": list.SupermarketID,
				"updated_at":     list.UpdatedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update shopping list %s: %w", list.ID, err)
		}
		if !replaceItems {
			return nil
		}

		if err := tx.Where("list_id = ?", list.ID).Delete(&ShoppingListItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear items of shopping list %s: %w", list.ID, err)
		}
		for i := range list.Items {
			list.Items[i].ID = uuid.Nil
			list.Items[i].ListID = list.ID
			list.Items[i].Position = i
		}
		if len(list.Items) > 0 {
			if err := tx.Create(&list.Items).Error; err != nil {
				return fmt.Errorf("failed to store items of shopping list %s: %w", list.ID, err)
			}
		}
		return nil
	})
}

func (r *GORMRepository) DeleteOwned(ctx context.Context, listID, userID uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", listID, userID).Delete(&ShoppingList{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete shopping list %s: %w", listID, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := tx.Where("list_id = ?", listID).Delete(&ShoppingListItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of shopping list %s: %w", listID, err)
		}
		return nil
	})
	return deleted, err
}
