package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUserID returns every item of a user's cart with its product loaded.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := conn(ctx, r.db).Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	return items, nil
}

// GetByUserAndProduct returns the user's item for a product. Inside a
// transaction the row stays locked until commit.
func (r *GORMCartRepository) GetByUserAndProduct(ctx context.Context, userID string, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := lockForUpdate(conn(ctx, r.db)).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item for product %d: %w", productID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// AddQuantity performs the upsert in one statement so concurrent adds for
// the same pair accumulate instead of creating a second row.
func (r *GORMCartRepository) AddQuantity(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	db := conn(ctx, r.db)
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	var stored models.CartItem
	err = db.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart item: %w", err)
	}
	return &stored, nil
}

// Save updates an existing cart item.
func (r *GORMCartRepository) Save(ctx context.Context, item *models.CartItem) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

// DeleteByUserAndProduct removes the item if present.
func (r *GORMCartRepository) DeleteByUserAndProduct(ctx context.Context, userID string, productID int64) error {
	err := conn(ctx, r.db).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}
