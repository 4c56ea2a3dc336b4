package repositories

import (
	"context"

	"shopcore/internal/models"
)

// CartRepository defines the interface for cart item data access.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]models.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID string, productID int64) (*models.CartItem, error)
	// AddQuantity inserts the item, or adds its quantity to the existing
	// item of the same (user, product) pair, and returns the stored row.
	AddQuantity(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Save(ctx context.Context, item *models.CartItem) error
	DeleteByUserAndProduct(ctx context.Context, userID string, productID int64) error
}
