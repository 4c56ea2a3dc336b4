package repositories

import (
	"context"

	"shopcore/internal/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	GetByProductID(ctx context.Context, productID int64) ([]models.Review, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Review, error)
	ExistsByUserAndProduct(ctx context.Context, userID string, productID int64) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
}
