package repositories

import (
	"context"

	"shopcore/internal/models"

	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	SearchByName(ctx context.Context, fragment string) ([]models.Product, error)
	GetByCategory(ctx context.Context, category models.Category) ([]models.Product, error)
	GetByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error

	// DecrementStock subtracts qty only if at least qty units are in stock.
	DecrementStock(ctx context.Context, id int64, qty int) error
	// IncrementStock adds qty units unconditionally.
	IncrementStock(ctx context.Context, id int64, qty int) error
}
