package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopcore/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := conn(ctx, r.db).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := conn(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Exists reports whether a product with the given ID is stored.
func (r *GORMProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, err)
	}
	return count > 0, nil
}

// SearchByName returns the products whose name contains fragment, ignoring case.
func (r *GORMProductRepository) SearchByName(ctx context.Context, fragment string) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	if err := conn(ctx, r.db).Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	return products, nil
}

// GetByCategory returns the products of one category.
func (r *GORMProductRepository) GetByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	var products []models.Product
	if err := conn(ctx, r.db).Where("category = ?", category).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by category %s: %w", category, err)
	}
	return products, nil
}

// GetByPriceRange returns the products priced within [min, max].
func (r *GORMProductRepository) GetByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]models.Product, error) {
	var products []models.Product
	if err := conn(ctx, r.db).Where("price BETWEEN ? AND ?", min, max).Order("price, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by price range: %w", err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := conn(ctx, r.db).Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product with ID %d: %w", product.ID, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the descriptive fields of an existing product. Quantity is
// left alone; it only moves through DecrementStock and IncrementStock.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := conn(ctx, r.db).Model(&models.Product{ID: product.ID}).
		Select("name", "category", "price", "description", "image_url", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", product.ID, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id int64) error {
	res := conn(ctx, r.db).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// DecrementStock runs a single conditional UPDATE, so two concurrent callers
// can never both pass the stock check.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	db := conn(ctx, r.db)
	res := db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock of product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrNotFound)
	}
	return fmt.Errorf("product %d cannot cover %d units: %w", id, qty, models.ErrInsufficientStock)
}

// IncrementStock adds qty units to the product's stock.
func (r *GORMProductRepository) IncrementStock(ctx context.Context, id int64, qty int) error {
	res := conn(ctx, r.db).Model(&models.Product{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock of product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// lockForUpdate is applied to reads that precede a write in the same
// transaction. SQLite serializes writers on its own and has no FOR UPDATE.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
