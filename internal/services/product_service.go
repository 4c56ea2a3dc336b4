package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shopcore/internal/models"
	"shopcore/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo   repositories.ProductRepository
	images ImageStore
	cache  ProductCache
}

// NewProductService creates a new ProductService. images and cache may be nil.
func NewProductService(repo repositories.ProductRepository, images ImageStore, cache ProductCache) *ProductService {
	return &ProductService{
		repo:   repo,
		images: images,
		cache:  cache,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	if s.cache != nil {
		if product, ok := s.cache.Get(ctx, id); ok {
			return product, nil
		}
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, product)
	}
	return product, nil
}

// SearchByName returns products whose name contains the fragment, ignoring case.
func (s *ProductService) SearchByName(ctx context.Context, fragment string) ([]models.Product, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, fmt.Errorf("%w: name fragment is required", models.ErrValidation)
	}
	return s.repo.SearchByName(ctx, fragment)
}

// GetByCategory returns the products of a category.
func (s *ProductService) GetByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	return s.repo.GetByCategory(ctx, category)
}

// GetByPriceRange returns products priced within [min, max], both inclusive.
func (s *ProductService) GetByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]models.Product, error) {
	if min.IsNegative() || max.LessThan(min) {
		return nil, fmt.Errorf("%w: invalid price range [%s, %s]", models.ErrValidation, min, max)
	}
	return s.repo.GetByPriceRange(ctx, min, max)
}

// CreateProduct stores a new product, uploading its image first when one is given.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product, image *models.ImageUpload) error {
	if product.ID <= 0 {
		return fmt.Errorf("%w: product id must be a positive integer", models.ErrValidation)
	}
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name is required", models.ErrValidation)
	}
	if !product.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", models.ErrValidation, product.Category)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", models.ErrValidation)
	}
	if product.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", models.ErrValidation)
	}

	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return err
	}
	if uploaded != "" {
		product.ImageURL = &uploaded
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.discardImage(ctx, uploaded)
		return err
	}
	return nil
}

// UpdateProduct applies a partial update. A new image replaces the old one,
// which is then deleted from the asset host; without an image the stored URL
// is kept.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch, image *models.ImageUpload) (*models.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: product name must not be empty", models.ErrValidation)
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, *patch.Category)
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", models.ErrValidation)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.ApplyTo(product)

	var previous string
	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	if uploaded != "" {
		if product.ImageURL != nil {
			previous = *product.ImageURL
		}
		product.ImageURL = &uploaded
	}

	if err := s.repo.Update(ctx, product); err != nil {
		s.discardImage(ctx, uploaded)
		return nil, err
	}
	s.invalidate(ctx, id)
	s.discardImage(ctx, previous)
	return product, nil
}

// DeleteProduct deletes a product and its image.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if product.ImageURL != nil {
		s.discardImage(ctx, *product.ImageURL)
	}
	return nil
}

func (s *ProductService) upload(ctx context.Context, image *models.ImageUpload) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", nil
	}
	if s.images == nil {
		return "", fmt.Errorf("%w: image uploads are not configured", models.ErrValidation)
	}
	url, err := s.images.Upload(ctx, *image)
	if err != nil {
		return "", fmt.Errorf("failed to upload product image: %w", err)
	}
	return url, nil
}

// discardImage deletes an image that is no longer referenced. A failure
// leaves an orphan on the asset host and is only logged.
func (s *ProductService) discardImage(ctx context.Context, url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		log.Printf("Failed to delete image %s: %v", url, err)
	}
}

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}
