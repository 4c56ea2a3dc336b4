package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := conn(ctx, r.db).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review with ID %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review by ID %d: %w", id, err)
	}
	return &review, nil
}

func (r *GORMReviewRepository) GetByProductID(ctx context.Context, productID int64) ([]models.Review, error) {
	var reviews []models.Review
	if err := conn(ctx, r.db).Where("product_id = ?", productID).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews of product %d: %w", productID, err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) GetByUserID(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews of user %s: %w", userID, err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) ExistsByUserAndProduct(ctx context.Context, userID string, productID int64) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

// Create inserts a review. The unique (user_id, product_id) index reports a
// concurrent duplicate as ErrDuplicateReview.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review for product %d: %w", review.ProductID, models.ErrDuplicateReview)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// Update writes the mutable fields of a review.
func (r *GORMReviewRepository) Update(ctx context.Context, review *models.Review) error {
	res := conn(ctx, r.db).Model(&models.Review{ID: review.ID}).
		Select("rating", "comment").
		Updates(review)
	if res.Error != nil {
		return fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %d: %w", review.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a review by ID. Deleting a missing review is not an error.
func (r *GORMReviewRepository) Delete(ctx context.Context, id uint) error {
	if err := conn(ctx, r.db).Delete(&models.Review{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
