package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
)

// ReviewService admits reviews only from users who received the product,
// one per user and product.
type ReviewService struct {
	reviews   repositories.ReviewRepository
	products  repositories.ProductRepository
	oracle    DeliveryOracle
	tx        repositories.Transactor
	publisher EventPublisher
}

// NewReviewService creates a new ReviewService. publisher may be nil.
func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository, oracle DeliveryOracle, tx repositories.Transactor, publisher EventPublisher) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		products:  products,
		oracle:    oracle,
		tx:        tx,
		publisher: publisher,
	}
}

// CreateReview validates and stores a review. The checks run in a fixed
// order: rating, comment, product, duplicate, delivery.
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if strings.TrimSpace(review.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrValidation)
	}
	if err := validateRating(review.Rating); err != nil {
		return nil, err
	}
	if err := validateComment(review.Comment); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.products.GetByID(ctx, review.ProductID)
		if err != nil {
			return err
		}

		exists, err := s.reviews.ExistsByUserAndProduct(ctx, review.UserID, product.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("user %s, product %d: %w", review.UserID, product.ID, models.ErrDuplicateReview)
		}

		if !s.oracle.HasUserReceivedProduct(ctx, review.UserID, product.ID) {
			return fmt.Errorf("user %s, product %d: %w", review.UserID, product.ID, models.ErrNotEligible)
		}

		review.ID = 0
		review.VerifiedPurchase = true
		if err := s.reviews.Create(ctx, review); err != nil {
			return err
		}
		review.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, EventReviewCreated, ReviewCreatedEvent{
		ReviewID:  review.ID,
		UserID:    review.UserID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	})
	return review, nil
}

// GetReview returns a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// ListProductReviews returns the reviews of a product, newest first.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	return s.reviews.GetByProductID(ctx, productID)
}

// ListUserReviews returns the reviews written by a user, newest first.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string) ([]models.Review, error) {
	return s.reviews.GetByUserID(ctx, userID)
}

// UpdateReview applies a partial update to a review's rating and comment.
func (s *ReviewService) UpdateReview(ctx context.Context, id uint, patch models.ReviewPatch) (*models.Review, error) {
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if err := validateComment(patch.Comment); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		review, err = s.reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Rating != nil {
			review.Rating = *patch.Rating
		}
		if patch.Comment != nil {
			comment := *patch.Comment
			review.Comment = &comment
		}
		return s.reviews.Update(ctx, review)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review. It touches neither the product nor the
// delivery records.
func (s *ReviewService) DeleteReview(ctx context.Context, id uint) error {
	return s.reviews.Delete(ctx, id)
}

// CanUserReview reports whether the user may review the product now. Any
// failure along the way yields false.
func (s *ReviewService) CanUserReview(ctx context.Context, userID string, productID int64) bool {
	exists, err := s.reviews.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		log.Printf("Review eligibility check failed for user %s, product %d: %v", userID, productID, err)
		return false
	}
	if exists {
		return false
	}
	return s.oracle.HasUserReceivedProduct(ctx, userID, productID)
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", models.ErrValidation, models.MinRating, models.MaxRating)
	}
	return nil
}

func validateComment(comment *string) error {
	if comment != nil && utf8.RuneCountInString(*comment) > models.MaxCommentLength {
		return fmt.Errorf("%w: comment must not exceed %d characters", models.ErrValidation, models.MaxCommentLength)
	}
	return nil
}
