package services_test

import (
	"context"
	"strings"
	"testing"

	"shopcore/internal/models"
	"shopcore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestReviewService_CreateReview(t *testing.T) {
	tests := []struct {
		name      string
		review    models.Review
		delivered bool
		seeded    bool
		wantErr   error
	}{
		{
			name:      "verified purchase",
			review:    models.Review{UserID: "u1", ProductID: 1, Rating: 4, Comment: strPtr("Solid build")},
			delivered: true,
		},
		{
			name:      "not delivered",
			review:    models.Review{UserID: "u1", ProductID: 1, Rating: 4},
			delivered: false,
			wantErr:   models.ErrNotEligible,
		},
		{
			name:    "rating too high",
			review:  models.Review{UserID: "u1", ProductID: 1, Rating: 6},
			wantErr: models.ErrValidation,
		},
		{
			name:    "rating too low",
			review:  models.Review{UserID: "u1", ProductID: 1, Rating: 0},
			wantErr: models.ErrValidation,
		},
		{
			name:    "comment too long",
			review:  models.Review{UserID: "u1", ProductID: 1, Rating: 3, Comment: strPtr(strings.Repeat("x", 501))},
			wantErr: models.ErrValidation,
		},
		{
			name:      "comment at limit in multibyte runes",
			review:    models.Review{UserID: "u1", ProductID: 1, Rating: 3, Comment: strPtr(strings.Repeat("é", 500))},
			delivered: true,
		},
		{
			name:    "missing user",
			review:  models.Review{ProductID: 1, Rating: 3},
			wantErr: models.ErrValidation,
		},
		{
			name:    "missing product",
			review:  models.Review{UserID: "u1", ProductID: 404, Rating: 3},
			wantErr: models.ErrNotFound,
		},
		{
			name:      "second review",
			review:    models.Review{UserID: "u1", ProductID: 1, Rating: 5},
			delivered: true,
			seeded:    true,
			wantErr:   models.ErrDuplicateReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.seedProduct(t, 1, 10)

			if tt.seeded {
				require.NoError(t, f.reviews.Create(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 2, VerifiedPurchase: true}))
			}

			oracle := new(MockDeliveryOracle)
			oracle.On("HasUserReceivedProduct", tt.review.UserID, tt.review.ProductID).Return(tt.delivered).Maybe()
			service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, nil)

			review := tt.review
			created, err := service.CreateReview(ctx, &review)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, created.ID)
			assert.True(t, created.VerifiedPurchase)

			stored, err := f.reviews.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.review.Rating, stored.Rating)
			assert.True(t, stored.VerifiedPurchase)
		})
	}
}

func TestReviewService_ValidationRunsBeforeLookups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	oracle := new(MockDeliveryOracle)
	service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, nil)

	// The product is missing too, but the rating is reported first.
	_, err := service.CreateReview(ctx, &models.Review{UserID: "u1", ProductID: 404, Rating: 9})
	assert.ErrorIs(t, err, models.ErrValidation)
	oracle.AssertNotCalled(t, "HasUserReceivedProduct", mock.Anything, mock.Anything)
}

func TestReviewService_DuplicateIsReportedBeforeEligibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, 1, 10)
	require.NoError(t, f.reviews.Create(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 4}))

	oracle := new(MockDeliveryOracle)
	service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, nil)

	_, err := service.CreateReview(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 5})
	assert.ErrorIs(t, err, models.ErrDuplicateReview)
	oracle.AssertNotCalled(t, "HasUserReceivedProduct", mock.Anything, mock.Anything)
}

func TestReviewService_CreatePublishesEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, 1, 10)

	oracle := new(MockDeliveryOracle)
	oracle.On("HasUserReceivedProduct", "u1", int64(1)).Return(true)
	publisher := new(MockPublisher)
	publisher.On("Publish", services.EventReviewCreated, mock.Anything).Return(nil).Once()

	service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, publisher)
	_, err := service.CreateReview(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 5})
	require.NoError(t, err)
	publisher.AssertExpectations(t)

	_, err = service.CreateReview(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 5})
	assert.ErrorIs(t, err, models.ErrDuplicateReview)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestReviewService_UpdateReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, 1, 10)
	original := &models.Review{UserID: "u1", ProductID: 1, Rating: 4, Comment: strPtr("Fine"), VerifiedPurchase: true}
	require.NoError(t, f.reviews.Create(ctx, original))

	service := services.NewReviewService(f.reviews, f.products, new(MockDeliveryOracle), f.tx, nil)

	updated, err := service.UpdateReview(ctx, original.ID, models.ReviewPatch{Rating: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	require.NotNil(t, updated.Comment)
	assert.Equal(t, "Fine", *updated.Comment)

	updated, err = service.UpdateReview(ctx, original.ID, models.ReviewPatch{Comment: strPtr("Changed my mind")})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	stored, err := f.reviews.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Rating)
	assert.Equal(t, "Changed my mind", *stored.Comment)
	assert.True(t, stored.VerifiedPurchase)

	_, err = service.UpdateReview(ctx, original.ID, models.ReviewPatch{Rating: intPtr(7)})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = service.UpdateReview(ctx, original.ID, models.ReviewPatch{Comment: strPtr(strings.Repeat("y", 501))})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = service.UpdateReview(ctx, 9999, models.ReviewPatch{Rating: intPtr(3)})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReviewService_DeleteAllowsReviewingAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, 1, 10)

	oracle := new(MockDeliveryOracle)
	oracle.On("HasUserReceivedProduct", "u1", int64(1)).Return(true)
	service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, nil)

	created, err := service.CreateReview(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 3})
	require.NoError(t, err)
	assert.False(t, service.CanUserReview(ctx, "u1", 1))

	require.NoError(t, service.DeleteReview(ctx, created.ID))
	assert.True(t, service.CanUserReview(ctx, "u1", 1))

	_, err = service.CreateReview(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 10, f.quantityOf(t, 1))
}

func TestReviewService_CanUserReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, 1, 10)
	f.seedProduct(t, 2, 10)
	require.NoError(t, f.reviews.Create(ctx, &models.Review{UserID: "u1", ProductID: 2, Rating: 4}))

	oracle := new(MockDeliveryOracle)
	oracle.On("HasUserReceivedProduct", "u1", int64(1)).Return(true)
	oracle.On("HasUserReceivedProduct", "u2", int64(1)).Return(false)
	service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, nil)

	assert.True(t, service.CanUserReview(ctx, "u1", 1))
	assert.False(t, service.CanUserReview(ctx, "u2", 1))
	assert.False(t, service.CanUserReview(ctx, "u1", 2))
}

func TestReviewService_CanUserReviewFailsClosed(t *testing.T) {
	f := newFixture(t)
	oracle := new(MockDeliveryOracle)
	service := services.NewReviewService(f.reviews, f.products, oracle, f.tx, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, service.CanUserReview(ctx, "u1", 1))
	oracle.AssertNotCalled(t, "HasUserReceivedProduct", mock.Anything, mock.Anything)
}

func TestReviewService_ListReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, 1, 10)
	f.seedProduct(t, 2, 10)
	require.NoError(t, f.reviews.Create(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 4}))
	require.NoError(t, f.reviews.Create(ctx, &models.Review{UserID: "u2", ProductID: 1, Rating: 5}))
	require.NoError(t, f.reviews.Create(ctx, &models.Review{UserID: "u1", ProductID: 2, Rating: 1}))

	service := services.NewReviewService(f.reviews, f.products, new(MockDeliveryOracle), f.tx, nil)

	byProduct, err := service.ListProductReviews(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	byUser, err := service.ListUserReviews(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	none, err := service.ListUserReviews(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}
