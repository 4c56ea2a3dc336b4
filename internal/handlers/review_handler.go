package handlers

import (
	"fmt"
	"strconv"

	"shopcore/internal/middleware"
	"shopcore/internal/models"
	"shopcore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers the review routes. Writes go through auth.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/can-review", h.HandleCanReview)
	reviewRoutes.Get("/product/:productId", h.HandleGetProductReviews)
	reviewRoutes.Get("/user/:userId", h.HandleGetUserReviews)

	reviewRoutes.Post("/", auth, h.HandleCreateReview)
	reviewRoutes.Put("/:id", auth, h.HandleUpdateReview)
	reviewRoutes.Delete("/:id", auth, h.HandleDeleteReview)
}

// CreateReviewRequest is the body of a review create. Rating and comment
// bounds are checked by the service so that its check order holds.
type CreateReviewRequest struct {
	ProductID int64   `json:"product_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment"`
}

// HandleCreateReview stores a review by the authenticated user.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	review, err := h.service.CreateReview(c.UserContext(), &models.Review{
		UserID:    middleware.UserID(c),
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return respondError(c, "Could not create review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleUpdateReview applies a partial update to the caller's own review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	id, err := reviewID(c)
	if err != nil {
		return respondError(c, "Invalid review ID", err)
	}
	var patch models.ReviewPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if ok, err := h.authorOnly(c, id); !ok {
		return err
	}

	review, err := h.service.UpdateReview(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not update review %d", id), err)
	}
	return c.JSON(review)
}

// HandleDeleteReview deletes the caller's own review.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	id, err := reviewID(c)
	if err != nil {
		return respondError(c, "Invalid review ID", err)
	}
	if ok, err := h.authorOnly(c, id); !ok {
		return err
	}
	if err := h.service.DeleteReview(c.UserContext(), id); err != nil {
		return respondError(c, fmt.Sprintf("Could not delete review %d", id), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetProductReviews lists the reviews of a product.
func (h *ReviewHandler) HandleGetProductReviews(c *fiber.Ctx) error {
	productID, err := int64Param(c, "productId")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	reviews, err := h.service.ListProductReviews(c.UserContext(), productID)
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// HandleGetUserReviews lists the reviews written by a user.
func (h *ReviewHandler) HandleGetUserReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListUserReviews(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// HandleCanReview reports whether a user may review a product.
func (h *ReviewHandler) HandleCanReview(c *fiber.Ctx) error {
	userID := c.Query("userId")
	productID, err := strconv.ParseInt(c.Query("productId"), 10, 64)
	if userID == "" || err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameters 'userId' and 'productId' are required",
		})
	}
	return c.JSON(fiber.Map{
		"user_id":    userID,
		"product_id": productID,
		"can_review": h.service.CanUserReview(c.UserContext(), userID, productID),
	})
}

// authorOnly reports whether the authenticated user wrote the review. When
// it returns false the response is already written.
func (h *ReviewHandler) authorOnly(c *fiber.Ctx, id uint) (bool, error) {
	review, err := h.service.GetReview(c.UserContext(), id)
	if err != nil {
		return false, respondError(c, fmt.Sprintf("Could not retrieve review %d", id), err)
	}
	if review.UserID != middleware.UserID(c) {
		return false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Only the author may change a review",
		})
	}
	return true, nil
}

func reviewID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be a positive integer", models.ErrValidation)
	}
	return uint(id), nil
}
