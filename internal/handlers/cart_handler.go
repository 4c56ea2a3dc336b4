package handlers

import (
	"fmt"

	"shopcore/internal/middleware"
	"shopcore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/:productId", h.HandleAddItem)
	cartRoutes.Put("/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/:productId", h.HandleRemoveItem)
}

// CartItemRequest is the body of a cart add or update.
type CartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// HandleGetCart lists the items in the user's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(items)
}

// HandleAddItem adds units of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	productID, err := int64Param(c, "productId")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	item, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), productID, req.Quantity)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not add product %d to cart", productID), err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	productID, err := int64Param(c, "productId")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	item, err := h.service.UpdateQuantity(c.UserContext(), middleware.UserID(c), productID, req.Quantity)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not update product %d in cart", productID), err)
	}
	return c.JSON(item)
}

// HandleRemoveItem removes a product from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	productID, err := int64Param(c, "productId")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	if err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), productID); err != nil {
		return respondError(c, "Could not remove cart item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
