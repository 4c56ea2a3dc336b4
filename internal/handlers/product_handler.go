package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopcore/internal/models"
	"shopcore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog and stock.
type ProductHandler struct {
	products *services.ProductService
	stock    *services.StockService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *services.ProductService, stock *services.StockService) *ProductHandler {
	return &ProductHandler{
		products: products,
		stock:    stock,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Writes go through auth.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/category/:category", h.HandleGetByCategory)
	productRoutes.Get("/price", h.HandleGetByPriceRange)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Get("/:id/availability", h.HandleCheckAvailability)

	productRoutes.Post("/", auth, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, h.HandleDeleteProduct)
	productRoutes.Post("/:id/stock/decrement", auth, h.HandleDecrementStock)
	productRoutes.Post("/:id/stock/revert", auth, h.HandleRevertStock)
}

// CreateProductRequest is the body of a product create.
type CreateProductRequest struct {
	ID          int64           `json:"id" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=100"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Description string          `json:"description" validate:"max=1000"`
}

// UpdateProductRequest is the body of a partial product update.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
}

// StockRequest is the body of a stock adjustment.
type StockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.products.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	product, err := h.products.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not retrieve product %d", id), err)
	}
	return c.JSON(product)
}

// HandleSearchProducts finds products by a name fragment.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.products.SearchByName(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, "Could not search products", err)
	}
	return c.JSON(products)
}

// HandleGetByCategory lists the products of one category.
func (h *ProductHandler) HandleGetByCategory(c *fiber.Ctx) error {
	category, err := models.ParseCategory(c.Params("category"))
	if err != nil {
		return respondError(c, "Invalid category", err)
	}
	products, err := h.products.GetByCategory(c.UserContext(), category)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetByPriceRange lists the products priced within [min, max].
func (h *ProductHandler) HandleGetByPriceRange(c *fiber.Ctx) error {
	minPrice, err := decimal.NewFromString(c.Query("min"))
	if err != nil {
		return badRequest(c, "Query parameter 'min' must be a number", err)
	}
	maxPrice, err := decimal.NewFromString(c.Query("max"))
	if err != nil {
		return badRequest(c, "Query parameter 'max' must be a number", err)
	}
	products, err := h.products.GetByPriceRange(c.UserContext(), minPrice, maxPrice)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleCheckAvailability reports whether the requested quantity is in stock.
func (h *ProductHandler) HandleCheckAvailability(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	qty, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		return badRequest(c, "Query parameter 'quantity' must be an integer", err)
	}
	available, err := h.stock.CheckAvailability(c.UserContext(), id, qty)
	if err != nil {
		return respondError(c, "Could not check availability", err)
	}
	return c.JSON(fiber.Map{
		"product_id": id,
		"quantity":   qty,
		"available":  available,
	})
}

// HandleCreateProduct creates a product from a JSON body, or from a multipart
// form with the JSON in "product" and an optional "image" file.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	image, err := parseProductBody(c, &req)
	if err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return respondError(c, "Invalid category", err)
	}

	product := &models.Product{
		ID:          req.ID,
		Name:        req.Name,
		Category:    category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	}
	if err := h.products.CreateProduct(c.UserContext(), product, image); err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update, optionally replacing the image.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}

	var req UpdateProductRequest
	image, err := parseProductBody(c, &req)
	if err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	patch := models.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	}
	if req.Category != nil {
		category, err := models.ParseCategory(*req.Category)
		if err != nil {
			return respondError(c, "Invalid category", err)
		}
		patch.Category = &category
	}

	product, err := h.products.UpdateProduct(c.UserContext(), id, patch, image)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not update product %d", id), err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and its image.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	if err := h.products.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, fmt.Sprintf("Could not delete product %d", id), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDecrementStock takes units out of stock.
func (h *ProductHandler) HandleDecrementStock(c *fiber.Ctx) error {
	return h.adjustStock(c, h.stock.DecrementStock, "Stock decremented")
}

// HandleRevertStock puts units back into stock.
func (h *ProductHandler) HandleRevertStock(c *fiber.Ctx) error {
	return h.adjustStock(c, h.stock.RevertStock, "Stock reverted")
}

func (h *ProductHandler) adjustStock(c *fiber.Ctx, adjust func(ctx context.Context, productID int64, qty int) error, done string) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return respondError(c, "Invalid product ID", err)
	}
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	if err := adjust(c.UserContext(), id, req.Quantity); err != nil {
		return respondError(c, fmt.Sprintf("Could not adjust stock of product %d", id), err)
	}
	product, err := h.products.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not retrieve product %d", id), err)
	}
	return c.JSON(fiber.Map{
		"message":    done,
		"product_id": id,
		"quantity":   product.Quantity,
	})
}

// parseProductBody decodes dst from a JSON body or from the "product" field
// of a multipart form. The image is nil unless the form carries one.
func parseProductBody(c *fiber.Ctx, dst interface{}) (*models.ImageUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, c.BodyParser(dst)
	}

	if err := json.Unmarshal([]byte(c.FormValue("product")), dst); err != nil {
		return nil, fmt.Errorf("form field 'product' must hold JSON: %w", err)
	}

	header, err := c.FormFile("image")
	if err != nil {
		// No file part.
		return nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return &models.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
