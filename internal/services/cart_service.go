package services

import (
	"context"
	"fmt"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
)

// CartService manages per-user carts. It only gates admission against the
// product's stock; stock is taken at checkout, not here.
type CartService struct {
	items    repositories.CartRepository
	products repositories.ProductRepository
	stock    StockChecker
	tx       repositories.Transactor
}

// NewCartService creates a new CartService.
func NewCartService(items repositories.CartRepository, products repositories.ProductRepository, stock StockChecker, tx repositories.Transactor) *CartService {
	return &CartService{
		items:    items,
		products: products,
		stock:    stock,
		tx:       tx,
	}
}

// ListItems returns the items in the user's cart.
func (s *CartService) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.items.GetByUserID(ctx, userID)
}

// AddItem puts qty units of a product in the cart, adding to the existing
// line when the user already has one for that product. Availability is
// checked against qty alone, not against the resulting line quantity.
func (s *CartService) AddItem(ctx context.Context, userID string, productID int64, qty int) (*models.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	var stored *models.CartItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, productID, qty); err != nil {
			return err
		}

		stored, err = s.items.AddQuantity(ctx, &models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
		})
		if err != nil {
			return err
		}
		stored.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// UpdateQuantity sets the quantity of an existing cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, productID int64, qty int) (*models.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	var item *models.CartItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.items.GetByUserAndProduct(ctx, userID, productID)
		if err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, productID, qty); err != nil {
			return err
		}
		item.Quantity = qty
		return s.items.Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes the user's line for a product. Removing a missing line
// succeeds.
func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int64) error {
	return s.items.DeleteByUserAndProduct(ctx, userID, productID)
}

func (s *CartService) ensureAvailable(ctx context.Context, productID int64, qty int) error {
	ok, err := s.stock.CheckAvailability(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %d cannot cover %d units: %w", productID, qty, models.ErrInsufficientStock)
	}
	return nil
}
