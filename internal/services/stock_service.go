package services

import (
	"context"
	"fmt"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
)

// StockService is the only writer of product quantities. Every adjustment is
// relative: a decrement never goes below zero and a revert adds units back.
type StockService struct {
	products  repositories.ProductRepository
	tx        repositories.Transactor
	cache     ProductCache
	publisher EventPublisher
}

// NewStockService creates a new StockService. cache and publisher may be nil.
func NewStockService(products repositories.ProductRepository, tx repositories.Transactor, cache ProductCache, publisher EventPublisher) *StockService {
	return &StockService{
		products:  products,
		tx:        tx,
		cache:     cache,
		publisher: publisher,
	}
}

// CheckAvailability reports whether at least qty units of the product are in stock.
func (s *StockService) CheckAvailability(ctx context.Context, productID int64, qty int) (bool, error) {
	if err := validateQuantity(qty); err != nil {
		return false, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	return product.Quantity >= qty, nil
}

// DecrementStock removes qty units, failing with ErrInsufficientStock when
// fewer are available. The stored quantity is unchanged on failure.
func (s *StockService) DecrementStock(ctx context.Context, productID int64, qty int) error {
	if err := validateQuantity(qty); err != nil {
		return err
	}
	if err := s.products.DecrementStock(ctx, productID, qty); err != nil {
		return err
	}
	s.stockChanged(ctx, productID, -qty)
	return nil
}

// RevertStock gives back qty units, typically undoing an earlier decrement.
func (s *StockService) RevertStock(ctx context.Context, productID int64, qty int) error {
	if err := validateQuantity(qty); err != nil {
		return err
	}
	if err := s.products.IncrementStock(ctx, productID, qty); err != nil {
		return err
	}
	s.stockChanged(ctx, productID, qty)
	return nil
}

// ReserveLines decrements every line in one transaction. Either all lines
// are applied or none.
func (s *StockService) ReserveLines(ctx context.Context, lines []models.OrderLine) error {
	return s.applyLines(ctx, lines, -1)
}

// ReleaseLines reverts every line in one transaction.
func (s *StockService) ReleaseLines(ctx context.Context, lines []models.OrderLine) error {
	return s.applyLines(ctx, lines, 1)
}

func (s *StockService) applyLines(ctx context.Context, lines []models.OrderLine, sign int) error {
	for _, line := range lines {
		if err := validateQuantity(line.Quantity); err != nil {
			return fmt.Errorf("product %d: %w", line.ProductID, err)
		}
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, line := range lines {
			var err error
			if sign < 0 {
				err = s.products.DecrementStock(ctx, line.ProductID, line.Quantity)
			} else {
				err = s.products.IncrementStock(ctx, line.ProductID, line.Quantity)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, line := range lines {
		s.stockChanged(ctx, line.ProductID, sign*line.Quantity)
	}
	return nil
}

func (s *StockService) stockChanged(ctx context.Context, productID int64, delta int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	publish(s.publisher, EventStockChanged, StockChangedEvent{ProductID: productID, Delta: delta})
}

func validateQuantity(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer, got %d", models.ErrValidation, qty)
	}
	return nil
}
