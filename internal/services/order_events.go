package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"shopcore/internal/models"
)

// OrderEventHandler applies order lifecycle events to stock.
type OrderEventHandler struct {
	stock *StockService
}

// NewOrderEventHandler creates a new OrderEventHandler.
func NewOrderEventHandler(stock *StockService) *OrderEventHandler {
	return &OrderEventHandler{stock: stock}
}

// Handle decodes an order event and reserves or releases its lines. Unknown
// event types are ignored.
func (h *OrderEventHandler) Handle(ctx context.Context, body []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: malformed order event: %v", models.ErrValidation, err)
	}

	switch event.Type {
	case models.OrderEventPlaced:
		if err := h.stock.ReserveLines(ctx, event.Items); err != nil {
			return fmt.Errorf("failed to reserve stock for order %s: %w", event.OrderID, err)
		}
		log.Printf("Reserved stock for order %s (%d lines)", event.OrderID, len(event.Items))
	case models.OrderEventCancelled:
		if err := h.stock.ReleaseLines(ctx, event.Items); err != nil {
			return fmt.Errorf("failed to release stock for order %s: %w", event.OrderID, err)
		}
		log.Printf("Released stock for order %s (%d lines)", event.OrderID, len(event.Items))
	default:
		log.Printf("Ignoring order event of type %q for order %s", event.Type, event.OrderID)
	}
	return nil
}
