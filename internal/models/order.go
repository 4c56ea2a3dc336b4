package models

// Order event types consumed from the order system.
const (
	OrderEventPlaced    = "order.placed"
	OrderEventCancelled = "order.cancelled"
)

// OrderLine is a single product line of an order.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderEvent is the message the order system publishes when an order is
// placed or cancelled.
type OrderEvent struct {
	Type    string      `json:"type"`
	OrderID string      `json:"order_id"`
	Items   []OrderLine `json:"items"`
}
