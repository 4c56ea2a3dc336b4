package services

import (
	"encoding/json"
	"log"
)

// Routing keys of the events this service publishes.
const (
	EventStockChanged  = "stock.changed"
	EventReviewCreated = "review.created"
)

// StockChangedEvent is published after every committed stock adjustment.
type StockChangedEvent struct {
	ProductID int64 `json:"product_id"`
	Delta     int   `json:"delta"`
}

// ReviewCreatedEvent is published after a review is stored.
type ReviewCreatedEvent struct {
	ReviewID  uint   `json:"review_id"`
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Rating    int    `json:"rating"`
}

// publish sends an event when a publisher is configured. Failures are logged;
// the state change they describe is already committed.
func publish(p EventPublisher, routingKey string, event interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := p.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
