package services

import (
	"context"

	"shopcore/internal/models"
)

// DeliveryOracle tells whether a user has received a product. Implementations
// must answer false on any internal failure.
type DeliveryOracle interface {
	HasUserReceivedProduct(ctx context.Context, userID string, productID int64) bool
}

// ImageStore is the asset host for product images.
type ImageStore interface {
	Upload(ctx context.Context, image models.ImageUpload) (string, error)
	Delete(ctx context.Context, url string) error
}

// ProductCache is a best-effort cache of products by ID. Implementations
// swallow their own failures.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*models.Product, bool)
	Set(ctx context.Context, product *models.Product)
	Invalidate(ctx context.Context, id int64)
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// StockChecker answers availability questions for a product.
type StockChecker interface {
	CheckAvailability(ctx context.Context, productID int64, qty int) (bool, error)
}
