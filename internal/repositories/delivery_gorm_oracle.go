package repositories

import (
	"context"
	"log"

	"shopcore/internal/models"

	"gorm.io/gorm"
)

// GORMDeliveryOracle answers delivery questions from the deliveries table.
type GORMDeliveryOracle struct {
	db *gorm.DB
}

// NewGORMDeliveryOracle creates a new GORMDeliveryOracle.
func NewGORMDeliveryOracle(db *gorm.DB) *GORMDeliveryOracle {
	return &GORMDeliveryOracle{db: db}
}

// HasUserReceivedProduct reports whether a DELIVERED record exists for the
// pair. Query failures are logged and answered with false.
func (o *GORMDeliveryOracle) HasUserReceivedProduct(ctx context.Context, userID string, productID int64) bool {
	var count int64
	err := conn(ctx, o.db).Model(&models.Delivery{}).
		Where("user_id = ? AND product_id = ? AND status = ?", userID, productID, models.DeliveryStatusDelivered).
		Count(&count).Error
	if err != nil {
		log.Printf("Delivery lookup failed for user %s, product %d: %v", userID, productID, err)
		return false
	}
	return count > 0
}
