package models

import "time"

// DeliveryStatusDelivered marks a delivery the user has received.
const DeliveryStatusDelivered = "DELIVERED"

// Delivery is a row of the delivery record set written by the order system.
// This service only reads it.
type Delivery struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"type:varchar(64);not null;index:idx_deliveries_user_product,priority:1"`
	ProductID   int64      `json:"product_id" gorm:"not null;index:idx_deliveries_user_product,priority:2"`
	Status      string     `json:"status" gorm:"type:varchar(32);not null"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
