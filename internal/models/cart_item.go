package models

import "time"

// CartItem is one line of a user's cart. A cart is the set of items sharing
// a UserID; there is at most one item per (UserID, ProductID).
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_items_user_product,priority:1"`
	ProductID int64     `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_items_user_product,priority:2"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
