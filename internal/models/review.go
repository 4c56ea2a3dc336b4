package models

import "time"

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

// Review is a rating left by a user who received the product.
type Review struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_reviews_user_product,priority:1"`
	ProductID        int64     `json:"product_id" gorm:"not null;index;uniqueIndex:idx_reviews_user_product,priority:2"`
	Product          *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Rating           int       `json:"rating" gorm:"not null"`
	Comment          *string   `json:"comment,omitempty" gorm:"type:varchar(500)"`
	VerifiedPurchase bool      `json:"verified_purchase" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ReviewPatch carries a partial review update.
type ReviewPatch struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}
