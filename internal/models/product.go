package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of catalog categories.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryClothing    Category = "CLOTHING"
	CategoryHome        Category = "HOME"
	CategorySports      Category = "SPORTS"
	CategoryBooks       Category = "BOOKS"
	CategoryToys        Category = "TOYS"
)

var categories = map[Category]struct{}{
	CategoryElectronics: {},
	CategoryClothing:    {},
	CategoryHome:        {},
	CategorySports:      {},
	CategoryBooks:       {},
	CategoryToys:        {},
}

// Valid reports whether c belongs to the catalog's category set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
	}
	return c, nil
}

// Product represents a product in the catalog. The ID is assigned by the
// caller. Quantity is only changed through the stock operations.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null;index" validate:"required,min=1,max=100"`
	Category    Category        `json:"category" gorm:"type:varchar(32);not null;index" validate:"required"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0" validate:"gte=0"`
	Description string          `json:"description" gorm:"type:varchar(1000)" validate:"omitempty,max=1000"`
	ImageURL    *string         `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductPatch carries a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Category    *Category        `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
}

// ApplyTo copies every non-nil field of the patch onto p.
func (patch ProductPatch) ApplyTo(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
}

// ImageUpload is an image received with a product create or update.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
