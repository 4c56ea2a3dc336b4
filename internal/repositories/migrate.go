package repositories

import (
	"fmt"

	"shopcore/internal/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables used by the service.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Review{},
		&models.Delivery{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
