package migrations

import (
	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.GuestUser{},
		&models.Category{},
		&models.Subcategory{},
		&models.Brand{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
}
