package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var VariantSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

var VariantColors = []string{"rojo", "azul", "verde", "negro", "blanco", "gris", "amarillo", "rosa"}

// ProductVariant is unique per (product, size, color).
type ProductVariant struct {
	ID              string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	ProductID       string          `gorm:"size:36;not null;uniqueIndex:idx_variant_product_size_color" json:"product_id"`
	Size            string          `gorm:"size:5;not null;uniqueIndex:idx_variant_product_size_color" json:"size"`
	Color           string          `gorm:"size:20;not null;uniqueIndex:idx_variant_product_size_color" json:"color"`
	Stock           int             `gorm:"not null" json:"stock"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price_adjustment"`
	FinalPrice      decimal.Decimal `gorm:"-" json:"final_price"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

func (v *ProductVariant) PriceWith(base decimal.Decimal) decimal.Decimal {
	return base.Add(v.PriceAdjustment)
}

func IsValidSize(size string) bool {
	return contains(VariantSizes, size)
}

func IsValidColor(color string) bool {
	return contains(VariantColors, color)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
