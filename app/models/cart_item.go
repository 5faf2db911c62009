package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem references live catalog rows; its price is never stored.
type CartItem struct {
	ID        string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	CartID    string          `gorm:"size:36;not null;index:idx_cart_item_key" json:"-"`
	ProductID string          `gorm:"size:36;not null;index:idx_cart_item_key" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	VariantID *string         `gorm:"size:36;index:idx_cart_item_key" json:"variant_id"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) (err error) {
	if ci.ID == "" {
		ci.ID = uuid.New().String()
	}
	return
}

// UnitPrice is the variant's adjusted price when a variant is set, else the product price.
func (ci *CartItem) UnitPrice() decimal.Decimal {
	if ci.Product == nil {
		return decimal.Zero
	}
	if ci.Variant != nil {
		return ci.Variant.PriceWith(ci.Product.Price)
	}
	return ci.Product.Price
}

func (ci *CartItem) Subtotal() decimal.Decimal {
	return ci.UnitPrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
