package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem keeps the unit price at the time the order was placed.
type OrderItem struct {
	ID          string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID     string          `gorm:"size:36;not null;index" json:"order_id"`
	ProductID   string          `gorm:"size:36;not null;index" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"-"`
	VariantID   *string         `gorm:"size:36;index" json:"variant_id"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID" json:"-"`
	ProductName string          `gorm:"size:200;not null" json:"product_name"`
	Size        string          `gorm:"size:5" json:"size,omitempty"`
	Color       string          `gorm:"size:20" json:"color,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	IsPrepared  bool            `gorm:"not null" json:"is_prepared"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return
}

func (oi *OrderItem) Subtotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
