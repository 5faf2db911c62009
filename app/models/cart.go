package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is owned by exactly one of UserID or SessionKey.
type Cart struct {
	ID         string     `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID     *string    `gorm:"size:36;uniqueIndex" json:"-"`
	SessionKey *string    `gorm:"size:64;uniqueIndex" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}
