package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatusHistory is append-only.
type OrderStatusHistory struct {
	ID          string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID     string    `gorm:"size:36;not null;index" json:"order_id"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	ChangedByID *string   `gorm:"size:36;index" json:"changed_by_id"`
	ChangedBy   *User     `gorm:"foreignKey:ChangedByID" json:"changed_by,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return
}
