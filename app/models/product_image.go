package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductImage struct {
	ID         string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	ProductID  string    `gorm:"size:36;not null;index" json:"product_id"`
	ImageURL   string    `gorm:"size:500;not null" json:"image"`
	StorageKey string    `gorm:"size:255;not null" json:"-"`
	AltText    string    `gorm:"size:200" json:"alt_text"`
	IsMain     bool      `gorm:"not null" json:"is_main"`
	SortOrder  int       `gorm:"not null" json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

func (pi *ProductImage) BeforeCreate(tx *gorm.DB) (err error) {
	if pi.ID == "" {
		pi.ID = uuid.New().String()
	}
	return
}
