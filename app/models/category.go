package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID            string        `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name          string        `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description   string        `gorm:"type:text" json:"description"`
	ImageURL      string        `gorm:"size:500" json:"image"`
	IsActive      bool          `gorm:"not null;index" json:"is_active"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID" json:"subcategories,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID          string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	CategoryID  string    `gorm:"size:36;not null;index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

type Brand struct {
	ID          string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"size:500" json:"logo"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}
