package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            string           `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name          string           `gorm:"size:200;not null;index" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	CategoryID    string           `gorm:"size:36;not null;index" json:"category_id"`
	Category      *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubcategoryID *string          `gorm:"size:36;index" json:"subcategory_id"`
	Subcategory   *Subcategory     `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	BrandID       *string          `gorm:"size:36;index" json:"brand_id"`
	Brand         *Brand           `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Price         decimal.Decimal  `gorm:"type:decimal(16,2);not null" json:"price"`
	Stock         int              `gorm:"not null" json:"stock"`
	IsActive      bool             `gorm:"not null;index" json:"is_active"`
	IsFeatured    bool             `gorm:"not null;index" json:"is_featured"`
	Images        []ProductImage   `gorm:"foreignKey:ProductID" json:"images"`
	Variants      []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`
	MainImage     *ProductImage    `gorm:"-" json:"main_image"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// AfterFind fills the derived fields of loaded images and variants.
func (p *Product) AfterFind(tx *gorm.DB) (err error) {
	p.FillDerived()
	return
}

func (p *Product) FillDerived() {
	p.MainImage = nil
	for i := range p.Images {
		if p.Images[i].IsMain {
			p.MainImage = &p.Images[i]
			break
		}
	}
	for i := range p.Variants {
		p.Variants[i].FinalPrice = p.Variants[i].PriceWith(p.Price)
	}
}
