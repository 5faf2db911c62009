package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestUser holds contact details for an anonymous session that placed an order.
type GuestUser struct {
	ID         string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	SessionKey string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Email      string    `gorm:"size:100;not null" json:"email"`
	FirstName  string    `gorm:"size:100" json:"first_name"`
	LastName   string    `gorm:"size:100" json:"last_name"`
	Phone      string    `gorm:"size:20" json:"phone"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (g *GuestUser) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

func (g *GuestUser) Expired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}
