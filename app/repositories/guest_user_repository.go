package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type GuestUserRepository interface {
	WithTx(tx *gorm.DB) GuestUserRepository
	FindBySessionKey(ctx context.Context, sessionKey string) (*models.GuestUser, error)
	Create(ctx context.Context, guest *models.GuestUser) error
	Update(ctx context.Context, guest *models.GuestUser) error
	DeleteExpiredWithoutOrders(ctx context.Context, now time.Time) (int64, error)
}

type guestUserRepository struct {
	db *gorm.DB
}

func NewGuestUserRepository(db *gorm.DB) GuestUserRepository {
	return &guestUserRepository{db}
}

func (r *guestUserRepository) WithTx(tx *gorm.DB) GuestUserRepository {
	return &guestUserRepository{tx}
}

func (r *guestUserRepository) FindBySessionKey(ctx context.Context, sessionKey string) (*models.GuestUser, error) {
	var guest models.GuestUser
	err := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&guest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &guest, nil
}

func (r *guestUserRepository) Create(ctx context.Context, guest *models.GuestUser) error {
	if err := r.db.WithContext(ctx).Create(guest).Error; err != nil {
		return fmt.Errorf("failed to create guest user: %w", err)
	}
	return nil
}

func (r *guestUserRepository) Update(ctx context.Context, guest *models.GuestUser) error {
	return r.db.WithContext(ctx).Save(guest).Error
}

// DeleteExpiredWithoutOrders keeps guests that still own orders.
func (r *guestUserRepository) DeleteExpiredWithoutOrders(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.guest_user_id = guest_users.id)").
		Delete(&models.GuestUser{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge guest users: %w", result.Error)
	}
	return result.RowsAffected, nil
}
