package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type CartRepositoryImpl interface {
	WithTx(tx *gorm.DB) CartRepositoryImpl
	GetOrCreateForUser(ctx context.Context, userID string) (*models.Cart, error)
	GetOrCreateForSession(ctx context.Context, sessionKey string) (*models.Cart, error)
	FindForUser(ctx context.Context, userID string) (*models.Cart, error)
	FindForSession(ctx context.Context, sessionKey string) (*models.Cart, error)
	LockByID(ctx context.Context, id string) (*models.Cart, error)
	GetCartWithItems(ctx context.Context, cartID string) (*models.Cart, error)
	Touch(ctx context.Context, cartID string) error
	Delete(ctx context.Context, cartID string) error
	DeleteStaleSessionCarts(ctx context.Context, before time.Time) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepositoryImpl {
	return &cartRepository{db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepositoryImpl {
	return &cartRepository{tx}
}

func (r *cartRepository) GetOrCreateForUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.getOrCreate(ctx, "user_id", models.Cart{UserID: &userID})
}

func (r *cartRepository) GetOrCreateForSession(ctx context.Context, sessionKey string) (*models.Cart, error) {
	return r.getOrCreate(ctx, "session_key", models.Cart{SessionKey: &sessionKey})
}

// getOrCreate relies on the unique index of the identity column: a losing
// concurrent insert falls back to reading the winner's row.
func (r *cartRepository) getOrCreate(ctx context.Context, column string, cart models.Cart) (*models.Cart, error) {
	value := identityValue(column, cart)

	existing, err := r.findBy(ctx, column, value)
	if err != nil || existing != nil {
		return existing, err
	}

	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		existing, findErr := r.findBy(ctx, column, value)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

func identityValue(column string, cart models.Cart) string {
	if column == "user_id" && cart.UserID != nil {
		return *cart.UserID
	}
	if cart.SessionKey != nil {
		return *cart.SessionKey
	}
	return ""
}

func (r *cartRepository) findBy(ctx context.Context, column, value string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindForUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.findBy(ctx, "user_id", userID)
}

func (r *cartRepository) FindForSession(ctx context.Context, sessionKey string) (*models.Cart, error) {
	return r.findBy(ctx, "session_key", sessionKey)
}

// LockByID reads the cart with SELECT ... FOR UPDATE; use it inside a transaction.
func (r *cartRepository) LockByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Clauses(forUpdate).First(&cart, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetCartWithItems(ctx context.Context, cartID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Items.Variant").
		First(&cart, "id = ?", cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Touch(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now()).Error
}

func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return r.db.WithContext(ctx).Where("id = ?", cartID).Delete(&models.Cart{}).Error
}

// DeleteStaleSessionCarts removes anonymous carts untouched since before.
func (r *cartRepository) DeleteStaleSessionCarts(ctx context.Context, before time.Time) (int64, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("session_key IS NOT NULL AND updated_at < ?", before).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find stale carts: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete stale cart items: %w", err)
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Cart{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete stale carts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
