package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type CartItemRepositoryImpl interface {
	WithTx(tx *gorm.DB) CartItemRepositoryImpl
	FindByKey(ctx context.Context, cartID, productID string, variantID *string) (*models.CartItem, error)
	FindInCart(ctx context.Context, cartID, itemID string) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	Delete(ctx context.Context, itemID string) error
	ClearCartItems(ctx context.Context, cartID string) error
}

type CartItemRepository struct {
	DB *gorm.DB
}

func NewCartItemRepository(db *gorm.DB) CartItemRepositoryImpl {
	return &CartItemRepository{db}
}

func (r *CartItemRepository) WithTx(tx *gorm.DB) CartItemRepositoryImpl {
	return &CartItemRepository{tx}
}

// FindByKey matches the (cart, product, variant) triple; a nil variant
// matches only rows without a variant.
func (r *CartItemRepository) FindByKey(ctx context.Context, cartID, productID string, variantID *string) (*models.CartItem, error) {
	query := r.DB.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID == nil {
		query = query.Where("variant_id IS NULL")
	} else {
		query = query.Where("variant_id = ?", *variantID)
	}

	var item models.CartItem
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *CartItemRepository) FindInCart(ctx context.Context, cartID, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *CartItemRepository) Create(ctx context.Context, item *models.CartItem) error {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *CartItemRepository) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

func (r *CartItemRepository) Delete(ctx context.Context, itemID string) error {
	return r.DB.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

func (r *CartItemRepository) ClearCartItems(ctx context.Context, cartID string) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
