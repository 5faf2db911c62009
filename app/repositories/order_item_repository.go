package repositories

import (
	"context"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type OrderItemRepository interface {
	WithTx(tx *gorm.DB) OrderItemRepository
	BulkCreate(ctx context.Context, items []models.OrderItem) error
	SetPrepared(ctx context.Context, orderID, itemID string, prepared bool) (bool, error)
}

type OrderItemRepositoryImpl struct {
	DB *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{DB: db}
}

func (r *OrderItemRepositoryImpl) WithTx(tx *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{DB: tx}
}

func (r *OrderItemRepositoryImpl) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.DB.WithContext(ctx).Omit("Product", "Variant").Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

// SetPrepared reports false when the item is not part of the order.
func (r *OrderItemRepositoryImpl) SetPrepared(ctx context.Context, orderID, itemID string, prepared bool) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Update("is_prepared", prepared)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update item %s: %w", itemID, result.Error)
	}
	return result.RowsAffected > 0, nil
}
