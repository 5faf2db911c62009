package repositories

import (
	"context"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type OrderStatusHistoryRepository interface {
	WithTx(tx *gorm.DB) OrderStatusHistoryRepository
	Append(ctx context.Context, entry *models.OrderStatusHistory) error
	ListByOrder(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

type orderStatusHistoryRepository struct {
	db *gorm.DB
}

func NewOrderStatusHistoryRepository(db *gorm.DB) OrderStatusHistoryRepository {
	return &orderStatusHistoryRepository{db}
}

func (r *orderStatusHistoryRepository) WithTx(tx *gorm.DB) OrderStatusHistoryRepository {
	return &orderStatusHistoryRepository{tx}
}

func (r *orderStatusHistoryRepository) Append(ctx context.Context, entry *models.OrderStatusHistory) error {
	if err := r.db.WithContext(ctx).Omit("ChangedBy").Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

// ListByOrder returns entries newest first.
func (r *orderStatusHistoryRepository) ListByOrder(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Preload("ChangedBy").
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	return entries, nil
}
