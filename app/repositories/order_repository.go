package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	UserID          string
	GuestUserID     string
	AssignedAdminID string
	Status          string
	Page            int
	PageSize        int
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByIDWithHistory(ctx context.Context, id string) (*models.Order, error)
	LockByID(ctx context.Context, id string) (*models.Order, error)
	FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error)
	ExistsByNumber(ctx context.Context, orderNumber string) (bool, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	UpdateFields(ctx context.Context, orderID string, fields map[string]interface{}) error
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: tx}
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("AssignedAdmin").
		Preload("GuestUser")
}

func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *gormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(r.db.WithContext(ctx).Scopes(withOrderDetails).Where("id = ?", id))
}

func (r *gormOrderRepository) GetByIDWithHistory(ctx context.Context, id string) (*models.Order, error) {
	return r.first(r.db.WithContext(ctx).
		Scopes(withOrderDetails).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Preload("StatusHistory.ChangedBy").
		Where("id = ?", id))
}

// LockByID loads the order row FOR UPDATE together with its guest owner.
func (r *gormOrderRepository) LockByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Preload("GuestUser").Where("id = ?", id))
}

// FindByNumberAndEmail matches both values case-insensitively.
func (r *gormOrderRepository) FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	return r.first(r.db.WithContext(ctx).
		Scopes(withOrderDetails).
		Where("LOWER(order_number) = LOWER(?) AND LOWER(billing_email) = LOWER(?)", orderNumber, email))
}

func (r *gormOrderRepository) ExistsByNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", orderNumber).Count(&count).Error
	return count > 0, err
}

func (r *gormOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.GuestUserID != "" {
		query = query.Where("guest_user_id = ?", filter.GuestUserID)
	}
	if filter.AssignedAdminID != "" {
		query = query.Where("assigned_admin_id = ?", filter.AssignedAdminID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := query.Scopes(withOrderDetails).
		Order("created_at DESC, id ASC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormOrderRepository) UpdateFields(ctx context.Context, orderID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(fields).Error
}
