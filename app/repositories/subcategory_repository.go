package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type SubcategoryRepository interface {
	WithTx(tx *gorm.DB) SubcategoryRepository
	Create(ctx context.Context, sub *models.Subcategory) error
	GetByID(ctx context.Context, id string) (*models.Subcategory, error)
	List(ctx context.Context, categoryID string, onlyActive bool) ([]models.Subcategory, error)
	Update(ctx context.Context, sub *models.Subcategory) error
	Delete(ctx context.Context, id string) error
}

type subcategoryRepository struct {
	db *gorm.DB
}

func NewSubcategoryRepository(db *gorm.DB) SubcategoryRepository {
	return &subcategoryRepository{db: db}
}

func (r *subcategoryRepository) WithTx(tx *gorm.DB) SubcategoryRepository {
	return &subcategoryRepository{db: tx}
}

func (r *subcategoryRepository) Create(ctx context.Context, sub *models.Subcategory) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subcategory: %w", err)
	}
	return nil
}

func (r *subcategoryRepository) GetByID(ctx context.Context, id string) (*models.Subcategory, error) {
	var sub models.Subcategory
	err := r.db.WithContext(ctx).Preload("Category").First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subcategoryRepository) List(ctx context.Context, categoryID string, onlyActive bool) ([]models.Subcategory, error) {
	var subs []models.Subcategory
	query := r.db.WithContext(ctx).Preload("Category")
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	return subs, nil
}

func (r *subcategoryRepository) Update(ctx context.Context, sub *models.Subcategory) error {
	return r.db.WithContext(ctx).Omit("Category").Save(sub).Error
}

func (r *subcategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Subcategory{}).Error
}
