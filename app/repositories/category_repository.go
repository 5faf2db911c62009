package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type CategoryRepositoryImpl interface {
	WithTx(tx *gorm.DB) CategoryRepositoryImpl
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	LockByID(ctx context.Context, id string) (*models.Category, error)
	GetAll(ctx context.Context, onlyActive bool) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: tx}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.first(r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name))
}

func (r *categoryRepository) LockByID(ctx context.Context, id string) (*models.Category, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

func (r *categoryRepository) first(query *gorm.DB) (*models.Category, error) {
	var category models.Category
	if err := query.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	var categories []models.Category
	query := r.db.WithContext(ctx)
	if onlyActive {
		query = query.Where("is_active = ?", true).
			Preload("Subcategories", "is_active = ?", true)
	} else {
		query = query.Preload("Subcategories")
	}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit("Subcategories").Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
		return fmt.Errorf("failed to delete subcategories of %s: %w", id, err)
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}
