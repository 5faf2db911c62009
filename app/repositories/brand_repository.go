package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type BrandRepository interface {
	WithTx(tx *gorm.DB) BrandRepository
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	GetByName(ctx context.Context, name string) (*models.Brand, error)
	LockByID(ctx context.Context, id string) (*models.Brand, error)
	GetAll(ctx context.Context, onlyActive bool) ([]models.Brand, error)
	Update(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id string) error
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) WithTx(tx *gorm.DB) BrandRepository {
	return &brandRepository{db: tx}
}

func (r *brandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (r *brandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *brandRepository) GetByName(ctx context.Context, name string) (*models.Brand, error) {
	return r.first(r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name))
}

func (r *brandRepository) LockByID(ctx context.Context, id string) (*models.Brand, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

func (r *brandRepository) first(query *gorm.DB) (*models.Brand, error) {
	var brand models.Brand
	if err := query.First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) GetAll(ctx context.Context, onlyActive bool) ([]models.Brand, error) {
	var brands []models.Brand
	query := r.db.WithContext(ctx)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

func (r *brandRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Brand{}).Error
}
