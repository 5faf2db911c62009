package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type ProductVariantRepository interface {
	WithTx(tx *gorm.DB) ProductVariantRepository
	ListByProduct(ctx context.Context, productID string) ([]models.ProductVariant, error)
	FindByID(ctx context.Context, id string) (*models.ProductVariant, error)
	FindByKey(ctx context.Context, productID, size, color string) (*models.ProductVariant, error)
	Create(ctx context.Context, variant *models.ProductVariant) error
	Update(ctx context.Context, variant *models.ProductVariant) error
	Delete(ctx context.Context, id string) error
	CountOrderItems(ctx context.Context, id string) (int64, error)
}

type productVariantRepository struct {
	db *gorm.DB
}

func NewProductVariantRepository(db *gorm.DB) ProductVariantRepository {
	return &productVariantRepository{db}
}

func (r *productVariantRepository) WithTx(tx *gorm.DB) ProductVariantRepository {
	return &productVariantRepository{tx}
}

func (r *productVariantRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Scopes(orderedVariants).Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list variants of product %s: %w", productID, err)
	}
	return variants, nil
}

func (r *productVariantRepository) FindByID(ctx context.Context, id string) (*models.ProductVariant, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *productVariantRepository) FindByKey(ctx context.Context, productID, size, color string) (*models.ProductVariant, error) {
	return r.first(r.db.WithContext(ctx).Where("product_id = ? AND size = ? AND color = ?", productID, size, color))
}

func (r *productVariantRepository) first(query *gorm.DB) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := query.First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *productVariantRepository) Create(ctx context.Context, variant *models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func (r *productVariantRepository) Update(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// Delete also drops cart lines pointing at the variant.
func (r *productVariantRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("variant_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items of variant %s: %w", id, err)
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductVariant{}).Error
}

func (r *productVariantRepository) CountOrderItems(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("variant_id = ?", id).Count(&count).Error
	return count, err
}
