package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
)

type ProductImageRepository interface {
	WithTx(tx *gorm.DB) ProductImageRepository
	ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error)
	FindByID(ctx context.Context, productID, imageID string) (*models.ProductImage, error)
	NextSortOrder(ctx context.Context, productID string) (int, error)
	Create(ctx context.Context, image *models.ProductImage) error
	Delete(ctx context.Context, imageID string) error
	ClearMain(ctx context.Context, productID string) error
	MarkMain(ctx context.Context, imageID string) error
}

type productImageRepository struct {
	db *gorm.DB
}

func NewProductImageRepository(db *gorm.DB) ProductImageRepository {
	return &productImageRepository{db}
}

func (r *productImageRepository) WithTx(tx *gorm.DB) ProductImageRepository {
	return &productImageRepository{tx}
}

func (r *productImageRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Scopes(orderedImages).Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images of product %s: %w", productID, err)
	}
	return images, nil
}

func (r *productImageRepository) FindByID(ctx context.Context, productID, imageID string) (*models.ProductImage, error) {
	var image models.ProductImage
	err := r.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// NextSortOrder returns max(sort_order)+1 for the product, starting at 0.
func (r *productImageRepository) NextSortOrder(ctx context.Context, productID string) (int, error) {
	var current sql.NullInt64
	row := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Select("MAX(sort_order)").
		Row()
	if err := row.Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to read image order: %w", err)
	}
	if !current.Valid {
		return 0, nil
	}
	return int(current.Int64) + 1, nil
}

func (r *productImageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create product image: %w", err)
	}
	return nil
}

func (r *productImageRepository) Delete(ctx context.Context, imageID string) error {
	return r.db.WithContext(ctx).Where("id = ?", imageID).Delete(&models.ProductImage{}).Error
}

func (r *productImageRepository) ClearMain(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND is_main = ?", productID, true).
		Update("is_main", false).Error
}

func (r *productImageRepository) MarkMain(ctx context.Context, imageID string) error {
	return r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("id = ?", imageID).
		Update("is_main", true).Error
}
