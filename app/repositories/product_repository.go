package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modaltela/modal-tela-api/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductOrderings maps the accepted "ordering" values to ORDER BY clauses.
var ProductOrderings = map[string]string{
	"price":       "price ASC, id ASC",
	"-price":      "price DESC, id ASC",
	"created_at":  "created_at ASC, id ASC",
	"-created_at": "created_at DESC, id ASC",
	"name":        "name ASC, id ASC",
	"-name":       "name DESC, id ASC",
}

const DefaultProductOrdering = "-created_at"

type ProductFilter struct {
	CategoryID    string
	SubcategoryID string
	BrandID       string
	Featured      *bool
	Active        *bool
	Search        string
	Ordering      string
	Page          int
	PageSize      int
}

type ProductRepositoryImpl interface {
	WithTx(tx *gorm.DB) ProductRepositoryImpl
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	LockByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	CountByBrand(ctx context.Context, brandID string) (int64, error)
	CountOrderItems(ctx context.Context, productID string) (int64, error)
	ClearSubcategory(ctx context.Context, subcategoryID string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepositoryImpl {
	return &productRepository{tx}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

func orderedVariants(db *gorm.DB) *gorm.DB {
	return db.Order("size ASC, color ASC")
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SubcategoryID != "" {
		query = query.Where("subcategory_id = ?", filter.SubcategoryID)
	}
	if filter.BrandID != "" {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy, ok := ProductOrderings[filter.Ordering]
	if !ok {
		orderBy = ProductOrderings[DefaultProductOrdering]
	}

	var products []models.Product
	err := query.
		Preload("Category").
		Preload("Subcategory").
		Preload("Brand").
		Preload("Images", orderedImages).
		Preload("Variants", orderedVariants).
		Order(orderBy).
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Subcategory").
		Preload("Brand").
		Preload("Images", orderedImages).
		Preload("Variants", orderedVariants).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) LockByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Clauses(forUpdate).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// Delete removes the product with its images, variants and cart lines.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items of product %s: %w", id, err)
	}
	if err := db.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
		return fmt.Errorf("failed to delete images of product %s: %w", id, err)
	}
	if err := db.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
		return fmt.Errorf("failed to delete variants of product %s: %w", id, err)
	}
	return db.Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *productRepository) CountByBrand(ctx context.Context, brandID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("brand_id = ?", brandID).Count(&count).Error
	return count, err
}

func (r *productRepository) CountOrderItems(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *productRepository) ClearSubcategory(ctx context.Context, subcategoryID string) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("subcategory_id = ?", subcategoryID).
		Update("subcategory_id", nil).Error
}
