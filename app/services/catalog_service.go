package services

import (
	"context"
	"log"
	"strings"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const FeaturedLimit = 8

type CategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type SubcategoryInput struct {
	CategoryID  *string `json:"category_id" validate:"omitempty,min=1"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type BrandInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type ProductInput struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,min=1"`
	SubcategoryID *string          `json:"subcategory_id"`
	BrandID       *string          `json:"brand_id"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock" validate:"omitempty,min=0"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    *bool            `json:"is_featured"`
}

type CatalogService struct {
	db              *gorm.DB
	categoryRepo    repositories.CategoryRepositoryImpl
	subcategoryRepo repositories.SubcategoryRepository
	brandRepo       repositories.BrandRepository
	productRepo     repositories.ProductRepositoryImpl
	imageRepo       repositories.ProductImageRepository
	store           storage.ImageStore
}

func NewCatalogService(
	db *gorm.DB,
	categoryRepo repositories.CategoryRepositoryImpl,
	subcategoryRepo repositories.SubcategoryRepository,
	brandRepo repositories.BrandRepository,
	productRepo repositories.ProductRepositoryImpl,
	imageRepo repositories.ProductImageRepository,
	store storage.ImageStore,
) *CatalogService {
	return &CatalogService{
		db:              db,
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
		brandRepo:       brandRepo,
		productRepo:     productRepo,
		imageRepo:       imageRepo,
		store:           store,
	}
}

func requireCatalogManager(actor policy.Actor) error {
	if !policy.CanPerform(actor, policy.ManageCatalog, policy.Resource{}) {
		return apperrors.Authorization("staff access required")
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx, !includeInactive)
	if err != nil {
		return nil, apperrors.Unexpected("could not list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor policy.Actor, in CategoryInput) (*models.Category, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	name := trimmed(in.Name)
	if name == "" {
		return nil, apperrors.ValidationField("name", "this field is required")
	}
	if err := s.ensureCategoryNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Description: trimmed(in.Description),
		ImageURL:    trimmed(in.ImageURL),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, apperrors.Unexpected("could not create category", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor policy.Actor, id string, in CategoryInput) (*models.Category, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load category", err)
	}
	if category == nil {
		return nil, apperrors.NotFound("category not found")
	}

	if in.Name != nil {
		name := trimmed(in.Name)
		if err := s.ensureCategoryNameFree(ctx, name, category.ID); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = trimmed(in.Description)
	}
	if in.ImageURL != nil {
		category.ImageURL = trimmed(in.ImageURL)
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, apperrors.Unexpected("could not update category", err)
	}
	return category, nil
}

func (s *CatalogService) ensureCategoryNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return apperrors.Unexpected("could not check category name", err)
	}
	if existing != nil && existing.ID != selfID {
		return apperrors.Conflict("a category with this name already exists")
	}
	return nil
}

// DeleteCategory refuses while any product still references the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor policy.Actor, id string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepo.WithTx(tx).LockByID(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not load category", err)
		}
		if category == nil {
			return apperrors.NotFound("category not found")
		}

		products := s.productRepo.WithTx(tx)
		count, err := products.CountByCategory(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not check category products", err)
		}
		if count > 0 {
			return apperrors.Conflict("cannot delete a category that has products; deactivate it instead")
		}

		subs, err := s.subcategoryRepo.WithTx(tx).List(ctx, id, false)
		if err != nil {
			return apperrors.Unexpected("could not load subcategories", err)
		}
		for _, sub := range subs {
			if err := products.ClearSubcategory(ctx, sub.ID); err != nil {
				return apperrors.Unexpected("could not detach subcategory", err)
			}
		}
		if err := s.categoryRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return apperrors.Unexpected("could not delete category", err)
		}
		log.Printf("CatalogService.DeleteCategory: %s deleted category %s", actor.UserID, id)
		return nil
	})
}

// Subcategories

func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID string, includeInactive bool) ([]models.Subcategory, error) {
	subs, err := s.subcategoryRepo.List(ctx, categoryID, !includeInactive)
	if err != nil {
		return nil, apperrors.Unexpected("could not list subcategories", err)
	}
	return subs, nil
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, actor policy.Actor, in SubcategoryInput) (*models.Subcategory, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if trimmed(in.Name) == "" {
		fields["name"] = "this field is required"
	}
	if trimmed(in.CategoryID) == "" {
		fields["category_id"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}
	if err := ensureCategoryExists(ctx, s.categoryRepo, trimmed(in.CategoryID)); err != nil {
		return nil, err
	}

	sub := &models.Subcategory{
		CategoryID:  trimmed(in.CategoryID),
		Name:        trimmed(in.Name),
		Description: trimmed(in.Description),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.subcategoryRepo.Create(ctx, sub); err != nil {
		return nil, apperrors.Unexpected("could not create subcategory", err)
	}
	return sub, nil
}

func (s *CatalogService) UpdateSubcategory(ctx context.Context, actor policy.Actor, id string, in SubcategoryInput) (*models.Subcategory, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	sub, err := s.subcategoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load subcategory", err)
	}
	if sub == nil {
		return nil, apperrors.NotFound("subcategory not found")
	}

	if in.CategoryID != nil {
		if err := ensureCategoryExists(ctx, s.categoryRepo, trimmed(in.CategoryID)); err != nil {
			return nil, err
		}
		sub.CategoryID = trimmed(in.CategoryID)
	}
	if in.Name != nil {
		sub.Name = trimmed(in.Name)
	}
	if in.Description != nil {
		sub.Description = trimmed(in.Description)
	}
	if in.IsActive != nil {
		sub.IsActive = *in.IsActive
	}
	sub.Category = nil
	if err := s.subcategoryRepo.Update(ctx, sub); err != nil {
		return nil, apperrors.Unexpected("could not update subcategory", err)
	}
	return sub, nil
}

// DeleteSubcategory detaches products from the subcategory before removing it.
func (s *CatalogService) DeleteSubcategory(ctx context.Context, actor policy.Actor, id string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.subcategoryRepo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not load subcategory", err)
		}
		if sub == nil {
			return apperrors.NotFound("subcategory not found")
		}
		if err := s.productRepo.WithTx(tx).ClearSubcategory(ctx, id); err != nil {
			return apperrors.Unexpected("could not detach subcategory", err)
		}
		if err := s.subcategoryRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return apperrors.Unexpected("could not delete subcategory", err)
		}
		return nil
	})
}

func ensureCategoryExists(ctx context.Context, repo repositories.CategoryRepositoryImpl, id string) error {
	category, err := repo.GetByID(ctx, id)
	if err != nil {
		return apperrors.Unexpected("could not load category", err)
	}
	if category == nil {
		return apperrors.ValidationField("category_id", "category does not exist")
	}
	return nil
}

// Brands

func (s *CatalogService) ListBrands(ctx context.Context, includeInactive bool) ([]models.Brand, error) {
	brands, err := s.brandRepo.GetAll(ctx, !includeInactive)
	if err != nil {
		return nil, apperrors.Unexpected("could not list brands", err)
	}
	return brands, nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, actor policy.Actor, in BrandInput) (*models.Brand, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	name := trimmed(in.Name)
	if name == "" {
		return nil, apperrors.ValidationField("name", "this field is required")
	}
	if err := s.ensureBrandNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	brand := &models.Brand{
		Name:        name,
		Description: trimmed(in.Description),
		LogoURL:     trimmed(in.LogoURL),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, apperrors.Unexpected("could not create brand", err)
	}
	return brand, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, actor policy.Actor, id string, in BrandInput) (*models.Brand, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load brand", err)
	}
	if brand == nil {
		return nil, apperrors.NotFound("brand not found")
	}

	if in.Name != nil {
		name := trimmed(in.Name)
		if err := s.ensureBrandNameFree(ctx, name, brand.ID); err != nil {
			return nil, err
		}
		brand.Name = name
	}
	if in.Description != nil {
		brand.Description = trimmed(in.Description)
	}
	if in.LogoURL != nil {
		brand.LogoURL = trimmed(in.LogoURL)
	}
	if in.IsActive != nil {
		brand.IsActive = *in.IsActive
	}
	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, apperrors.Unexpected("could not update brand", err)
	}
	return brand, nil
}

func (s *CatalogService) ensureBrandNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.brandRepo.GetByName(ctx, name)
	if err != nil {
		return apperrors.Unexpected("could not check brand name", err)
	}
	if existing != nil && existing.ID != selfID {
		return apperrors.Conflict("a brand with this name already exists")
	}
	return nil
}

// DeleteBrand refuses while any product still references the brand.
func (s *CatalogService) DeleteBrand(ctx context.Context, actor policy.Actor, id string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brand, err := s.brandRepo.WithTx(tx).LockByID(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not load brand", err)
		}
		if brand == nil {
			return apperrors.NotFound("brand not found")
		}
		count, err := s.productRepo.WithTx(tx).CountByBrand(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not check brand products", err)
		}
		if count > 0 {
			return apperrors.Conflict("cannot delete a brand that has products; deactivate it instead")
		}
		if err := s.brandRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return apperrors.Unexpected("could not delete brand", err)
		}
		return nil
	})
}

// Products

// ListProducts shows only active products unless the actor may see inactive ones
// and asked for the admin listing.
func (s *CatalogService) ListProducts(ctx context.Context, actor policy.Actor, admin bool, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	if admin {
		if !policy.CanPerform(actor, policy.ViewInactiveCatalog, policy.Resource{}) {
			return nil, 0, apperrors.Authorization("staff access required")
		}
	} else {
		active := true
		filter.Active = &active
	}
	if filter.Ordering != "" {
		if _, ok := repositories.ProductOrderings[filter.Ordering]; !ok {
			return nil, 0, apperrors.ValidationField("ordering", "unsupported ordering")
		}
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Unexpected("could not list products", err)
	}
	return products, total, nil
}

func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	active, featured := true, true
	products, _, err := s.productRepo.List(ctx, repositories.ProductFilter{
		Active:   &active,
		Featured: &featured,
		Ordering: repositories.DefaultProductOrdering,
		Page:     1,
		PageSize: FeaturedLimit,
	})
	if err != nil {
		return nil, apperrors.Unexpected("could not list featured products", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, actor policy.Actor, id string, admin bool) (*models.Product, error) {
	if admin && !policy.CanPerform(actor, policy.ViewInactiveCatalog, policy.Resource{}) {
		return nil, apperrors.Authorization("staff access required")
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load product", err)
	}
	if product == nil || (!admin && !product.IsActive) {
		return nil, apperrors.NotFound("product not found")
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor policy.Actor, in ProductInput) (*models.Product, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if trimmed(in.Name) == "" {
		fields["name"] = "this field is required"
	}
	if trimmed(in.CategoryID) == "" {
		fields["category_id"] = "this field is required"
	}
	if in.Price == nil {
		fields["price"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	product := &models.Product{
		Name:        trimmed(in.Name),
		Description: trimmed(in.Description),
		CategoryID:  trimmed(in.CategoryID),
		IsActive:    in.IsActive == nil || *in.IsActive,
		IsFeatured:  in.IsFeatured != nil && *in.IsFeatured,
	}
	if err := s.applyProductInput(ctx, s.db, product, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperrors.Unexpected("could not create product", err)
	}
	return s.GetProduct(ctx, actor, product.ID, true)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor policy.Actor, id string, in ProductInput) (*models.Product, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		product, err := products.LockByID(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not load product", err)
		}
		if product == nil {
			return apperrors.NotFound("product not found")
		}

		if in.Name != nil {
			if trimmed(in.Name) == "" {
				return apperrors.ValidationField("name", "this field may not be blank")
			}
			product.Name = trimmed(in.Name)
		}
		if in.Description != nil {
			product.Description = trimmed(in.Description)
		}
		if in.CategoryID != nil {
			product.CategoryID = trimmed(in.CategoryID)
		}
		if in.IsActive != nil {
			product.IsActive = *in.IsActive
		}
		if in.IsFeatured != nil {
			product.IsFeatured = *in.IsFeatured
		}
		if err := s.applyProductInput(ctx, tx, product, in); err != nil {
			return err
		}
		if err := products.Update(ctx, product); err != nil {
			return apperrors.Unexpected("could not update product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, actor, id, true)
}

// applyProductInput sets price, stock and references, and checks that the
// subcategory belongs to the product's category.
func (s *CatalogService) applyProductInput(ctx context.Context, tx *gorm.DB, product *models.Product, in ProductInput) error {
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperrors.ValidationField("price", "must be zero or greater")
		}
		product.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.SubcategoryID != nil {
		if id := trimmed(in.SubcategoryID); id == "" {
			product.SubcategoryID = nil
		} else {
			product.SubcategoryID = &id
		}
	}
	if in.BrandID != nil {
		if id := trimmed(in.BrandID); id == "" {
			product.BrandID = nil
		} else {
			product.BrandID = &id
		}
	}

	if err := ensureCategoryExists(ctx, s.categoryRepo.WithTx(tx), product.CategoryID); err != nil {
		return err
	}
	if product.SubcategoryID != nil {
		sub, err := s.subcategoryRepo.WithTx(tx).GetByID(ctx, *product.SubcategoryID)
		if err != nil {
			return apperrors.Unexpected("could not load subcategory", err)
		}
		if sub == nil {
			return apperrors.ValidationField("subcategory_id", "subcategory does not exist")
		}
		if sub.CategoryID != product.CategoryID {
			return apperrors.ValidationField("subcategory_id", "subcategory does not belong to the selected category")
		}
	}
	if product.BrandID != nil {
		brand, err := s.brandRepo.WithTx(tx).GetByID(ctx, *product.BrandID)
		if err != nil {
			return apperrors.Unexpected("could not load brand", err)
		}
		if brand == nil {
			return apperrors.ValidationField("brand_id", "brand does not exist")
		}
	}

	product.Category, product.Subcategory, product.Brand = nil, nil, nil
	return nil
}

// DeleteProduct refuses for products that appear on orders; stored images are
// removed once the rows are gone.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor policy.Actor, id string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	var images []models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		product, err := products.LockByID(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not load product", err)
		}
		if product == nil {
			return apperrors.NotFound("product not found")
		}
		count, err := products.CountOrderItems(ctx, id)
		if err != nil {
			return apperrors.Unexpected("could not check product orders", err)
		}
		if count > 0 {
			return apperrors.Conflict("cannot delete a product that appears on orders; deactivate it instead")
		}
		if images, err = s.imageRepo.WithTx(tx).ListByProduct(ctx, id); err != nil {
			return apperrors.Unexpected("could not load product images", err)
		}
		if err := products.Delete(ctx, id); err != nil {
			return apperrors.Unexpected("could not delete product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.store != nil {
		for _, img := range images {
			if err := s.store.Delete(ctx, img.StorageKey); err != nil {
				log.Printf("CatalogService.DeleteProduct: failed to delete stored image %s: %v", img.StorageKey, err)
			}
		}
	}
	log.Printf("CatalogService.DeleteProduct: %s deleted product %s", actor.UserID, id)
	return nil
}
