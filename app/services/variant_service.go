package services

import (
	"context"
	"strings"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VariantInput struct {
	Size            *string          `json:"size"`
	Color           *string          `json:"color"`
	Stock           *int             `json:"stock" validate:"omitempty,min=0"`
	PriceAdjustment *decimal.Decimal `json:"price_adjustment"`
}

type VariantChoices struct {
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

type VariantService struct {
	db          *gorm.DB
	productRepo repositories.ProductRepositoryImpl
	variantRepo repositories.ProductVariantRepository
}

func NewVariantService(db *gorm.DB, productRepo repositories.ProductRepositoryImpl, variantRepo repositories.ProductVariantRepository) *VariantService {
	return &VariantService{db: db, productRepo: productRepo, variantRepo: variantRepo}
}

func (s *VariantService) Choices() VariantChoices {
	return VariantChoices{Sizes: models.VariantSizes, Colors: models.VariantColors}
}

func (s *VariantService) List(ctx context.Context, actor policy.Actor, productID string) ([]models.ProductVariant, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.Unexpected("could not load product", err)
	}
	if product == nil {
		return nil, apperrors.NotFound("product not found")
	}
	return product.Variants, nil
}

func normalizeVariantKey(size, color *string, fields map[string]string) {
	if size != nil {
		*size = strings.ToUpper(strings.TrimSpace(*size))
		if !models.IsValidSize(*size) {
			fields["size"] = "must be one of: " + strings.Join(models.VariantSizes, ", ")
		}
	}
	if color != nil {
		*color = strings.ToLower(strings.TrimSpace(*color))
		if !models.IsValidColor(*color) {
			fields["color"] = "must be one of: " + strings.Join(models.VariantColors, ", ")
		}
	}
}

func (s *VariantService) Create(ctx context.Context, actor policy.Actor, productID string, in VariantInput) (*models.ProductVariant, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.Size == nil {
		fields["size"] = "this field is required"
	}
	if in.Color == nil {
		fields["color"] = "this field is required"
	}
	normalizeVariantKey(in.Size, in.Color, fields)
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	variant := &models.ProductVariant{
		ProductID: productID,
		Size:      *in.Size,
		Color:     *in.Color,
	}
	if in.Stock != nil {
		variant.Stock = *in.Stock
	}
	if in.PriceAdjustment != nil {
		variant.PriceAdjustment = in.PriceAdjustment.Round(2)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.WithTx(tx).LockByID(ctx, productID)
		if err != nil {
			return apperrors.Unexpected("could not load product", err)
		}
		if product == nil {
			return apperrors.NotFound("product not found")
		}
		if err := s.ensureKeyFree(ctx, tx, variant, ""); err != nil {
			return err
		}
		if err := s.variantRepo.WithTx(tx).Create(ctx, variant); err != nil {
			return apperrors.Unexpected("could not create variant", err)
		}
		variant.FinalPrice = variant.PriceWith(product.Price)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *VariantService) Update(ctx context.Context, actor policy.Actor, variantID string, in VariantInput) (*models.ProductVariant, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	normalizeVariantKey(in.Size, in.Color, fields)
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	var variant *models.ProductVariant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants := s.variantRepo.WithTx(tx)
		found, err := variants.FindByID(ctx, variantID)
		if err != nil {
			return apperrors.Unexpected("could not load variant", err)
		}
		if found == nil {
			return apperrors.NotFound("variant not found")
		}
		product, err := s.productRepo.WithTx(tx).LockByID(ctx, found.ProductID)
		if err != nil {
			return apperrors.Unexpected("could not load product", err)
		}
		if product == nil {
			return apperrors.NotFound("product not found")
		}

		if in.Size != nil {
			found.Size = *in.Size
		}
		if in.Color != nil {
			found.Color = *in.Color
		}
		if in.Stock != nil {
			found.Stock = *in.Stock
		}
		if in.PriceAdjustment != nil {
			found.PriceAdjustment = in.PriceAdjustment.Round(2)
		}
		if err := s.ensureKeyFree(ctx, tx, found, found.ID); err != nil {
			return err
		}
		if err := variants.Update(ctx, found); err != nil {
			return apperrors.Unexpected("could not update variant", err)
		}
		found.FinalPrice = found.PriceWith(product.Price)
		variant = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *VariantService) ensureKeyFree(ctx context.Context, tx *gorm.DB, v *models.ProductVariant, selfID string) error {
	existing, err := s.variantRepo.WithTx(tx).FindByKey(ctx, v.ProductID, v.Size, v.Color)
	if err != nil {
		return apperrors.Unexpected("could not check variant", err)
	}
	if existing != nil && existing.ID != selfID {
		return apperrors.Conflict("this product already has a variant with that size and color")
	}
	return nil
}

// Delete refuses for variants referenced by orders.
func (s *VariantService) Delete(ctx context.Context, actor policy.Actor, variantID string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants := s.variantRepo.WithTx(tx)
		found, err := variants.FindByID(ctx, variantID)
		if err != nil {
			return apperrors.Unexpected("could not load variant", err)
		}
		if found == nil {
			return apperrors.NotFound("variant not found")
		}
		count, err := variants.CountOrderItems(ctx, variantID)
		if err != nil {
			return apperrors.Unexpected("could not check variant orders", err)
		}
		if count > 0 {
			return apperrors.Conflict("cannot delete a variant that appears on orders; set its stock to zero instead")
		}
		if err := variants.Delete(ctx, variantID); err != nil {
			return apperrors.Unexpected("could not delete variant", err)
		}
		return nil
	})
}
