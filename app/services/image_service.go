package services

import (
	"context"
	"io"
	"log"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/storage"
	"gorm.io/gorm"
)

type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	AltText     string
	IsMain      bool
}

// ImageService keeps at most one main image per product. Every mutation locks
// the product row first so concurrent uploads and main swaps serialize.
type ImageService struct {
	db          *gorm.DB
	productRepo repositories.ProductRepositoryImpl
	imageRepo   repositories.ProductImageRepository
	store       storage.ImageStore
}

func NewImageService(db *gorm.DB, productRepo repositories.ProductRepositoryImpl, imageRepo repositories.ProductImageRepository, store storage.ImageStore) *ImageService {
	return &ImageService{db: db, productRepo: productRepo, imageRepo: imageRepo, store: store}
}

func (s *ImageService) lockProduct(ctx context.Context, tx *gorm.DB, productID string) error {
	product, err := s.productRepo.WithTx(tx).LockByID(ctx, productID)
	if err != nil {
		return apperrors.Unexpected("could not load product", err)
	}
	if product == nil {
		return apperrors.NotFound("product not found")
	}
	return nil
}

func (s *ImageService) Upload(ctx context.Context, actor policy.Actor, productID string, up ImageUpload) (*models.ProductImage, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if up.Body == nil || up.Filename == "" {
		return nil, apperrors.ValidationField("image", "this field is required")
	}
	if !storage.AllowedImageExtension(up.Filename) {
		return nil, apperrors.ValidationField("image", "unsupported image type")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.Unexpected("could not load product", err)
	}
	if product == nil {
		return nil, apperrors.NotFound("product not found")
	}

	key := storage.ObjectKey(productID, up.Filename)
	url, err := s.store.Put(ctx, key, up.Body, up.ContentType)
	if err != nil {
		return nil, apperrors.Unexpected("could not store image", err)
	}

	image := &models.ProductImage{
		ProductID:  productID,
		ImageURL:   url,
		StorageKey: key,
		AltText:    up.AltText,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		images := s.imageRepo.WithTx(tx)
		existing, err := images.ListByProduct(ctx, productID)
		if err != nil {
			return apperrors.Unexpected("could not load images", err)
		}
		next, err := images.NextSortOrder(ctx, productID)
		if err != nil {
			return apperrors.Unexpected("could not compute image order", err)
		}
		image.SortOrder = next
		image.IsMain = up.IsMain || len(existing) == 0
		if image.IsMain {
			if err := images.ClearMain(ctx, productID); err != nil {
				return apperrors.Unexpected("could not update main image", err)
			}
		}
		if err := images.Create(ctx, image); err != nil {
			return apperrors.Unexpected("could not save image", err)
		}
		return nil
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("ImageService.Upload: failed to remove orphaned object %s: %v", key, delErr)
		}
		return nil, err
	}
	return image, nil
}

// SetMain clears the main flag on every other image of the product and sets it on imageID.
func (s *ImageService) SetMain(ctx context.Context, actor policy.Actor, productID, imageID string) (*models.ProductImage, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	var image *models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		images := s.imageRepo.WithTx(tx)
		found, err := images.FindByID(ctx, productID, imageID)
		if err != nil {
			return apperrors.Unexpected("could not load image", err)
		}
		if found == nil {
			return apperrors.NotFound("image not found")
		}
		if err := images.ClearMain(ctx, productID); err != nil {
			return apperrors.Unexpected("could not update main image", err)
		}
		if err := images.MarkMain(ctx, imageID); err != nil {
			return apperrors.Unexpected("could not update main image", err)
		}
		found.IsMain = true
		image = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// Delete removes an image; when it was the main one the lowest-ordered remaining image takes over.
func (s *ImageService) Delete(ctx context.Context, actor policy.Actor, productID, imageID string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}
	var removed *models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		images := s.imageRepo.WithTx(tx)
		found, err := images.FindByID(ctx, productID, imageID)
		if err != nil {
			return apperrors.Unexpected("could not load image", err)
		}
		if found == nil {
			return apperrors.NotFound("image not found")
		}
		if err := images.Delete(ctx, imageID); err != nil {
			return apperrors.Unexpected("could not delete image", err)
		}
		if found.IsMain {
			rest, err := images.ListByProduct(ctx, productID)
			if err != nil {
				return apperrors.Unexpected("could not load images", err)
			}
			if len(rest) > 0 {
				if err := images.MarkMain(ctx, rest[0].ID); err != nil {
					return apperrors.Unexpected("could not update main image", err)
				}
			}
		}
		removed = found
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, removed.StorageKey); err != nil {
		log.Printf("ImageService.Delete: failed to delete stored image %s: %v", removed.StorageKey, err)
	}
	return nil
}
