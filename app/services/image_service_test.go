package services

import (
	"context"
	"strings"
	"testing"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
)

func upload(name string, main bool) ImageUpload {
	return ImageUpload{Filename: name, ContentType: "image/png", Body: strings.NewReader("png-bytes"), IsMain: main}
}

func (e *testEnv) productImages(t *testing.T, productID string) []models.ProductImage {
	t.Helper()
	var images []models.ProductImage
	if err := e.db.Where("product_id = ?", productID).Order("sort_order ASC").Find(&images).Error; err != nil {
		t.Fatalf("load images: %v", err)
	}
	return images
}

func mainCount(images []models.ProductImage) int {
	n := 0
	for _, img := range images {
		if img.IsMain {
			n++
		}
	}
	return n
}

func TestImageService_UploadOrdersAndMain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	first, err := env.images.Upload(ctx, admin, product.ID, upload("front.png", false))
	if err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	if !first.IsMain || first.SortOrder != 0 {
		t.Fatalf("expected first image to be main with order 0, got main=%v order=%d", first.IsMain, first.SortOrder)
	}
	second, err := env.images.Upload(ctx, admin, product.ID, upload("back.png", false))
	if err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if second.IsMain || second.SortOrder != 1 {
		t.Fatalf("expected second image not main with order 1, got main=%v order=%d", second.IsMain, second.SortOrder)
	}
	if !strings.HasPrefix(second.ImageURL, "https://cdn.test/products/"+product.ID+"/") {
		t.Fatalf("unexpected image url %q", second.ImageURL)
	}
	if env.store.count() != 2 {
		t.Fatalf("expected 2 stored objects, got %d", env.store.count())
	}

	if _, err := env.images.SetMain(ctx, admin, product.ID, second.ID); err != nil {
		t.Fatalf("SetMain: %v", err)
	}
	images := env.productImages(t, product.ID)
	if mainCount(images) != 1 || !images[1].IsMain {
		t.Fatalf("expected only the second image to be main, got %+v", images)
	}
}

func TestImageService_UploadAsMainReplacesMain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	if _, err := env.images.Upload(ctx, admin, product.ID, upload("a.jpg", false)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := env.images.Upload(ctx, admin, product.ID, upload("b.webp", true)); err != nil {
		t.Fatalf("Upload main: %v", err)
	}
	images := env.productImages(t, product.ID)
	if mainCount(images) != 1 || !images[1].IsMain {
		t.Fatalf("expected the new image to be the only main one, got %+v", images)
	}
}

func TestImageService_DeleteMainPromotesNext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	first, err := env.images.Upload(ctx, admin, product.ID, upload("a.png", false))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	second, err := env.images.Upload(ctx, admin, product.ID, upload("b.png", false))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := env.images.Delete(ctx, admin, product.ID, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	images := env.productImages(t, product.ID)
	if len(images) != 1 || images[0].ID != second.ID || !images[0].IsMain {
		t.Fatalf("expected remaining image to become main, got %+v", images)
	}
	if env.store.count() != 1 {
		t.Fatalf("expected stored object to be removed, got %d objects", env.store.count())
	}
}

func TestImageService_UploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	_, err := env.images.Upload(ctx, admin, product.ID, upload("notes.txt", false))
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if env.store.count() != 0 {
		t.Fatalf("expected nothing stored, got %d objects", env.store.count())
	}
}

func TestImageService_SetMainUnknownImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	_, err := env.images.SetMain(ctx, admin, product.ID, "missing")
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
