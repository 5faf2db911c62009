package services

import (
	"context"
	"testing"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestCatalogService_RequiresStaff(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createUser(t, "c@example.com", models.RoleCustomer)

	_, err := env.catalog.CreateCategory(context.Background(), staffActor(customer), CategoryInput{Name: strPtr("Pantalones")})
	if !apperrors.Is(err, apperrors.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestCatalogService_CreateCategoryDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))

	if _, err := env.catalog.CreateCategory(ctx, admin, CategoryInput{Name: strPtr("Pantalones")}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err := env.catalog.CreateCategory(ctx, admin, CategoryInput{Name: strPtr("Pantalones")})
	if !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCatalogService_DeleteCategoryWithProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	err := env.catalog.DeleteCategory(ctx, admin, cat.ID)
	if !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	categories, err := env.catalog.ListCategories(ctx, true)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected the category to survive, got %d categories", len(categories))
	}
}

func TestCatalogService_DeleteEmptyCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Accesorios")
	if _, err := env.catalog.CreateSubcategory(ctx, admin, SubcategoryInput{CategoryID: &cat.ID, Name: strPtr("Gorras")}); err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}

	if err := env.catalog.DeleteCategory(ctx, admin, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	categories, err := env.catalog.ListCategories(ctx, true)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected no categories, got %d", len(categories))
	}
	subs, err := env.catalog.ListSubcategories(ctx, cat.ID, true)
	if err != nil {
		t.Fatalf("ListSubcategories: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected subcategories to be removed, got %d", len(subs))
	}
}

func TestCatalogService_CreateProductSubcategoryMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	shirts := env.createCategory(t, "Camisas")
	pants := env.createCategory(t, "Pantalones")
	sub, err := env.catalog.CreateSubcategory(ctx, admin, SubcategoryInput{CategoryID: &pants.ID, Name: strPtr("Jeans")})
	if err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}

	price := decimal.NewFromInt(30000)
	_, err = env.catalog.CreateProduct(ctx, admin, ProductInput{
		Name:          strPtr("Camisa"),
		CategoryID:    &shirts.ID,
		SubcategoryID: &sub.ID,
		Price:         &price,
	})
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := apperrors.PublicFields(err)["subcategory_id"]; !ok {
		t.Fatalf("expected subcategory_id field error, got %v", apperrors.PublicFields(err))
	}
}

func TestCatalogService_CreateProductRoundsPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")

	price := decimal.RequireFromString("19999.999")
	product, err := env.catalog.CreateProduct(ctx, admin, ProductInput{Name: strPtr("Camisa"), CategoryID: &cat.ID, Price: &price})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if !product.Price.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected price 20000, got %s", product.Price)
	}
	if !product.IsActive {
		t.Fatalf("expected new products to be active by default")
	}

	negative := decimal.NewFromInt(-1)
	_, err = env.catalog.CreateProduct(ctx, admin, ProductInput{Name: strPtr("Otra"), CategoryID: &cat.ID, Price: &negative})
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestCatalogService_InactiveProductHiddenFromPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)
	env.createProduct(t, cat.ID, "Camisa Lino", 40000)

	inactive := false
	if _, err := env.catalog.UpdateProduct(ctx, admin, product.ID, ProductInput{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	if _, err := env.catalog.GetProduct(ctx, guestActor(""), product.ID, false); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found for public caller, got %v", err)
	}
	if _, err := env.catalog.GetProduct(ctx, admin, product.ID, true); err != nil {
		t.Fatalf("expected staff to see inactive product, got %v", err)
	}

	public, total, err := env.catalog.ListProducts(ctx, guestActor(""), false, repositories.ProductFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if total != 1 || len(public) != 1 {
		t.Fatalf("expected 1 public product, got total=%d len=%d", total, len(public))
	}

	_, _, err = env.catalog.ListProducts(ctx, guestActor(""), true, repositories.ProductFilter{})
	if !apperrors.Is(err, apperrors.KindAuthorization) {
		t.Fatalf("expected authorization error for admin listing, got %v", err)
	}
}

func TestCatalogService_ListProductsUnknownOrdering(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.catalog.ListProducts(context.Background(), guestActor(""), false, repositories.ProductFilter{Ordering: "-stock"})
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCatalogService_DeleteSubcategoryDetachesProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Pantalones")
	sub, err := env.catalog.CreateSubcategory(ctx, admin, SubcategoryInput{CategoryID: &cat.ID, Name: strPtr("Jeans")})
	if err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}
	price := decimal.NewFromInt(80000)
	product, err := env.catalog.CreateProduct(ctx, admin, ProductInput{
		Name:          strPtr("Jean Slim"),
		CategoryID:    &cat.ID,
		SubcategoryID: &sub.ID,
		Price:         &price,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if err := env.catalog.DeleteSubcategory(ctx, admin, sub.ID); err != nil {
		t.Fatalf("DeleteSubcategory: %v", err)
	}
	reloaded, err := env.catalog.GetProduct(ctx, admin, product.ID, true)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if reloaded.SubcategoryID != nil {
		t.Fatalf("expected subcategory reference to be cleared, got %v", *reloaded.SubcategoryID)
	}
}

func TestCatalogService_DeleteProductOnOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(env.createUser(t, "admin@example.com", models.RoleAdmin))
	cat := env.createCategory(t, "Camisas")
	product := env.createProduct(t, cat.ID, "Camisa Oxford", 50000)

	if _, err := env.orders.Create(ctx, guestActor("buyer"), sampleOrderInput(OrderLineInput{ProductID: product.ID, Quantity: 1})); err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if err := env.catalog.DeleteProduct(ctx, admin, product.ID); !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	unused := env.createProduct(t, cat.ID, "Camisa Nueva", 30000)
	if err := env.catalog.DeleteProduct(ctx, admin, unused.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := env.catalog.GetProduct(ctx, admin, unused.ID, true); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected deleted product to be gone, got %v", err)
	}
}
