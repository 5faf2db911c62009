package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/modaltela/modal-tela-api/app/db/testdb"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func createCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func createProduct(t *testing.T, db *gorm.DB, p models.Product) *models.Product {
	t.Helper()
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return &p
}

func TestCartGetOrCreateIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreateForSession(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreateForSession: %v", err)
	}
	second, err := repo.GetOrCreateForSession(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreateForSession: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same cart, got %s and %s", first.ID, second.ID)
	}

	userCart, err := repo.GetOrCreateForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateForUser: %v", err)
	}
	if userCart.ID == first.ID {
		t.Fatal("user cart must differ from the session cart")
	}

	var carts []models.Cart
	if err := db.Find(&carts).Error; err != nil {
		t.Fatalf("list carts: %v", err)
	}
	if len(carts) != 2 {
		t.Fatalf("expected 2 carts, got %d", len(carts))
	}
	for _, c := range carts {
		if (c.UserID == nil) == (c.SessionKey == nil) {
			t.Fatalf("cart %s must have exactly one owner: %+v", c.ID, c)
		}
	}
}

func TestCartItemFindByKeyDistinguishesVariant(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	items := NewCartItemRepository(db)

	category := createCategory(t, db, "Vestidos")
	product := createProduct(t, db, models.Product{Name: "Vestido", CategoryID: category.ID, Price: decimal.NewFromInt(100), IsActive: true})
	variant := &models.ProductVariant{ProductID: product.ID, Size: "M", Color: "rojo"}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	cart, err := NewCartRepository(db).GetOrCreateForSession(ctx, "s1")
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	other, err := NewCartRepository(db).GetOrCreateForSession(ctx, "s2")
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}

	if err := items.Create(ctx, &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := items.Create(ctx, &models.CartItem{CartID: cart.ID, ProductID: product.ID, VariantID: &variant.ID, Quantity: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}

	plain, err := items.FindByKey(ctx, cart.ID, product.ID, nil)
	if err != nil || plain == nil || plain.Quantity != 1 {
		t.Fatalf("FindByKey(no variant) = %+v, %v", plain, err)
	}
	withVariant, err := items.FindByKey(ctx, cart.ID, product.ID, &variant.ID)
	if err != nil || withVariant == nil || withVariant.Quantity != 4 {
		t.Fatalf("FindByKey(variant) = %+v, %v", withVariant, err)
	}
	missing, err := items.FindByKey(ctx, other.ID, product.ID, nil)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for another cart, got %+v, %v", missing, err)
	}
	if found, err := items.FindInCart(ctx, other.ID, plain.ID); err != nil || found != nil {
		t.Fatalf("item must not resolve through another cart, got %+v, %v", found, err)
	}
}

func TestProductListFiltersAndOrdering(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewProductRepository(db)

	shirts := createCategory(t, db, "Camisas")
	pants := createCategory(t, db, "Pantalones")

	base := time.Now().Add(-time.Hour)
	createProduct(t, db, models.Product{Name: "Camisa Lino", Description: "fresca", CategoryID: shirts.ID, Price: decimal.NewFromInt(30000), IsActive: true, IsFeatured: true, CreatedAt: base})
	createProduct(t, db, models.Product{Name: "Camisa Oxford", Description: "algodon", CategoryID: shirts.ID, Price: decimal.NewFromInt(45000), IsActive: true, CreatedAt: base.Add(time.Minute)})
	createProduct(t, db, models.Product{Name: "Jean Azul", Description: "denim LINO mezcla", CategoryID: pants.ID, Price: decimal.NewFromInt(60000), IsActive: true, CreatedAt: base.Add(2 * time.Minute)})
	createProduct(t, db, models.Product{Name: "Camisa Vieja", CategoryID: shirts.ID, Price: decimal.NewFromInt(10000), IsActive: false, CreatedAt: base.Add(3 * time.Minute)})

	active := true
	products, total, err := repo.List(ctx, ProductFilter{Active: &active})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(products) != 3 {
		t.Fatalf("expected 3 active products, got total=%d len=%d", total, len(products))
	}
	if products[0].Name != "Jean Azul" {
		t.Fatalf("default ordering should be newest first, got %s", products[0].Name)
	}

	products, _, err = repo.List(ctx, ProductFilter{Active: &active, CategoryID: shirts.ID, Ordering: "price"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 || products[0].Name != "Camisa Lino" || products[1].Name != "Camisa Oxford" {
		t.Fatalf("unexpected category listing %v", names(products))
	}

	products, _, err = repo.List(ctx, ProductFilter{Active: &active, Search: "lino"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("search should match name and description case-insensitively, got %v", names(products))
	}

	featured := true
	products, _, err = repo.List(ctx, ProductFilter{Active: &active, Featured: &featured})
	if err != nil || len(products) != 1 || products[0].Name != "Camisa Lino" {
		t.Fatalf("featured filter: %v %v", names(products), err)
	}

	products, total, err = repo.List(ctx, ProductFilter{Ordering: "name", Page: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 || len(products) != 1 || products[0].Name != "Jean Azul" {
		t.Fatalf("pagination: total=%d page=%v", total, names(products))
	}
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestNextSortOrder(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewProductImageRepository(db)

	category := createCategory(t, db, "Blusas")
	p1 := createProduct(t, db, models.Product{Name: "Blusa", CategoryID: category.ID, Price: decimal.NewFromInt(1)})
	p2 := createProduct(t, db, models.Product{Name: "Blusa 2", CategoryID: category.ID, Price: decimal.NewFromInt(1)})

	next, err := repo.NextSortOrder(ctx, p1.ID)
	if err != nil || next != 0 {
		t.Fatalf("NextSortOrder on empty product = %d, %v", next, err)
	}
	for _, order := range []int{0, 1, 4} {
		if err := repo.Create(ctx, &models.ProductImage{ProductID: p1.ID, ImageURL: "u", StorageKey: "k", SortOrder: order}); err != nil {
			t.Fatalf("create image: %v", err)
		}
	}
	if err := repo.Create(ctx, &models.ProductImage{ProductID: p2.ID, ImageURL: "u", StorageKey: "k", SortOrder: 9}); err != nil {
		t.Fatalf("create image: %v", err)
	}
	next, err = repo.NextSortOrder(ctx, p1.ID)
	if err != nil || next != 5 {
		t.Fatalf("NextSortOrder = %d, %v, want 5", next, err)
	}
}

func TestOrderLookupIsCaseInsensitive(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewOrderRepository(db)

	order := &models.Order{
		OrderNumber:  "AB12CD34",
		BillingEmail: "Ana@Example.com",
		Subtotal:     decimal.NewFromInt(1),
		ShippingCost: decimal.Zero,
		Tax:          decimal.Zero,
		Total:        decimal.NewFromInt(1),
	}
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.FindByNumberAndEmail(ctx, "ab12cd34", "ana@EXAMPLE.com")
	if err != nil || found == nil || found.ID != order.ID {
		t.Fatalf("lookup = %+v, %v", found, err)
	}
	missing, err := repo.FindByNumberAndEmail(ctx, "AB12CD34", "other@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected no match, got %+v, %v", missing, err)
	}

	exists, err := repo.ExistsByNumber(ctx, "AB12CD34")
	if err != nil || !exists {
		t.Fatalf("ExistsByNumber = %v, %v", exists, err)
	}
}

func TestGuestPurgeKeepsGuestsWithOrders(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	guests := NewGuestUserRepository(db)
	now := time.Now()

	expiredWithOrder := &models.GuestUser{SessionKey: "s1", Email: "a@x.com", ExpiresAt: now.Add(-time.Hour)}
	expiredWithout := &models.GuestUser{SessionKey: "s2", Email: "b@x.com", ExpiresAt: now.Add(-time.Hour)}
	fresh := &models.GuestUser{SessionKey: "s3", Email: "c@x.com", ExpiresAt: now.Add(time.Hour)}
	for _, g := range []*models.GuestUser{expiredWithOrder, expiredWithout, fresh} {
		if err := guests.Create(ctx, g); err != nil {
			t.Fatalf("create guest: %v", err)
		}
	}
	order := &models.Order{OrderNumber: "ZZ000001", GuestUserID: &expiredWithOrder.ID, BillingEmail: "a@x.com"}
	if err := NewOrderRepository(db).Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	deleted, err := guests.DeleteExpiredWithoutOrders(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredWithoutOrders: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 guest purged, got %d", deleted)
	}
	if g, _ := guests.FindBySessionKey(ctx, "s2"); g != nil {
		t.Fatal("expired guest without orders should be gone")
	}
	if g, _ := guests.FindBySessionKey(ctx, "s1"); g == nil {
		t.Fatal("guest with orders must be kept")
	}
}

func TestDeleteStaleSessionCarts(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	carts := NewCartRepository(db)

	stale, err := carts.GetOrCreateForSession(ctx, "old")
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if _, err := carts.GetOrCreateForSession(ctx, "new"); err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if _, err := carts.GetOrCreateForUser(ctx, "u1"); err != nil {
		t.Fatalf("create cart: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := db.Model(&models.Cart{}).Where("id = ?", stale.ID).UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("age cart: %v", err)
	}
	if err := db.Model(&models.Cart{}).Where("user_id = ?", "u1").UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("age cart: %v", err)
	}

	deleted, err := carts.DeleteStaleSessionCarts(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteStaleSessionCarts: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 stale cart deleted, got %d", deleted)
	}
	if c, _ := carts.FindForUser(ctx, "u1"); c == nil {
		t.Fatal("user carts are never purged")
	}
}
