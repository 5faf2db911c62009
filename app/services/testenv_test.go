package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/modaltela/modal-tela-api/app/db/testdb"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/utils/format"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return "https://cdn.test/" + key, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testEnv struct {
	db    *gorm.DB
	store *memoryStore

	users     repositories.UserRepositoryImpl
	products  repositories.ProductRepositoryImpl
	orderRepo repositories.OrderRepository
	history   repositories.OrderStatusHistoryRepository

	guests   *GuestService
	carts    *CartService
	catalog  *CatalogService
	images   *ImageService
	variants *VariantService
	orders   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.Open(t)
	money := format.NewMoneyFormatter("$")
	store := newMemoryStore()

	userRepo := repositories.NewUserRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	cartItemRepo := repositories.NewCartItemRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	subcategoryRepo := repositories.NewSubcategoryRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	productRepo := repositories.NewProductRepository(db)
	imageRepo := repositories.NewProductImageRepository(db)
	variantRepo := repositories.NewProductVariantRepository(db)
	guestRepo := repositories.NewGuestUserRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	orderItemRepo := repositories.NewOrderItemRepository(db)
	historyRepo := repositories.NewOrderStatusHistoryRepository(db)

	guests := NewGuestService(db, guestRepo, cartRepo, 24*time.Hour)
	carts := NewCartService(db, cartRepo, cartItemRepo, productRepo, variantRepo, money)

	return &testEnv{
		db:        db,
		store:     store,
		users:     userRepo,
		products:  productRepo,
		orderRepo: orderRepo,
		history:   historyRepo,
		guests:    guests,
		carts:     carts,
		catalog:   NewCatalogService(db, categoryRepo, subcategoryRepo, brandRepo, productRepo, imageRepo, store),
		images:    NewImageService(db, productRepo, imageRepo, store),
		variants:  NewVariantService(db, productRepo, variantRepo),
		orders: NewOrderService(db, orderRepo, orderItemRepo, historyRepo, productRepo, variantRepo, userRepo,
			guests, carts, NewAssigneeResolver(userRepo, ""), money),
	}
}

func (e *testEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  role,
		Password:  "password123",
		Role:      role,
		IsActive:  true,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, IsActive: true}
	if err := e.db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func (e *testEnv) createProduct(t *testing.T, categoryID, name string, price int64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		CategoryID: categoryID,
		Price:      decimal.NewFromInt(price),
		Stock:      10,
		IsActive:   true,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (e *testEnv) createVariant(t *testing.T, productID, size, color string, adjustment int64) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID:       productID,
		Size:            size,
		Color:           color,
		Stock:           5,
		PriceAdjustment: decimal.NewFromInt(adjustment),
	}
	if err := e.db.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

func staffActor(u *models.User) policy.Actor {
	return policy.Actor{UserID: u.ID, Role: u.Role}
}

func guestActor(sessionKey string) policy.Actor {
	return policy.Actor{SessionKey: sessionKey}
}

func sampleOrderInput(lines ...OrderLineInput) CreateOrderInput {
	return CreateOrderInput{
		Billing: BillingInput{
			FirstName:  "Ana",
			LastName:   "Gomez",
			Email:      "Ana.Gomez@Example.com",
			Phone:      "3001234567",
			Address:    "Calle 1 # 2-3",
			City:       "Bogota",
			Department: "Cundinamarca",
			PostalCode: "110111",
		},
		Shipping: ShippingInput{
			FirstName:  "Ana",
			LastName:   "Gomez",
			Address:    "Calle 1 # 2-3",
			City:       "Bogota",
			Department: "Cundinamarca",
			PostalCode: "110111",
		},
		Items: lines,
	}
}

func (e *testEnv) historyCount(t *testing.T, orderID string) int {
	t.Helper()
	entries, err := e.history.ListByOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return len(entries)
}
