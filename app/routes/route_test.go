package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/modaltela/modal-tela-api/app/db/testdb"
	"github.com/modaltela/modal-tela-api/app/handlers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/utils/renderer"
	"github.com/modaltela/modal-tela-api/app/utils/sessions"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *memoryStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return "https://cdn.test/" + key, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	return nil
}

type apiTest struct {
	t      *testing.T
	db     *gorm.DB
	router *mux.Router
	store  *memoryStore
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	db := testdb.Open(t)
	store := &memoryStore{}

	svc := NewServices(db, ServiceConfig{
		JWTSecret:       "route-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		GuestTTL:        24 * time.Hour,
		CurrencySymbol:  "$",
		Images:          store,
	})
	sessionStore := sessions.NewCookieSessionStore(time.Hour, false,
		[]byte(strings.Repeat("a", 32)), []byte(strings.Repeat("b", 32)))

	router := NewRouter(renderer.New(false), svc, Options{
		Sessions: sessionStore,
		Paging:   handlers.Paging{DefaultSize: 20, MaxSize: 100},
	})
	return &apiTest{t: t, db: db, router: router, store: store}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	cookies []*http.Cookie
}

func (a *apiTest) do(req request) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(b)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, r)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func (a *apiTest) createUser(email, role string) *models.User {
	a.t.Helper()
	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
		Role:      role,
		IsActive:  true,
	}
	if err := repositories.NewUserRepository(a.db).Create(context.Background(), user); err != nil {
		a.t.Fatalf("create user: %v", err)
	}
	return user
}

func (a *apiTest) login(email string) string {
	a.t.Helper()
	rec := a.do(request{method: http.MethodPost, path: "/api/accounts/login", body: map[string]string{
		"email":    email,
		"password": "password123",
	}})
	expectStatus(a.t, rec, http.StatusOK)
	var out struct {
		Access string `json:"access"`
	}
	decode(a.t, rec, &out)
	if out.Access == "" {
		a.t.Fatalf("login returned no access token: %s", rec.Body.String())
	}
	return out.Access
}

func (a *apiTest) createProduct(name string, price int64, active bool) *models.Product {
	a.t.Helper()
	category := &models.Category{Name: "Cat " + name, IsActive: true}
	if err := a.db.Create(category).Error; err != nil {
		a.t.Fatalf("create category: %v", err)
	}
	product := &models.Product{
		Name:       name,
		CategoryID: category.ID,
		Price:      decimal.NewFromInt(price),
		Stock:      10,
		IsActive:   active,
	}
	if err := a.db.Create(product).Error; err != nil {
		a.t.Fatalf("create product: %v", err)
	}
	return product
}

func TestHealth(t *testing.T) {
	api := newAPITest(t)

	rec := api.do(request{method: http.MethodGet, path: "/health"})
	expectStatus(t, rec, http.StatusOK)

	var out map[string]string
	decode(t, rec, &out)
	if out["status"] != "ok" {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	api := newAPITest(t)

	rec := api.do(request{method: http.MethodGet, path: "/api/nope"})
	expectStatus(t, rec, http.StatusNotFound)

	var out map[string]string
	decode(t, rec, &out)
	if out["error"] == "" {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
}

func TestRegisterLoginProfile(t *testing.T) {
	api := newAPITest(t)

	rec := api.do(request{method: http.MethodPost, path: "/api/accounts/register", body: map[string]string{
		"email":            "Nueva@Example.com",
		"first_name":       "Nueva",
		"last_name":        "Cliente",
		"password":         "password123",
		"password_confirm": "password123",
	}})
	expectStatus(t, rec, http.StatusCreated)

	token := api.login("nueva@example.com")

	rec = api.do(request{method: http.MethodGet, path: "/api/accounts/profile", token: token})
	expectStatus(t, rec, http.StatusOK)
	var profile models.User
	decode(t, rec, &profile)
	if profile.Email != "nueva@example.com" || profile.Role != models.RoleCustomer {
		t.Fatalf("unexpected profile %+v", profile)
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/accounts/profile"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = api.do(request{method: http.MethodGet, path: "/api/accounts/profile", token: "not-a-token"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestRegisterValidationErrors(t *testing.T) {
	api := newAPITest(t)

	rec := api.do(request{method: http.MethodPost, path: "/api/accounts/register", body: map[string]string{
		"email": "not-an-email",
	}})
	expectStatus(t, rec, http.StatusBadRequest)

	var out struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &out)
	if out.Errors["email"] == "" || out.Errors["password"] == "" {
		t.Fatalf("expected field errors, got %v", out.Errors)
	}
}

func TestMalformedJSON(t *testing.T) {
	api := newAPITest(t)

	r := httptest.NewRequest(http.MethodPost, "/api/accounts/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, r)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestRoleGuards(t *testing.T) {
	api := newAPITest(t)
	api.createUser("cliente@example.com", models.RoleCustomer)
	api.createUser("admin@example.com", models.RoleAdmin)
	api.createUser("root@example.com", models.RoleSuperAdmin)

	customer := api.login("cliente@example.com")
	admin := api.login("admin@example.com")
	root := api.login("root@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"anonymous admin products", http.MethodGet, "/api/products/admin", "", nil, http.StatusUnauthorized},
		{"customer admin products", http.MethodGet, "/api/products/admin", customer, nil, http.StatusForbidden},
		{"admin admin products", http.MethodGet, "/api/products/admin", admin, nil, http.StatusOK},
		{"customer user list", http.MethodGet, "/api/accounts/admin/users", customer, nil, http.StatusForbidden},
		{"admin user list", http.MethodGet, "/api/accounts/admin/users", admin, nil, http.StatusOK},
		{"admin creates staff", http.MethodPost, "/api/accounts/admin/create", admin, map[string]string{}, http.StatusForbidden},
		{"admin assigns order", http.MethodPatch, "/api/orders/x/assign", admin, map[string]string{"admin_id": "y"}, http.StatusForbidden},
		{"root assigns missing order", http.MethodPatch, "/api/orders/x/assign", root, map[string]string{"admin_id": "y"}, http.StatusNotFound},
		{"customer status update", http.MethodPatch, "/api/orders/x/status", customer, map[string]string{"status": "shipped"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(request{method: tc.method, path: tc.path, token: tc.token, body: tc.body})
			expectStatus(t, rec, tc.want)
		})
	}
}

func TestRootCreatesStaff(t *testing.T) {
	api := newAPITest(t)
	api.createUser("root@example.com", models.RoleSuperAdmin)
	root := api.login("root@example.com")

	rec := api.do(request{method: http.MethodPost, path: "/api/accounts/admin/create", token: root, body: map[string]string{
		"email":      "staff@example.com",
		"first_name": "Staff",
		"last_name":  "Member",
		"password":   "password123",
	}})
	expectStatus(t, rec, http.StatusCreated)

	var user models.User
	decode(t, rec, &user)
	if user.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %q", user.Role)
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/accounts/admin/users?role=admin", token: root})
	expectStatus(t, rec, http.StatusOK)
	var page struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &page)
	if page.Count != 1 {
		t.Fatalf("expected 1 admin, got %d", page.Count)
	}
}

func TestPublicCatalog(t *testing.T) {
	api := newAPITest(t)
	visible := api.createProduct("Camisa", 50000, true)
	hidden := api.createProduct("Borrador", 10000, false)

	rec := api.do(request{method: http.MethodGet, path: "/api/products"})
	expectStatus(t, rec, http.StatusOK)
	var page struct {
		Count   int64            `json:"count"`
		Results []models.Product `json:"results"`
	}
	decode(t, rec, &page)
	if page.Count != 1 || len(page.Results) != 1 || page.Results[0].ID != visible.ID {
		t.Fatalf("unexpected product page %+v", page)
	}

	expectStatus(t, api.do(request{method: http.MethodGet, path: "/api/products/" + visible.ID}), http.StatusOK)
	expectStatus(t, api.do(request{method: http.MethodGet, path: "/api/products/" + hidden.ID}), http.StatusNotFound)

	rec = api.do(request{method: http.MethodGet, path: "/api/products/variant-choices"})
	expectStatus(t, rec, http.StatusOK)
	var choices struct {
		Sizes  []string `json:"sizes"`
		Colors []string `json:"colors"`
	}
	decode(t, rec, &choices)
	if len(choices.Sizes) == 0 || len(choices.Colors) == 0 {
		t.Fatalf("expected variant choices, got %+v", choices)
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/products/featured"})
	expectStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty featured list, got %s", rec.Body.String())
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/products?ordering=bogus"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestGuestCartToOrder(t *testing.T) {
	api := newAPITest(t)
	product := api.createProduct("Falda", 10000, true)

	rec := api.do(request{method: http.MethodPost, path: "/api/cart/add", body: map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}})
	expectStatus(t, rec, http.StatusCreated)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a guest session cookie")
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/cart", cookies: cookies})
	expectStatus(t, rec, http.StatusOK)
	var cart struct {
		TotalItems int `json:"total_items"`
	}
	decode(t, rec, &cart)
	if cart.TotalItems != 2 {
		t.Fatalf("expected 2 items in cart, got %d", cart.TotalItems)
	}

	address := map[string]string{
		"first_name":  "Ana",
		"last_name":   "Gomez",
		"email":       "Ana@Example.com",
		"phone":       "3001234567",
		"address":     "Calle 1",
		"city":        "Bogota",
		"department":  "Cundinamarca",
		"postal_code": "110111",
	}
	rec = api.do(request{method: http.MethodPost, path: "/api/orders", cookies: cookies, body: map[string]interface{}{
		"billing":    address,
		"shipping":   address,
		"items":      []map[string]interface{}{{"product_id": product.ID, "quantity": 2, "price": "1"}},
		"clear_cart": true,
	}})
	expectStatus(t, rec, http.StatusCreated)
	var order struct {
		ID          string          `json:"id"`
		OrderNumber string          `json:"order_number"`
		Status      string          `json:"status"`
		Total       decimal.Decimal `json:"total"`
	}
	decode(t, rec, &order)
	if order.Status != models.OrderStatusPending || !order.Total.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("unexpected order %+v", order)
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/cart", cookies: cookies})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &cart)
	if cart.TotalItems != 0 {
		t.Fatalf("expected cart to be cleared, got %d items", cart.TotalItems)
	}

	rec = api.do(request{method: http.MethodGet, path: "/api/orders", cookies: cookies})
	expectStatus(t, rec, http.StatusOK)
	var page struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &page)
	if page.Count != 1 {
		t.Fatalf("expected 1 guest order, got %d", page.Count)
	}

	expectStatus(t, api.do(request{method: http.MethodGet, path: "/api/orders/" + order.ID, cookies: cookies}), http.StatusOK)
	expectStatus(t, api.do(request{method: http.MethodGet, path: "/api/orders/" + order.ID}), http.StatusNotFound)

	rec = api.do(request{method: http.MethodPost, path: "/api/orders/lookup", body: map[string]string{
		"order_number": strings.ToLower(order.OrderNumber),
		"email":        "ana@example.com",
	}})
	expectStatus(t, rec, http.StatusOK)

	rec = api.do(request{method: http.MethodPost, path: "/api/orders/" + order.ID + "/payment", cookies: cookies})
	expectStatus(t, rec, http.StatusConflict)
}

func TestAdminImageUpload(t *testing.T) {
	api := newAPITest(t)
	api.createUser("admin@example.com", models.RoleAdmin)
	admin := api.login("admin@example.com")
	product := api.createProduct("Chaqueta", 90000, true)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "front.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("fake-jpeg"))
	mw.WriteField("alt_text", "Frente")
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/products/admin/"+product.ID+"/images", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, r)
	expectStatus(t, rec, http.StatusCreated)

	var image models.ProductImage
	decode(t, rec, &image)
	if !image.IsMain || !strings.HasPrefix(image.ImageURL, "https://cdn.test/products/"+product.ID+"/") {
		t.Fatalf("unexpected image %+v", image)
	}
	if len(api.store.keys) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(api.store.keys))
	}

	rec = api.do(request{method: http.MethodPost, path: "/api/products/admin/" + product.ID + "/images", token: admin, body: map[string]string{}})
	expectStatus(t, rec, http.StatusBadRequest)
}
