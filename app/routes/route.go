package routes

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/modaltela/modal-tela-api/app/handlers"
	"github.com/modaltela/modal-tela-api/app/middlewares"
	"github.com/modaltela/modal-tela-api/app/utils/sessions"
	"github.com/unrolled/render"
)

type Options struct {
	Sessions sessions.SessionStore
	Paging   handlers.Paging

	// CSRFKey enables CSRF protection for cookie-identified requests when set.
	CSRFKey      []byte
	SecureCookie bool

	// MediaURL and MediaRoot serve locally stored images when both are set.
	MediaURL  string
	MediaRoot string
}

func NewRouter(rnd *render.Render, svc *Services, opts Options) *mux.Router {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger)
	router.Use(middlewares.Authenticate(rnd, svc.Auth))
	if len(opts.CSRFKey) > 0 {
		router.Use(middlewares.CSRF(rnd, opts.CSRFKey, opts.SecureCookie))
	}

	home := handlers.NewHomeHandler(rnd)
	router.HandleFunc("/health", home.Health).Methods(http.MethodGet)

	if opts.MediaURL != "" && opts.MediaRoot != "" {
		prefix := "/" + strings.Trim(opts.MediaURL, "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(opts.MediaRoot))))
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/csrf", home.CSRFToken).Methods(http.MethodGet)

	registerAccountRoutes(api.PathPrefix("/accounts").Subrouter(), rnd, svc, opts)
	registerCartRoutes(api.PathPrefix("/cart").Subrouter(), rnd, svc, opts)
	registerProductRoutes(api.PathPrefix("/products").Subrouter(), rnd, svc, opts)
	registerOrderRoutes(api.PathPrefix("/orders").Subrouter(), rnd, svc, opts)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return router
}

func registerAccountRoutes(r *mux.Router, rnd *render.Render, svc *Services, opts Options) {
	auth := handlers.NewAuthHandler(rnd, svc.Auth)
	users := handlers.NewUserAdminHandler(rnd, svc.Users, opts.Paging)

	r.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/token/refresh", auth.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/logout", auth.Logout).Methods(http.MethodPost)

	private := r.NewRoute().Subrouter()
	private.Use(middlewares.RequireAuth(rnd))
	private.HandleFunc("/profile", auth.Profile).Methods(http.MethodGet)
	private.HandleFunc("/profile", auth.UpdateProfile).Methods(http.MethodPatch)
	private.HandleFunc("/change-password", auth.ChangePassword).Methods(http.MethodPatch)

	staff := r.PathPrefix("/admin").Subrouter()
	staff.Use(middlewares.RequireStaff(rnd))
	staff.HandleFunc("/users", users.List).Methods(http.MethodGet)

	super := r.PathPrefix("/admin").Subrouter()
	super.Use(middlewares.RequireSuperAdmin(rnd))
	super.HandleFunc("/create", users.Create).Methods(http.MethodPost)
	super.HandleFunc("/users/{id}", users.Update).Methods(http.MethodPatch)
	super.HandleFunc("/users/{id}", users.Delete).Methods(http.MethodDelete)
}

func registerCartRoutes(r *mux.Router, rnd *render.Render, svc *Services, opts Options) {
	cart := handlers.NewCartHandler(rnd, svc.Carts)

	r.Use(middlewares.EnsureGuestSession(rnd, opts.Sessions))
	r.HandleFunc("", cart.Get).Methods(http.MethodGet)
	r.HandleFunc("/", cart.Get).Methods(http.MethodGet)
	r.HandleFunc("/add", cart.Add).Methods(http.MethodPost)
	r.HandleFunc("/items/{id}", cart.UpdateItem).Methods(http.MethodPatch)
	r.HandleFunc("/items/{id}", cart.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/clear", cart.Clear).Methods(http.MethodDelete)
}

func registerProductRoutes(r *mux.Router, rnd *render.Render, svc *Services, opts Options) {
	products := handlers.NewProductHandler(rnd, svc.Catalog, svc.Variants, opts.Paging)
	admin := handlers.NewCatalogAdminHandler(rnd, svc.Catalog, svc.Images, svc.Variants, opts.Paging)

	// The admin subtree goes first so "admin" is never read as a product id.
	staff := r.PathPrefix("/admin").Subrouter()
	staff.Use(middlewares.RequireStaff(rnd))

	staff.HandleFunc("/categories", admin.ListCategories).Methods(http.MethodGet)
	staff.HandleFunc("/categories", admin.CreateCategory).Methods(http.MethodPost)
	staff.HandleFunc("/categories/{id}", admin.UpdateCategory).Methods(http.MethodPatch)
	staff.HandleFunc("/categories/{id}", admin.DeleteCategory).Methods(http.MethodDelete)

	staff.HandleFunc("/subcategories", admin.ListSubcategories).Methods(http.MethodGet)
	staff.HandleFunc("/subcategories", admin.CreateSubcategory).Methods(http.MethodPost)
	staff.HandleFunc("/subcategories/{id}", admin.UpdateSubcategory).Methods(http.MethodPatch)
	staff.HandleFunc("/subcategories/{id}", admin.DeleteSubcategory).Methods(http.MethodDelete)

	staff.HandleFunc("/brands", admin.ListBrands).Methods(http.MethodGet)
	staff.HandleFunc("/brands", admin.CreateBrand).Methods(http.MethodPost)
	staff.HandleFunc("/brands/{id}", admin.UpdateBrand).Methods(http.MethodPatch)
	staff.HandleFunc("/brands/{id}", admin.DeleteBrand).Methods(http.MethodDelete)

	staff.HandleFunc("/variants/{variantId}", admin.UpdateVariant).Methods(http.MethodPatch)
	staff.HandleFunc("/variants/{variantId}", admin.DeleteVariant).Methods(http.MethodDelete)

	staff.HandleFunc("", admin.ListProducts).Methods(http.MethodGet)
	staff.HandleFunc("", admin.CreateProduct).Methods(http.MethodPost)
	staff.HandleFunc("/{id}", admin.ProductDetail).Methods(http.MethodGet)
	staff.HandleFunc("/{id}", admin.UpdateProduct).Methods(http.MethodPatch)
	staff.HandleFunc("/{id}", admin.DeleteProduct).Methods(http.MethodDelete)
	staff.HandleFunc("/{id}/images", admin.UploadImage).Methods(http.MethodPost)
	staff.HandleFunc("/{id}/images/{imageId}", admin.DeleteImage).Methods(http.MethodDelete)
	staff.HandleFunc("/{id}/images/{imageId}/main", admin.SetMainImage).Methods(http.MethodPatch)
	staff.HandleFunc("/{id}/variants", admin.ListVariants).Methods(http.MethodGet)
	staff.HandleFunc("/{id}/variants", admin.CreateVariant).Methods(http.MethodPost)

	r.HandleFunc("", products.List).Methods(http.MethodGet)
	r.HandleFunc("/", products.List).Methods(http.MethodGet)
	r.HandleFunc("/featured", products.Featured).Methods(http.MethodGet)
	r.HandleFunc("/variant-choices", products.VariantChoices).Methods(http.MethodGet)
	r.HandleFunc("/categories", products.Categories).Methods(http.MethodGet)
	r.HandleFunc("/subcategories", products.Subcategories).Methods(http.MethodGet)
	r.HandleFunc("/brands", products.Brands).Methods(http.MethodGet)
	r.HandleFunc("/{id}", products.Detail).Methods(http.MethodGet)
}

func registerOrderRoutes(r *mux.Router, rnd *render.Render, svc *Services, opts Options) {
	orders := handlers.NewOrderHandler(rnd, svc.Orders, svc.Payments, opts.Paging)

	r.HandleFunc("/lookup", orders.Lookup).Methods(http.MethodPost)

	create := r.NewRoute().Subrouter()
	create.Use(middlewares.EnsureGuestSession(rnd, opts.Sessions))
	create.HandleFunc("", orders.Create).Methods(http.MethodPost)
	create.HandleFunc("/", orders.Create).Methods(http.MethodPost)

	staff := r.NewRoute().Subrouter()
	staff.Use(middlewares.RequireStaff(rnd))
	staff.HandleFunc("/{id}/admin-detail", orders.AdminDetail).Methods(http.MethodGet)
	staff.HandleFunc("/{id}/status", orders.UpdateStatus).Methods(http.MethodPatch)
	staff.HandleFunc("/{id}/reject", orders.Reject).Methods(http.MethodPost)
	staff.HandleFunc("/{id}/preparation", orders.UpdatePreparation).Methods(http.MethodPatch)

	super := r.NewRoute().Subrouter()
	super.Use(middlewares.RequireSuperAdmin(rnd))
	super.HandleFunc("/{id}/assign", orders.Assign).Methods(http.MethodPatch)

	guest := r.NewRoute().Subrouter()
	guest.Use(middlewares.GuestSession(opts.Sessions))
	guest.HandleFunc("", orders.List).Methods(http.MethodGet)
	guest.HandleFunc("/", orders.List).Methods(http.MethodGet)
	guest.HandleFunc("/{id}", orders.Detail).Methods(http.MethodGet)
	guest.HandleFunc("/{id}/payment", orders.Payment).Methods(http.MethodPost)
}
