package routes

import (
	"time"

	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/modaltela/modal-tela-api/app/storage"
	"github.com/modaltela/modal-tela-api/app/utils/format"
	"gorm.io/gorm"
)

// ServiceConfig carries the settings and external adapters the services need.
// TokenStore and Gateway may be nil.
type ServiceConfig struct {
	JWTSecret            string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	GuestTTL             time.Duration
	DefaultAssigneeEmail string
	CurrencySymbol       string

	Images     storage.ImageStore
	TokenStore services.TokenStore
	Gateway    services.PaymentGateway
}

type Services struct {
	Auth     *services.AuthService
	Users    *services.UserAdminService
	Guests   *services.GuestService
	Carts    *services.CartService
	Catalog  *services.CatalogService
	Images   *services.ImageService
	Variants *services.VariantService
	Orders   *services.OrderService
	Payments *services.PaymentService
}

func NewServices(db *gorm.DB, cfg ServiceConfig) *Services {
	money := format.NewMoneyFormatter(cfg.CurrencySymbol)

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

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.TokenStore)
	guests := services.NewGuestService(db, guestRepo, cartRepo, cfg.GuestTTL)
	carts := services.NewCartService(db, cartRepo, cartItemRepo, productRepo, variantRepo, money)

	return &Services{
		Auth:     services.NewAuthService(userRepo, tokens),
		Users:    services.NewUserAdminService(userRepo),
		Guests:   guests,
		Carts:    carts,
		Catalog:  services.NewCatalogService(db, categoryRepo, subcategoryRepo, brandRepo, productRepo, imageRepo, cfg.Images),
		Images:   services.NewImageService(db, productRepo, imageRepo, cfg.Images),
		Variants: services.NewVariantService(db, productRepo, variantRepo),
		Orders: services.NewOrderService(db, orderRepo, orderItemRepo, historyRepo, productRepo, variantRepo, userRepo,
			guests, carts, services.NewAssigneeResolver(userRepo, cfg.DefaultAssigneeEmail), money),
		Payments: services.NewPaymentService(orderRepo, cfg.Gateway),
	}
}
