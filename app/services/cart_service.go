package services

import (
	"context"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/utils/format"
	"gorm.io/gorm"
)

type AddCartItemInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity" validate:"min=1"`
}

type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type CartService struct {
	db           *gorm.DB
	cartRepo     repositories.CartRepositoryImpl
	cartItemRepo repositories.CartItemRepositoryImpl
	productRepo  repositories.ProductRepositoryImpl
	variantRepo  repositories.ProductVariantRepository
	money        *format.MoneyFormatter
}

func NewCartService(
	db *gorm.DB,
	cartRepo repositories.CartRepositoryImpl,
	cartItemRepo repositories.CartItemRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	variantRepo repositories.ProductVariantRepository,
	money *format.MoneyFormatter,
) *CartService {
	return &CartService{
		db:           db,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		money:        money,
	}
}

// resolveCart returns the single cart of the actor, creating it on first use.
func (s *CartService) resolveCart(ctx context.Context, actor policy.Actor) (*models.Cart, error) {
	var (
		cart *models.Cart
		err  error
	)
	switch {
	case actor.IsAuthenticated():
		cart, err = s.cartRepo.GetOrCreateForUser(ctx, actor.UserID)
	case actor.SessionKey != "":
		cart, err = s.cartRepo.GetOrCreateForSession(ctx, actor.SessionKey)
	default:
		return nil, apperrors.Authentication("a session or login is required")
	}
	if err != nil {
		return nil, apperrors.Unexpected("could not load cart", err)
	}
	return cart, nil
}

func (s *CartService) findCart(ctx context.Context, actor policy.Actor) (*models.Cart, error) {
	var (
		cart *models.Cart
		err  error
	)
	switch {
	case actor.IsAuthenticated():
		cart, err = s.cartRepo.FindForUser(ctx, actor.UserID)
	case actor.SessionKey != "":
		cart, err = s.cartRepo.FindForSession(ctx, actor.SessionKey)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Unexpected("could not load cart", err)
	}
	return cart, nil
}

func (s *CartService) view(ctx context.Context, cartID string) (*CartView, error) {
	cart, err := s.cartRepo.GetCartWithItems(ctx, cartID)
	if err != nil {
		return nil, apperrors.Unexpected("could not load cart", err)
	}
	if cart == nil {
		return nil, apperrors.NotFound("cart not found")
	}
	return newCartView(cart, s.money), nil
}

func (s *CartService) GetCart(ctx context.Context, actor policy.Actor) (*CartView, error) {
	cart, err := s.resolveCart(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

// AddItem increments the quantity of an existing (product, variant) line or creates one.
func (s *CartService) AddItem(ctx context.Context, actor policy.Actor, in AddCartItemInput) (*CartView, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if in.VariantID != nil && *in.VariantID == "" {
		in.VariantID = nil
	}

	cart, err := s.resolveCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.cartRepo.WithTx(tx).LockByID(ctx, cart.ID); err != nil {
			return apperrors.Unexpected("could not lock cart", err)
		}

		product, err := s.productRepo.WithTx(tx).GetByID(ctx, in.ProductID)
		if err != nil {
			return apperrors.Unexpected("could not load product", err)
		}
		if product == nil || !product.IsActive {
			return apperrors.NotFound("product not found")
		}
		if in.VariantID != nil {
			variant, err := s.variantRepo.WithTx(tx).FindByID(ctx, *in.VariantID)
			if err != nil {
				return apperrors.Unexpected("could not load variant", err)
			}
			if variant == nil || variant.ProductID != product.ID {
				return apperrors.NotFound("variant not found")
			}
		}

		items := s.cartItemRepo.WithTx(tx)
		existing, err := items.FindByKey(ctx, cart.ID, product.ID, in.VariantID)
		if err != nil {
			return apperrors.Unexpected("could not load cart item", err)
		}
		if existing != nil {
			if err := items.UpdateQuantity(ctx, existing.ID, existing.Quantity+in.Quantity); err != nil {
				return apperrors.Unexpected("could not update cart item", err)
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				VariantID: in.VariantID,
				Quantity:  in.Quantity,
			}
			if err := items.Create(ctx, item); err != nil {
				return apperrors.Unexpected("could not add cart item", err)
			}
		}
		return s.touch(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

// UpdateItem overwrites the quantity; zero or less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, actor policy.Actor, itemID string, in UpdateCartItemInput) (*CartView, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	cart, err := s.findCart(ctx, actor)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperrors.NotFound("cart item not found")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.cartRepo.WithTx(tx).LockByID(ctx, cart.ID); err != nil {
			return apperrors.Unexpected("could not lock cart", err)
		}
		items := s.cartItemRepo.WithTx(tx)
		item, err := items.FindInCart(ctx, cart.ID, itemID)
		if err != nil {
			return apperrors.Unexpected("could not load cart item", err)
		}
		if item == nil {
			return apperrors.NotFound("cart item not found")
		}

		if *in.Quantity <= 0 {
			err = items.Delete(ctx, item.ID)
		} else {
			err = items.UpdateQuantity(ctx, item.ID, *in.Quantity)
		}
		if err != nil {
			return apperrors.Unexpected("could not update cart item", err)
		}
		return s.touch(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *CartService) RemoveItem(ctx context.Context, actor policy.Actor, itemID string) (*CartView, error) {
	zero := 0
	return s.UpdateItem(ctx, actor, itemID, UpdateCartItemInput{Quantity: &zero})
}

// Clear empties the actor's cart. A missing cart is not an error.
func (s *CartService) Clear(ctx context.Context, actor policy.Actor) error {
	cart, err := s.findCart(ctx, actor)
	if err != nil || cart == nil {
		return err
	}
	return s.clearTx(ctx, s.db.WithContext(ctx), cart.ID)
}

// ClearForActor is used by order placement to empty the cart inside its own transaction.
func (s *CartService) ClearForActor(ctx context.Context, tx *gorm.DB, actor policy.Actor) error {
	var (
		cart *models.Cart
		err  error
	)
	repo := s.cartRepo.WithTx(tx)
	switch {
	case actor.IsAuthenticated():
		cart, err = repo.FindForUser(ctx, actor.UserID)
	case actor.SessionKey != "":
		cart, err = repo.FindForSession(ctx, actor.SessionKey)
	}
	if err != nil {
		return apperrors.Unexpected("could not load cart", err)
	}
	if cart == nil {
		return nil
	}
	return s.clearTx(ctx, tx, cart.ID)
}

func (s *CartService) clearTx(ctx context.Context, tx *gorm.DB, cartID string) error {
	if err := s.cartItemRepo.WithTx(tx).ClearCartItems(ctx, cartID); err != nil {
		return apperrors.Unexpected("could not clear cart", err)
	}
	return s.touch(ctx, tx, cartID)
}

func (s *CartService) touch(ctx context.Context, tx *gorm.DB, cartID string) error {
	if err := s.cartRepo.WithTx(tx).Touch(ctx, cartID); err != nil {
		return apperrors.Unexpected("could not update cart", err)
	}
	return nil
}
