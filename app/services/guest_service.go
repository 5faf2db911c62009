package services

import (
	"context"
	"log"
	"time"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"gorm.io/gorm"
)

type GuestContact struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

type PurgeResult struct {
	Guests int64
	Carts  int64
}

// GuestService owns the lifecycle of anonymous identities: created on the first
// guest order, refreshed on every use, purged once expired and orderless.
type GuestService struct {
	db        *gorm.DB
	guestRepo repositories.GuestUserRepository
	cartRepo  repositories.CartRepositoryImpl
	ttl       time.Duration
	now       func() time.Time
}

func NewGuestService(db *gorm.DB, guestRepo repositories.GuestUserRepository, cartRepo repositories.CartRepositoryImpl, ttl time.Duration) *GuestService {
	return &GuestService{db: db, guestRepo: guestRepo, cartRepo: cartRepo, ttl: ttl, now: time.Now}
}

// Resolve finds or creates the guest for sessionKey using tx, refreshing its
// contact fields and pushing its expiry forward.
func (s *GuestService) Resolve(ctx context.Context, tx *gorm.DB, sessionKey string, contact GuestContact) (*models.GuestUser, error) {
	if sessionKey == "" {
		return nil, apperrors.Authentication("a session is required to place a guest order")
	}
	repo := s.guestRepo.WithTx(tx)
	expires := s.now().Add(s.ttl)

	guest, err := repo.FindBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, apperrors.Unexpected("could not resolve guest", err)
	}
	if guest == nil {
		guest = &models.GuestUser{
			SessionKey: sessionKey,
			Email:      models.NormalizeEmail(contact.Email),
			FirstName:  contact.FirstName,
			LastName:   contact.LastName,
			Phone:      contact.Phone,
			ExpiresAt:  expires,
		}
		if err := repo.Create(ctx, guest); err != nil {
			return nil, apperrors.Unexpected("could not create guest", err)
		}
		return guest, nil
	}

	guest.Email = models.NormalizeEmail(contact.Email)
	guest.FirstName = contact.FirstName
	guest.LastName = contact.LastName
	guest.Phone = contact.Phone
	guest.ExpiresAt = expires
	if err := repo.Update(ctx, guest); err != nil {
		return nil, apperrors.Unexpected("could not update guest", err)
	}
	return guest, nil
}

func (s *GuestService) FindBySession(ctx context.Context, sessionKey string) (*models.GuestUser, error) {
	if sessionKey == "" {
		return nil, nil
	}
	guest, err := s.guestRepo.FindBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, apperrors.Unexpected("could not resolve guest", err)
	}
	return guest, nil
}

// PurgeExpired removes anonymous carts idle for longer than the TTL and expired
// guests that never placed an order.
func (s *GuestService) PurgeExpired(ctx context.Context) (*PurgeResult, error) {
	now := s.now()
	var result PurgeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts, err := s.cartRepo.WithTx(tx).DeleteStaleSessionCarts(ctx, now.Add(-s.ttl))
		if err != nil {
			return err
		}
		guests, err := s.guestRepo.WithTx(tx).DeleteExpiredWithoutOrders(ctx, now)
		if err != nil {
			return err
		}
		result = PurgeResult{Guests: guests, Carts: carts}
		return nil
	})
	if err != nil {
		return nil, apperrors.Unexpected("could not purge guests", err)
	}
	log.Printf("GuestService.PurgeExpired: removed %d guests and %d carts", result.Guests, result.Carts)
	return &result, nil
}
