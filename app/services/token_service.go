package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/redis/go-redis/v9"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	tokenIssuer = "modal-tela-api"
)

type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenStore tracks which refresh token ids are still redeemable.
type TokenStore interface {
	Register(ctx context.Context, jti, userID string, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string) error
}

type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func refreshKey(jti string) string {
	return "refresh:" + jti
}

func (s *RedisTokenStore) Register(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKey(jti), userID, ttl).Err()
}

// Consume deletes the id and reports whether it was present.
func (s *RedisTokenStore) Consume(ctx context.Context, jti string) (bool, error) {
	_, err := s.rdb.GetDel(ctx, refreshKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, refreshKey(jti)).Err()
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      TokenStore
	now        func() time.Time
}

// NewTokenService signs HS256 tokens. A nil store makes refresh tokens stateless.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, store TokenStore) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

func (s *TokenService) sign(user *models.User, tokenType string, ttl time.Duration) (string, string, error) {
	now := s.now()
	jti := uuid.New().String()
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, jti, nil
}

func (s *TokenService) IssuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, _, err := s.sign(user, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, apperrors.Unexpected("could not issue token", err)
	}
	refresh, jti, err := s.sign(user, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, apperrors.Unexpected("could not issue token", err)
	}
	if s.store != nil {
		if err := s.store.Register(ctx, jti, user.ID, s.refreshTTL); err != nil {
			return nil, apperrors.Unexpected("could not issue token", err)
		}
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse validates signature, expiry and the expected token type.
func (s *TokenService) Parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperrors.Authentication("invalid or expired token")
	}
	if claims.TokenType != tokenType || claims.UserID == "" {
		return nil, apperrors.Authentication("invalid or expired token")
	}
	return claims, nil
}

// Redeem checks a refresh token and, with a store, consumes it so it cannot be reused.
func (s *TokenService) Redeem(ctx context.Context, refresh string) (*Claims, error) {
	claims, err := s.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return claims, nil
	}
	ok, err := s.store.Consume(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Unexpected("could not refresh token", err)
	}
	if !ok {
		return nil, apperrors.Authentication("refresh token has been revoked")
	}
	return claims, nil
}

func (s *TokenService) Revoke(ctx context.Context, refresh string) error {
	claims, err := s.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Revoke(ctx, claims.ID); err != nil {
		return apperrors.Unexpected("could not revoke token", err)
	}
	return nil
}
