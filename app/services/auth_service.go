package services

import (
	"context"
	"log"
	"strings"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
)

const invalidCredentials = "invalid email or password"

type RegisterInput struct {
	Email           string `json:"email" validate:"required,email,max=100"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type LoginResult struct {
	TokenPair
	User *models.User `json:"user"`
}

type AuthService struct {
	userRepo repositories.UserRepositoryImpl
	tokens   *TokenService
}

func NewAuthService(userRepo repositories.UserRepositoryImpl, tokens *TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.Unexpected("could not register user", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("a user with this email already exists")
	}

	user := &models.User{
		Email:     models.NormalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Password:  in.Password,
		Role:      models.RoleCustomer,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Unexpected("could not register user", err)
	}
	log.Printf("AuthService.Register: user %s registered", user.ID)
	return user, nil
}

// Login gives the same error for an unknown email, a wrong password and an inactive account.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.Unexpected("could not log in", err)
	}
	if user == nil || !user.IsActive || !helpers.PasswordCompare(user.Password, []byte(in.Password)) {
		return nil, apperrors.Authentication(invalidCredentials)
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{TokenPair: *pair, User: user}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	if refresh == "" {
		return nil, apperrors.ValidationField("refresh", "this field is required")
	}
	claims, err := s.tokens.Redeem(ctx, refresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unexpected("could not refresh token", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Authentication("invalid or expired token")
	}
	return s.tokens.IssuePair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return apperrors.ValidationField("refresh", "this field is required")
	}
	return s.tokens.Revoke(ctx, refresh)
}

// Authenticate resolves the user behind an access token.
func (s *AuthService) Authenticate(ctx context.Context, access string) (*models.User, error) {
	claims, err := s.tokens.Parse(access, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unexpected("could not authenticate", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Authentication("user not found or inactive")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, in ProfileInput) (*models.User, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperrors.Unexpected("could not update profile", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, in ChangePasswordInput) error {
	if err := helpers.Validate(in); err != nil {
		return err
	}
	if !helpers.PasswordCompare(user.Password, []byte(in.OldPassword)) {
		return apperrors.ValidationField("old_password", "old password is incorrect")
	}

	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return apperrors.Unexpected("could not change password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.Unexpected("could not change password", err)
	}
	user.Password = hash
	return nil
}
