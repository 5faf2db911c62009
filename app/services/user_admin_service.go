package services

import (
	"context"
	"log"
	"strings"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
)

type CreateStaffInput struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"omitempty,oneof=admin super_admin"`
}

type UpdateUserInput struct {
	Role     *string `json:"role" validate:"omitempty,oneof=customer admin super_admin"`
	IsActive *bool   `json:"is_active"`
}

type UserAdminService struct {
	userRepo repositories.UserRepositoryImpl
}

func NewUserAdminService(userRepo repositories.UserRepositoryImpl) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

func (s *UserAdminService) List(ctx context.Context, actor policy.Actor, filter repositories.UserFilter) ([]models.User, int64, error) {
	if !policy.CanPerform(actor, policy.ListUsers, policy.Resource{}) {
		return nil, 0, apperrors.Authorization("staff access required")
	}
	if filter.Role != "" && !models.IsValidRole(filter.Role) {
		return nil, 0, apperrors.ValidationField("role", "unknown role")
	}
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Unexpected("could not list users", err)
	}
	return users, total, nil
}

func (s *UserAdminService) CreateStaff(ctx context.Context, actor policy.Actor, in CreateStaffInput) (*models.User, error) {
	if !policy.CanPerform(actor, policy.ManageUsers, policy.Resource{}) {
		return nil, apperrors.Authorization("super admin access required")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.Unexpected("could not create user", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("a user with this email already exists")
	}

	role := in.Role
	if role == "" {
		role = models.RoleAdmin
	}
	user := &models.User{
		Email:     models.NormalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Password:  in.Password,
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Unexpected("could not create user", err)
	}
	log.Printf("UserAdminService.CreateStaff: %s created %s account %s", actor.UserID, role, user.ID)
	return user, nil
}

// Update changes role and active flag. Super admins cannot demote or deactivate themselves.
func (s *UserAdminService) Update(ctx context.Context, actor policy.Actor, userID string, in UpdateUserInput) (*models.User, error) {
	if !policy.CanPerform(actor, policy.ManageUsers, policy.Resource{}) {
		return nil, apperrors.Authorization("super admin access required")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Unexpected("could not update user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	if user.ID == actor.UserID {
		if in.Role != nil && *in.Role != user.Role {
			return nil, apperrors.ValidationField("role", "you cannot change your own role")
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, apperrors.ValidationField("is_active", "you cannot deactivate your own account")
		}
	}

	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperrors.Unexpected("could not update user", err)
	}
	return user, nil
}

func (s *UserAdminService) Delete(ctx context.Context, actor policy.Actor, userID string) error {
	if !policy.CanPerform(actor, policy.ManageUsers, policy.Resource{}) {
		return apperrors.Authorization("super admin access required")
	}
	if userID == actor.UserID {
		return apperrors.Validation("you cannot delete your own account")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Unexpected("could not delete user", err)
	}
	if user == nil {
		return apperrors.NotFound("user not found")
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return apperrors.Unexpected("could not delete user", err)
	}
	log.Printf("UserAdminService.Delete: %s deleted user %s", actor.UserID, userID)
	return nil
}

// CreateSuperAdmin bootstraps a super admin account from the command line.
func (s *UserAdminService) CreateSuperAdmin(ctx context.Context, in CreateStaffInput) (*models.User, error) {
	in.Role = models.RoleSuperAdmin
	return s.CreateStaff(ctx, policy.Actor{UserID: "cli", Role: models.RoleSuperAdmin}, in)
}
