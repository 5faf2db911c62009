package services

import (
	"context"
	"log"

	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"gorm.io/gorm"
)

// AssigneeResolver picks the super admin that owns unassigned and rejected
// orders: the configured default when it names an active super admin, else the
// earliest created active super admin.
type AssigneeResolver struct {
	userRepo     repositories.UserRepositoryImpl
	defaultEmail string
}

func NewAssigneeResolver(userRepo repositories.UserRepositoryImpl, defaultEmail string) *AssigneeResolver {
	return &AssigneeResolver{userRepo: userRepo, defaultEmail: models.NormalizeEmail(defaultEmail)}
}

// Resolve returns nil when no active super admin exists.
func (r *AssigneeResolver) Resolve(ctx context.Context, tx *gorm.DB) (*models.User, error) {
	users := r.userRepo.WithTx(tx)
	if r.defaultEmail != "" {
		user, err := users.FindByEmail(ctx, r.defaultEmail)
		if err != nil {
			return nil, err
		}
		if user != nil && user.IsActive && user.Role == models.RoleSuperAdmin {
			return user, nil
		}
		log.Printf("AssigneeResolver.Resolve: %s is not an active super admin, falling back", r.defaultEmail)
	}
	return users.FindEarliestSuperAdmin(ctx)
}
