package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/modaltela/modal-tela-api/app/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserFilter struct {
	Role     string
	Search   string
	Page     int
	PageSize int
}

type UserRepositoryImpl interface {
	WithTx(tx *gorm.DB) UserRepositoryImpl
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	FindEarliestSuperAdmin(ctx context.Context) (*models.User, error)
	CountActiveSuperAdmins(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryImpl {
	return &userRepository{db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepositoryImpl {
	return &userRepository{tx}
}

// Create hashes user.Password before inserting.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	hashPass, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("UserRepository.Create: failed to hash password for user %s: %v", user.Email, err)
		return err
	}
	user.Password = string(hashPass)

	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", newPasswordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password for user %s: %w", userID, result.Error)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?)", like, like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := query.Order("created_at DESC, id ASC").Scopes(Paginate(filter.Page, filter.PageSize)).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// FindEarliestSuperAdmin returns the oldest active super_admin, or nil.
func (r *userRepository) FindEarliestSuperAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleSuperAdmin, true).
		Order("created_at ASC, id ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CountActiveSuperAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleSuperAdmin, true).
		Count(&count).Error
	return count, err
}
