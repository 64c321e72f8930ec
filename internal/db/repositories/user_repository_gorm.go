package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormModels "portal-united/directory/internal/models/gorm"

	"gorm.io/gorm"
)

type UserRepositoryGORM struct {
	db *gorm.DB
}

// NewUserRepositoryGORM creates a new GORM-based user repository
func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

// CreateWithProfile inserts a user and, when profile is non-nil, its person profile in one transaction
func (r *UserRepositoryGORM) CreateWithProfile(ctx context.Context, user *gormModels.User, profile *gormModels.PersonProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create person profile: %w", err)
		}
		user.PersonProfile = profile
		return nil
	})
}

// GetByID retrieves a user with its person profile
func (r *UserRepositoryGORM) GetByID(ctx context.Context, id uint) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Preload("PersonProfile").
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves a user by username without relationships
func (r *UserRepositoryGORM) GetByUsername(ctx context.Context, username string) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryGORM) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&gormModels.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepositoryGORM) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&gormModels.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// TouchLastLogin stamps last_login for a successful login
func (r *UserRepositoryGORM) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UserFilter holds the admin list filters for users.
type UserFilter struct {
	Search   string
	UserType string
	IsStaff  *bool
	IsActive *bool
}

// List returns users matching filter ordered by username, plus the total count
func (r *UserRepositoryGORM) List(ctx context.Context, filter UserFilter, page Page) ([]gormModels.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&gormModels.User{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}
	if filter.UserType != "" {
		q = q.Where("user_type = ?", filter.UserType)
	}
	if filter.IsStaff != nil {
		q = q.Where("is_staff = ?", *filter.IsStaff)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []gormModels.User
	err := q.Order("username ASC").Offset(page.offset()).Limit(page.limit()).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
