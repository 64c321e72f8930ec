package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "portal-united/directory/internal/models/gorm"

	"gorm.io/gorm"
)

// PersonProfileRepository manages person_profiles with GORM
type PersonProfileRepository struct {
	db *gorm.DB
}

func NewPersonProfileRepository(db *gorm.DB) *PersonProfileRepository {
	return &PersonProfileRepository{db: db}
}

// GetOrCreate returns the user's profile, inserting seed when none exists yet
func (r *PersonProfileRepository) GetOrCreate(ctx context.Context, userID uint, seed gormModels.PersonProfile) (*gormModels.PersonProfile, bool, error) {
	var profile gormModels.PersonProfile

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to fetch person profile: %w", err)
	}

	seed.UserID = userID
	if err := r.db.WithContext(ctx).Create(&seed).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create person profile: %w", err)
	}
	return &seed, true, nil
}

// Update saves every editable profile column
func (r *PersonProfileRepository) Update(ctx context.Context, profile *gormModels.PersonProfile) error {
	err := r.db.WithContext(ctx).
		Model(profile).
		Select("first_name", "last_name", "city", "bio", "photo_url", "updated_at").
		Updates(profile).Error
	if err != nil {
		return fmt.Errorf("failed to update person profile: %w", err)
	}
	return nil
}

// List returns profiles matching search (name, city or username) for the admin panel
func (r *PersonProfileRepository) List(ctx context.Context, search string, page Page) ([]gormModels.PersonProfile, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&gormModels.PersonProfile{}).
		Joins("JOIN users ON users.id = person_profiles.user_id")

	if search != "" {
		like := "%" + search + "%"
		q = q.Where(`(LOWER(person_profiles.first_name) LIKE LOWER(?)
			OR LOWER(person_profiles.last_name) LIKE LOWER(?)
			OR LOWER(person_profiles.city) LIKE LOWER(?)
			OR LOWER(users.username) LIKE LOWER(?))`, like, like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count person profiles: %w", err)
	}

	var profiles []gormModels.PersonProfile
	err := q.Preload("User").
		Order("person_profiles.created_at DESC").
		Offset(page.offset()).Limit(page.limit()).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list person profiles: %w", err)
	}
	return profiles, total, nil
}
