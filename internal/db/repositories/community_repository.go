package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "portal-united/directory/internal/models/gorm"

	"gorm.io/gorm"
)

// CommunityRepository handles community_profiles operations using GORM
type CommunityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new GORM-based community repository
func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// Create inserts the community and links its tags. The owner membership is
// added by the model's AfterCreate hook inside the same transaction.
func (r *CommunityRepository) Create(ctx context.Context, community *gormModels.CommunityProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Tags.*").Create(community).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create community: %w", err)
	}
	return nil
}

// GetActiveByID retrieves an active community with its tags
func (r *CommunityRepository) GetActiveByID(ctx context.Context, id uint) (*gormModels.CommunityProfile, error) {
	return r.get(ctx, r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true))
}

// GetByID retrieves a community regardless of its active flag
func (r *CommunityRepository) GetByID(ctx context.Context, id uint) (*gormModels.CommunityProfile, error) {
	return r.get(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CommunityRepository) get(ctx context.Context, q *gorm.DB) (*gormModels.CommunityProfile, error) {
	var community gormModels.CommunityProfile

	err := q.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	}).First(&community).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to fetch community: %w", err)
	}

	return &community, nil
}

// Update saves the editable profile columns and replaces the tag set
func (r *CommunityRepository) Update(ctx context.Context, community *gormModels.CommunityProfile, tags []gormModels.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(community).
			Select("name", "description", "full_description", "city", "parish", "address",
				"denomination", "denomination_other", "photo_url", "logo_url",
				"contact_email", "contact_phone", "website", "founded_date", "updated_at").
			Updates(community).Error
		if err != nil {
			return fmt.Errorf("failed to update community: %w", err)
		}
		assoc := tx.Model(community).Association("Tags")
		if len(tags) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(tags)
		}
		if err != nil {
			return fmt.Errorf("failed to update community tags: %w", err)
		}
		community.Tags = tags
		return nil
	})
}

// SetFlag flips is_active or is_verified
func (r *CommunityRepository) SetFlag(ctx context.Context, id uint, column string, value bool) error {
	if column != "is_active" && column != "is_verified" {
		return fmt.Errorf("unsupported community flag %q", column)
	}

	result := r.db.WithContext(ctx).
		Model(&gormModels.CommunityProfile{}).
		Where("id = ?", id).
		Update(column, value)

	if result.Error != nil {
		return fmt.Errorf("failed to update community %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCommunityNotFound
	}
	return nil
}

// CommunityFilter covers both the public directory filters and the admin list filters.
type CommunityFilter struct {
	// ActiveOnly restricts to is_active communities (public directory).
	ActiveOnly bool
	// CityContains is a case-insensitive substring match.
	CityContains string
	// City is an exact match (admin list filter).
	City         string
	Denomination string
	TagSlug      string
	// Search matches name or description.
	Search string
	// AdminSearch matches name, city or parish.
	AdminSearch string
	IsActive    *bool
	IsVerified  *bool
}

// List returns matching communities, newest first, with tags preloaded, plus the total count
func (r *CommunityRepository) List(ctx context.Context, filter CommunityFilter, page Page) ([]gormModels.CommunityProfile, int64, error) {
	q := r.db.WithContext(ctx).Model(&gormModels.CommunityProfile{})

	if filter.ActiveOnly {
		q = q.Where("community_profiles.is_active = ?", true)
	}
	if filter.IsActive != nil {
		q = q.Where("community_profiles.is_active = ?", *filter.IsActive)
	}
	if filter.IsVerified != nil {
		q = q.Where("community_profiles.is_verified = ?", *filter.IsVerified)
	}
	if filter.CityContains != "" {
		q = q.Where("LOWER(community_profiles.city) LIKE LOWER(?)", "%"+filter.CityContains+"%")
	}
	if filter.City != "" {
		q = q.Where("community_profiles.city = ?", filter.City)
	}
	if filter.Denomination != "" {
		q = q.Where("community_profiles.denomination = ?", filter.Denomination)
	}
	if filter.TagSlug != "" {
		q = q.Where(`community_profiles.id IN (
			SELECT community_tags.community_profile_id FROM community_tags
			JOIN tags ON tags.id = community_tags.tag_id
			WHERE tags.slug = ?)`, filter.TagSlug)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("LOWER(community_profiles.name) LIKE LOWER(?) OR LOWER(community_profiles.description) LIKE LOWER(?)", like, like)
	}
	if filter.AdminSearch != "" {
		like := "%" + filter.AdminSearch + "%"
		q = q.Where(`(LOWER(community_profiles.name) LIKE LOWER(?)
			OR LOWER(community_profiles.city) LIKE LOWER(?)
			OR LOWER(community_profiles.parish) LIKE LOWER(?))`, like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count communities: %w", err)
	}

	var communities []gormModels.CommunityProfile
	err := q.Preload("Tags").
		Order("community_profiles.created_at DESC").
		Order("community_profiles.id DESC").
		Offset(page.offset()).Limit(page.limit()).
		Find(&communities).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list communities: %w", err)
	}

	return communities, total, nil
}

// DistinctCities lists every city used by a community, for the admin filter sidebar
func (r *CommunityRepository) DistinctCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).
		Model(&gormModels.CommunityProfile{}).
		Distinct("city").
		Order("city ASC").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}
