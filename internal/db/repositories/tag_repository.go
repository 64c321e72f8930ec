package repositories

import (
	"context"
	"fmt"

	gormModels "portal-united/directory/internal/models/gorm"

	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// All returns every tag ordered by name
func (r *TagRepository) All(ctx context.Context) ([]gormModels.Tag, error) {
	var tags []gormModels.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	return tags, nil
}

// ByIDs returns the tags with the given ids; unknown ids are ignored
func (r *TagRepository) ByIDs(ctx context.Context, ids []uint) ([]gormModels.Tag, error) {
	if len(ids) == 0 {
		return []gormModels.Tag{}, nil
	}
	var tags []gormModels.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	return tags, nil
}

// Create inserts a tag; the slug is prepopulated from the name when empty
func (r *TagRepository) Create(ctx context.Context, tag *gormModels.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// NameTaken reports whether a tag with this name (case-insensitive) exists
func (r *TagRepository) NameTaken(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.Tag{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check tag name: %w", err)
	}
	return count > 0, nil
}

// Search returns tags whose name contains search
func (r *TagRepository) Search(ctx context.Context, search string, page Page) ([]gormModels.Tag, int64, error) {
	q := r.db.WithContext(ctx).Model(&gormModels.Tag{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tags: %w", err)
	}

	var tags []gormModels.Tag
	if err := q.Order("name ASC").Offset(page.offset()).Limit(page.limit()).Find(&tags).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, total, nil
}

func (r *TagRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.Tag{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check tag slug: %w", err)
	}
	return count > 0, nil
}
