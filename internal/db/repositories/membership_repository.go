package repositories

import (
	"context"
	"errors"
	"fmt"

	"portal-united/directory/internal/constants"
	models "portal-united/directory/internal/models/gorm"

	"gorm.io/gorm"
)

// MembershipRepository manages person/community memberships with GORM
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetByID retrieves a membership with the person (and profile) and community
func (r *MembershipRepository) GetByID(ctx context.Context, id uint) (*models.Membership, error) {
	var m models.Membership

	err := r.db.WithContext(ctx).
		Preload("Person.PersonProfile").
		Preload("Community").
		Where("id = ?", id).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	return &m, nil
}

// GetByPersonAndCommunity retrieves the membership row for a pair, active or not
func (r *MembershipRepository) GetByPersonAndCommunity(ctx context.Context, personID, communityID uint) (*models.Membership, error) {
	var m models.Membership

	err := r.db.WithContext(ctx).
		Where("person_id = ? AND community_id = ?", personID, communityID).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	return &m, nil
}

// GetActive retrieves the active membership for a pair
func (r *MembershipRepository) GetActive(ctx context.Context, personID, communityID uint) (*models.Membership, error) {
	m, err := r.GetByPersonAndCommunity(ctx, personID, communityID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, ErrMembershipNotFound
	}
	return m, nil
}

// ListActiveByCommunity retrieves active members of a community, newest first
func (r *MembershipRepository) ListActiveByCommunity(ctx context.Context, communityID uint) ([]models.Membership, error) {
	var memberships []models.Membership

	err := r.db.WithContext(ctx).
		Preload("Person.PersonProfile").
		Preload("InvitedBy").
		Where("community_id = ? AND is_active = ?", communityID, true).
		Order("joined_date DESC").
		Order("id DESC").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch community members: %w", err)
	}

	return memberships, nil
}

// ListActiveByPerson retrieves a person's active memberships in active communities
func (r *MembershipRepository) ListActiveByPerson(ctx context.Context, personID uint) ([]models.Membership, error) {
	var memberships []models.Membership

	err := r.db.WithContext(ctx).
		Preload("Community").
		Joins("JOIN community_profiles cp ON cp.id = memberships.community_id").
		Where("memberships.person_id = ? AND memberships.is_active = ? AND cp.is_active = ?", personID, true, true).
		Order("cp.name ASC").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch person memberships: %w", err)
	}

	return memberships, nil
}

// Create inserts a new membership
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// Reactivate turns an inactive row back into an active membership with a fresh role
func (r *MembershipRepository) Reactivate(ctx context.Context, m *models.Membership, role constants.MembershipRole, invitedBy *uint) error {
	err := r.db.WithContext(ctx).
		Model(m).
		Select("is_active", "role", "invited_by_id").
		Updates(models.Membership{IsActive: true, Role: role, InvitedByID: invitedBy}).Error
	if err != nil {
		return fmt.Errorf("failed to reactivate membership: %w", err)
	}
	m.IsActive = true
	m.Role = role
	m.InvitedByID = invitedBy
	return nil
}

// UpdateRole changes a membership's role
func (r *MembershipRepository) UpdateRole(ctx context.Context, id uint, role constants.MembershipRole) error {
	result := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("id = ?", id).
		Update("role", role)

	if result.Error != nil {
		return fmt.Errorf("failed to update membership role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// Delete removes the membership row outright; there is no history
func (r *MembershipRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Membership{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// CountByRole counts active memberships of a community holding role
func (r *MembershipRepository) CountByRole(ctx context.Context, communityID uint, role constants.MembershipRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ? AND role = ? AND is_active = ?", communityID, role, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

// MembershipFilter holds the admin list filters for memberships.
type MembershipFilter struct {
	Role     string
	IsActive *bool
	// Search matches the person's username or the community name.
	Search string
}

// List returns memberships for the admin panel, newest first
func (r *MembershipRepository) List(ctx context.Context, filter MembershipFilter, page Page) ([]models.Membership, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Joins("JOIN users u ON u.id = memberships.person_id").
		Joins("JOIN community_profiles cp ON cp.id = memberships.community_id")

	if filter.Role != "" {
		q = q.Where("memberships.role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		q = q.Where("memberships.is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("LOWER(u.username) LIKE LOWER(?) OR LOWER(cp.name) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count memberships: %w", err)
	}

	var memberships []models.Membership
	err := q.Preload("Person").
		Preload("Community").
		Order("memberships.joined_date DESC").
		Order("memberships.id DESC").
		Offset(page.offset()).Limit(page.limit()).
		Find(&memberships).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, total, nil
}
