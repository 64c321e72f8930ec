package services

import (
	"context"
	"fmt"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/logging"
	models "portal-united/directory/internal/models/gorm"
)

// AdminService backs the superuser panel. It bypasses the community role
// hierarchy; only the route gate restricts it.
type AdminService struct {
	users       *repositories.UserRepositoryGORM
	profiles    *repositories.PersonProfileRepository
	communities *repositories.CommunityRepository
	memberships *repositories.MembershipRepository
	tags        *repositories.TagRepository
	stats       *repositories.StatsRepository
	directory   *CommunityService
}

func NewAdminService(
	users *repositories.UserRepositoryGORM,
	profiles *repositories.PersonProfileRepository,
	communities *repositories.CommunityRepository,
	memberships *repositories.MembershipRepository,
	tags *repositories.TagRepository,
	stats *repositories.StatsRepository,
	directory *CommunityService,
) *AdminService {
	return &AdminService{
		users:       users,
		profiles:    profiles,
		communities: communities,
		memberships: memberships,
		tags:        tags,
		stats:       stats,
		directory:   directory,
	}
}

func adminPage(number int) Pagination {
	return newPagination(number, constants.AdminPerPage, 0)
}

type UserList struct {
	Users      []models.User
	Pagination Pagination
}

func (s *AdminService) Users(ctx context.Context, filter repositories.UserFilter, number int) (*UserList, error) {
	p := adminPage(number)
	users, total, err := s.users.List(ctx, filter, p.page())
	if err != nil {
		return nil, err
	}
	p.Total = total
	return &UserList{Users: users, Pagination: p}, nil
}

// CommunityRow is a community with its active member count.
type CommunityRow struct {
	models.CommunityProfile
	MemberCount int64
}

type CommunityList struct {
	Rows       []CommunityRow
	Pagination Pagination
	Cities     []string
	Tags       []models.Tag
}

func (s *AdminService) Communities(ctx context.Context, filter repositories.CommunityFilter, number int) (*CommunityList, error) {
	p := adminPage(number)
	communities, total, err := s.communities.List(ctx, filter, p.page())
	if err != nil {
		return nil, err
	}
	p.Total = total

	ids := make([]uint, 0, len(communities))
	for _, c := range communities {
		ids = append(ids, c.ID)
	}
	counts, err := s.stats.MemberCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]CommunityRow, 0, len(communities))
	for _, c := range communities {
		rows = append(rows, CommunityRow{CommunityProfile: c, MemberCount: counts[c.ID]})
	}

	cities, err := s.communities.DistinctCities(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.directory.AllTags(ctx)
	if err != nil {
		return nil, err
	}

	return &CommunityList{Rows: rows, Pagination: p, Cities: cities, Tags: tags}, nil
}

// ToggleCommunityFlag flips is_active or is_verified and returns the new value.
func (s *AdminService) ToggleCommunityFlag(ctx context.Context, id uint, column string) (bool, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	var next bool
	switch column {
	case "is_active":
		next = !community.IsActive
	case "is_verified":
		next = !community.IsVerified
	default:
		return false, fmt.Errorf("unsupported community flag %q", column)
	}

	if err := s.communities.SetFlag(ctx, id, column, next); err != nil {
		return false, err
	}
	logging.Info("Community flag changed by admin", "community_id", id, "flag", column, "value", next)
	return next, nil
}

type ProfileList struct {
	Profiles   []models.PersonProfile
	Pagination Pagination
}

func (s *AdminService) Profiles(ctx context.Context, search string, number int) (*ProfileList, error) {
	p := adminPage(number)
	profiles, total, err := s.profiles.List(ctx, search, p.page())
	if err != nil {
		return nil, err
	}
	p.Total = total
	return &ProfileList{Profiles: profiles, Pagination: p}, nil
}

type MembershipList struct {
	Memberships []models.Membership
	Pagination  Pagination
}

func (s *AdminService) Memberships(ctx context.Context, filter repositories.MembershipFilter, number int) (*MembershipList, error) {
	p := adminPage(number)
	memberships, total, err := s.memberships.List(ctx, filter, p.page())
	if err != nil {
		return nil, err
	}
	p.Total = total
	return &MembershipList{Memberships: memberships, Pagination: p}, nil
}

// SetMembershipRole assigns any valid role.
func (s *AdminService) SetMembershipRole(ctx context.Context, id uint, role constants.MembershipRole) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	m, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if role == constants.RoleOwner && m.Role != constants.RoleOwner {
		owners, err := s.memberships.CountByRole(ctx, m.CommunityID, constants.RoleOwner)
		if err != nil {
			return err
		}
		if owners > 0 {
			logging.Warn("Granting a second owner", "community_id", m.CommunityID, "membership_id", id, "granted_by", "admin")
		}
	}

	if err := s.memberships.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	logging.Info("Membership role set by admin", "membership_id", id, "role", role)
	return nil
}

func (s *AdminService) DeleteMembership(ctx context.Context, id uint) error {
	if err := s.memberships.Delete(ctx, id); err != nil {
		return err
	}
	logging.Info("Membership deleted by admin", "membership_id", id)
	return nil
}

type TagList struct {
	Tags       []models.Tag
	Pagination Pagination
}

func (s *AdminService) Tags(ctx context.Context, search string, number int) (*TagList, error) {
	p := adminPage(number)
	tags, total, err := s.tags.Search(ctx, search, p.page())
	if err != nil {
		return nil, err
	}
	p.Total = total
	return &TagList{Tags: tags, Pagination: p}, nil
}

// CreateTag validates and inserts a tag, then drops the cached tag list.
func (s *AdminService) CreateTag(ctx context.Context, form forms.TagForm) (*models.Tag, forms.Errors, error) {
	errs := form.Validate()
	if errs.Get("name") == "" {
		taken, err := s.tags.NameTaken(ctx, form.Name)
		if err != nil {
			return nil, nil, err
		}
		if taken {
			errs.Add("name", "Tag with this name already exists.")
		}
	}
	if !errs.Valid() {
		return nil, errs, nil
	}

	// an empty slug lets the model derive a unique one
	tag := &models.Tag{Name: form.Name, Slug: form.Slug}
	if tag.Slug != "" {
		used, err := s.tags.SlugTaken(ctx, tag.Slug)
		if err != nil {
			return nil, nil, err
		}
		if used {
			errs.Add("slug", "Tag with this slug already exists.")
			return nil, errs, nil
		}
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, nil, err
	}
	s.directory.InvalidateTags()
	logging.Info("Tag created", "tag_id", tag.ID, "slug", tag.Slug)
	return tag, errs, nil
}
