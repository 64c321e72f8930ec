package services

import (
	"context"
	"fmt"
	"time"

	"portal-united/directory/internal/common"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/metrics"
	"portal-united/directory/internal/models/entities"
	models "portal-united/directory/internal/models/gorm"
)

const tagCacheTTL = 5 * time.Minute

// CommunityService serves the public directory and community profile edits.
type CommunityService struct {
	communities *repositories.CommunityRepository
	tags        *repositories.TagRepository
	stats       *repositories.StatsRepository
	cache       common.CacheInterface
	metrics     *metrics.MetricsRegistry
}

func NewCommunityService(
	communities *repositories.CommunityRepository,
	tags *repositories.TagRepository,
	stats *repositories.StatsRepository,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *CommunityService {
	return &CommunityService{
		communities: communities,
		tags:        tags,
		stats:       stats,
		cache:       cache,
		metrics:     metricsReg,
	}
}

// AllTags returns every tag ordered by name, cached for a few minutes.
func (s *CommunityService) AllTags(ctx context.Context) ([]models.Tag, error) {
	val, err := s.cache.GetOrSet(string(constants.CachePrefixTags), tagCacheTTL, func() (any, error) {
		return s.tags.All(ctx)
	})
	if err != nil {
		return nil, err
	}
	if tags, ok := val.([]models.Tag); ok {
		return tags, nil
	}
	// a serializing cache hands back generic values
	return s.tags.All(ctx)
}

// InvalidateTags drops the cached tag list after a tag is created.
func (s *CommunityService) InvalidateTags() {
	s.cache.Delete(string(constants.CachePrefixTags))
}

// DirectoryQuery carries the public list filters from the query string.
type DirectoryQuery struct {
	City         string
	Denomination string
	Tag          string
	Search       string
	Page         int
}

type DirectoryPage struct {
	Communities []models.CommunityProfile
	Pagination  Pagination
	Query       DirectoryQuery
}

// List returns one page of active communities matching q, newest first.
func (s *CommunityService) List(ctx context.Context, q DirectoryQuery) (*DirectoryPage, error) {
	filter := repositories.CommunityFilter{
		ActiveOnly:   true,
		CityContains: q.City,
		Denomination: q.Denomination,
		TagSlug:      q.Tag,
		Search:       q.Search,
	}

	number := q.Page
	if number < 1 {
		number = 1
	}
	communities, total, err := s.communities.List(ctx, filter, repositories.Page{Number: number, Size: constants.CommunitiesPerPage})
	if err != nil {
		return nil, err
	}

	// out-of-range pages fall back to the last page
	if clamped := clampPage(number, constants.CommunitiesPerPage, total); clamped != number {
		number = clamped
		communities, total, err = s.communities.List(ctx, filter, repositories.Page{Number: number, Size: constants.CommunitiesPerPage})
		if err != nil {
			return nil, err
		}
	}

	q.Page = number
	return &DirectoryPage{
		Communities: communities,
		Pagination:  newPagination(number, constants.CommunitiesPerPage, total),
		Query:       q,
	}, nil
}

// HomeData is shown on the landing page.
type HomeData struct {
	Recent         []models.CommunityProfile
	CommunityCount int64
	MemberCount    int64
	Denominations  []entities.DenominationCount
}

func (s *CommunityService) Home(ctx context.Context) (*HomeData, error) {
	recent, total, err := s.communities.List(ctx, repositories.CommunityFilter{ActiveOnly: true}, repositories.Page{Number: 1, Size: 6})
	if err != nil {
		return nil, err
	}

	members, err := s.stats.ActiveMemberTotal(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.stats.DenominationBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	return &HomeData{
		Recent:         recent,
		CommunityCount: total,
		MemberCount:    members,
		Denominations:  breakdown,
	}, nil
}

// Get returns an active community with its tags.
func (s *CommunityService) Get(ctx context.Context, id uint) (*models.CommunityProfile, error) {
	return s.communities.GetActiveByID(ctx, id)
}

// Create inserts a community founded by creator. The creator becomes its owner.
func (s *CommunityService) Create(ctx context.Context, creator *models.User, form forms.CommunityForm) (*models.CommunityProfile, error) {
	tags, err := s.tags.ByIDs(ctx, form.TagIDs)
	if err != nil {
		return nil, err
	}

	community := &models.CommunityProfile{
		CreatedByID: &creator.ID,
		IsActive:    true,
		Tags:        tags,
	}
	form.Apply(community)

	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}

	s.metrics.CommunityCreated()
	logging.Info("Community created",
		"community_id", community.ID,
		"slug", community.Slug,
		"created_by", creator.ID,
	)
	return community, nil
}

// Update applies the edit form to community and replaces its tags.
func (s *CommunityService) Update(ctx context.Context, community *models.CommunityProfile, form forms.CommunityForm) error {
	tags, err := s.tags.ByIDs(ctx, form.TagIDs)
	if err != nil {
		return err
	}

	form.Apply(community)
	if err := s.communities.Update(ctx, community, tags); err != nil {
		return fmt.Errorf("failed to save community %d: %w", community.ID, err)
	}

	logging.Info("Community updated", "community_id", community.ID)
	return nil
}
