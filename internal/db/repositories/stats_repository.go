package repositories

import (
	"context"
	"fmt"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// StatsRepository runs the raw aggregate queries that are awkward through the ORM.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db}
}

// MemberCounts returns active member counts keyed by community id.
// Communities without members are absent from the map.
func (r *StatsRepository) MemberCounts(ctx context.Context, communityIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(communityIDs))
	if len(communityIDs) == 0 {
		return counts, nil
	}

	query, args, err := sqlx.In(constants.CountActiveMembersByCommunity, true, communityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build member count query: %w", err)
	}

	var rows []entities.CommunityMemberCount
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	for _, row := range rows {
		counts[row.CommunityID] = row.MemberCount
	}
	return counts, nil
}

// ActiveMemberTotal counts active memberships across the directory.
func (r *StatsRepository) ActiveMemberTotal(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(constants.CountActiveMembersTotal), true); err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return total, nil
}

// DenominationBreakdown counts active communities per denomination.
func (r *StatsRepository) DenominationBreakdown(ctx context.Context) ([]entities.DenominationCount, error) {
	var rows []entities.DenominationCount
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.CountCommunitiesByDenomination), true); err != nil {
		return nil, fmt.Errorf("failed to count denominations: %w", err)
	}
	return rows, nil
}

// Ping checks that the reporting connection is alive.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
