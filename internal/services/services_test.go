package services

import (
	"testing"
	"time"

	"portal-united/directory/internal/common"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/metrics"
	"portal-united/directory/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	metrics     *metrics.MetricsRegistry
	memberships *MembershipService
	communities *CommunityService
	accounts    *AccountService
	profiles    *ProfileService
	admin       *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.OpenDB(t)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	userRepo := repositories.NewUserRepositoryGORM(db)
	profileRepo := repositories.NewPersonProfileRepository(db)
	communityRepo := repositories.NewCommunityRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	statsRepo := repositories.NewStatsRepository(testutil.SQLX(t, db))
	cache := common.NewCacheService(time.Minute, time.Minute, reg)

	communities := NewCommunityService(communityRepo, tagRepo, statsRepo, cache, reg)
	accounts := NewAccountService(userRepo, reg)
	accounts.bcryptCost = bcrypt.MinCost

	return &testEnv{
		db:          db,
		metrics:     reg,
		memberships: NewMembershipService(membershipRepo, communityRepo, reg),
		communities: communities,
		accounts:    accounts,
		profiles:    NewProfileService(profileRepo),
		admin:       NewAdminService(userRepo, profileRepo, communityRepo, membershipRepo, tagRepo, statsRepo, communities),
	}
}
