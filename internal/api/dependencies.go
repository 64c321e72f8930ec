package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portal-united/directory/internal/common"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/metrics"
	"portal-united/directory/internal/services"
)

type Repositories struct {
	Users       *repositories.UserRepositoryGORM
	Profiles    *repositories.PersonProfileRepository
	Communities *repositories.CommunityRepository
	Memberships *repositories.MembershipRepository
	Tags        *repositories.TagRepository
	Stats       *repositories.StatsRepository
}

type Services struct {
	// Cache is always in-process; it holds typed values such as the tag list.
	Cache *common.CacheService
	// Shared is Redis when configured, so single-use invites hold across instances.
	Shared common.CacheInterface

	Sessions    *common.SessionService
	Invites     *common.InviteSigner
	Accounts    *services.AccountService
	Profiles    *services.ProfileService
	Communities *services.CommunityService
	Memberships *services.MembershipService
	Admin       *services.AdminService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry

	SQLX  *sqlx.DB
	Redis *redis.Client
}

// Options carries the settings the services need from configuration.
type Options struct {
	SessionSecret []byte
	SessionTTL    time.Duration
	InviteTTL     time.Duration
}

// InitDependencies wires repositories and services. redisClient may be nil, in
// which case sessions and used invites stay in process memory.
func InitDependencies(gdb *gorm.DB, sqlDB *sqlx.DB, redisClient *redis.Client, metricsReg *metrics.MetricsRegistry, opts Options) (*Dependencies, error) {
	repos := &Repositories{
		Users:       repositories.NewUserRepositoryGORM(gdb),
		Profiles:    repositories.NewPersonProfileRepository(gdb),
		Communities: repositories.NewCommunityRepository(gdb),
		Memberships: repositories.NewMembershipRepository(gdb),
		Tags:        repositories.NewTagRepository(gdb),
		Stats:       repositories.NewStatsRepository(sqlDB),
	}

	cacheSvc := common.NewCacheService(10*time.Minute, 10*time.Minute, metricsReg)

	var (
		shared  common.CacheInterface = cacheSvc
		backend common.SessionBackend = common.NewMemorySessionBackend()
	)
	if redisClient != nil {
		shared = common.NewRedisCacheService(redisClient)
		backend = common.NewRedisSessionBackend(redisClient)
	}

	communitySvc := services.NewCommunityService(repos.Communities, repos.Tags, repos.Stats, cacheSvc, metricsReg)

	svcs := &Services{
		Cache:       cacheSvc,
		Shared:      shared,
		Sessions:    common.NewSessionService(backend, opts.SessionTTL),
		Invites:     common.NewInviteSigner(opts.SessionSecret, opts.InviteTTL, shared),
		Accounts:    services.NewAccountService(repos.Users, metricsReg),
		Profiles:    services.NewProfileService(repos.Profiles),
		Communities: communitySvc,
		Memberships: services.NewMembershipService(repos.Memberships, repos.Communities, metricsReg),
		Admin: services.NewAdminService(
			repos.Users,
			repos.Profiles,
			repos.Communities,
			repos.Memberships,
			repos.Tags,
			repos.Stats,
			communitySvc,
		),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		SQLX:     sqlDB,
		Redis:    redisClient,
	}, nil
}
