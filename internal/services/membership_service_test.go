package services

import (
	"context"
	"testing"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/logging"
	models "portal-united/directory/internal/models/gorm"
	"portal-united/directory/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// community founded by "owner" with an admin, a leader, a service leader and a member
type fixture struct {
	community      *models.CommunityProfile
	owner          *models.User
	admin          *models.User
	leader         *models.User
	serviceLeader  *models.User
	member         *models.User
	ownerM         *models.Membership
	adminM         *models.Membership
	leaderM        *models.Membership
	serviceLeaderM *models.Membership
	memberM        *models.Membership
}

func newFixture(t *testing.T, env *testEnv) *fixture {
	t.Helper()
	f := &fixture{}
	f.owner = testutil.CreateUser(t, env.db, "owner")
	f.community = testutil.CreateCommunity(t, env.db, "Grace", "Warsaw", f.owner)
	f.ownerM = testutil.Membership(t, env.db, f.owner.ID, f.community.ID)

	f.admin = testutil.CreateUser(t, env.db, "admin")
	f.adminM = testutil.AddMember(t, env.db, f.admin, f.community, constants.RoleAdmin)
	f.leader = testutil.CreateUser(t, env.db, "leader")
	f.leaderM = testutil.AddMember(t, env.db, f.leader, f.community, constants.RoleLeader)
	f.serviceLeader = testutil.CreateUser(t, env.db, "service")
	f.serviceLeaderM = testutil.AddMember(t, env.db, f.serviceLeader, f.community, constants.RoleServiceLeader)
	f.member = testutil.CreateUser(t, env.db, "member")
	f.memberM = testutil.AddMember(t, env.db, f.member, f.community, constants.RoleMember)
	return f
}

func (f *fixture) actor(t *testing.T, env *testEnv, user *models.User) Actor {
	t.Helper()
	a, _, err := env.memberships.Actor(context.Background(), user, f.community.ID)
	require.NoError(t, err)
	return a
}

func TestMembershipService_Join(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, "owner")
	community := testutil.CreateCommunity(t, env.db, "Grace", "Warsaw", owner)
	anna := testutil.CreateUser(t, env.db, "anna")

	m, err := env.memberships.Join(ctx, anna.ID, community.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleMember, m.Role)
	assert.True(t, m.IsActive)
	assert.Nil(t, m.InvitedByID)

	_, err = env.memberships.Join(ctx, anna.ID, community.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.memberships.Join(ctx, owner.ID, community.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	var count int64
	require.NoError(t, env.db.Model(&models.Membership{}).Where("person_id = ? AND community_id = ?", anna.ID, community.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, float64(1), promtest.ToFloat64(env.metrics.MembershipEventsTotal.WithLabelValues("joined")))
}

func TestMembershipService_JoinInactiveCommunity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	community := testutil.CreateCommunity(t, env.db, "Closed", "Warsaw", nil)
	require.NoError(t, env.db.Model(community).Update("is_active", false).Error)
	anna := testutil.CreateUser(t, env.db, "anna")

	_, err := env.memberships.Join(ctx, anna.ID, community.ID)
	assert.ErrorIs(t, err, repositories.ErrCommunityNotFound)

	_, err = env.memberships.Join(ctx, anna.ID, 9999)
	assert.ErrorIs(t, err, repositories.ErrCommunityNotFound)
}

func TestMembershipService_JoinReactivatesInactiveRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	community := testutil.CreateCommunity(t, env.db, "Grace", "Warsaw", nil)
	anna := testutil.CreateUser(t, env.db, "anna")
	old := testutil.AddMember(t, env.db, anna, community, constants.RoleLeader)
	require.NoError(t, env.db.Model(old).Update("is_active", false).Error)

	m, err := env.memberships.Join(ctx, anna.ID, community.ID)
	require.NoError(t, err)
	assert.Equal(t, old.ID, m.ID)

	reloaded := testutil.Membership(t, env.db, anna.ID, community.ID)
	assert.True(t, reloaded.IsActive)
	assert.Equal(t, constants.RoleMember, reloaded.Role)
}

func TestMembershipService_Leave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)

	assert.ErrorIs(t, env.memberships.Leave(ctx, f.owner.ID, f.community.ID), ErrOwnerCannotLeave)
	assert.ErrorIs(t, env.memberships.Leave(ctx, f.admin.ID, f.community.ID), ErrAdminCannotLeave)
	assert.NotNil(t, testutil.Membership(t, env.db, f.owner.ID, f.community.ID))
	assert.NotNil(t, testutil.Membership(t, env.db, f.admin.ID, f.community.ID))

	for _, u := range []*models.User{f.leader, f.serviceLeader, f.member} {
		require.NoError(t, env.memberships.Leave(ctx, u.ID, f.community.ID), u.Username)
		// leaving deletes the row outright
		assert.Nil(t, testutil.Membership(t, env.db, u.ID, f.community.ID), u.Username)
	}

	assert.ErrorIs(t, env.memberships.Leave(ctx, f.member.ID, f.community.ID), ErrNotMember)

	_, err := env.memberships.Join(ctx, f.member.ID, f.community.ID)
	assert.NoError(t, err)
}

func TestMembershipService_ChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)

	owner := f.actor(t, env, f.owner)
	admin := f.actor(t, env, f.admin)
	leader := f.actor(t, env, f.leader)

	m, err := env.memberships.ChangeRole(ctx, admin, f.community.ID, f.memberM.ID, constants.RoleLeader)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleLeader, m.Role)
	assert.Equal(t, constants.RoleLeader, testutil.Membership(t, env.db, f.member.ID, f.community.ID).Role)

	_, err = env.memberships.ChangeRole(ctx, admin, f.community.ID, f.memberM.ID, constants.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = env.memberships.ChangeRole(ctx, admin, f.community.ID, f.ownerM.ID, constants.RoleMember)
	assert.ErrorIs(t, err, ErrTargetProtected)

	_, err = env.memberships.ChangeRole(ctx, leader, f.community.ID, f.serviceLeaderM.ID, constants.RoleMember)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.memberships.ChangeRole(ctx, owner, f.community.ID, f.ownerM.ID, constants.RoleMember)
	assert.ErrorIs(t, err, ErrSelfRoleChange)

	// a second owner is allowed
	_, err = env.memberships.ChangeRole(ctx, owner, f.community.ID, f.adminM.ID, constants.RoleOwner)
	require.NoError(t, err)
	owners, err := repositories.NewMembershipRepository(env.db).CountByRole(ctx, f.community.ID, constants.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), owners)

	assert.Equal(t, float64(1), promtest.ToFloat64(env.metrics.RoleChangesTotal.WithLabelValues("owner")))
}

func TestMembershipService_ChangeRoleRejectsForeignMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)

	other := testutil.CreateCommunity(t, env.db, "Other", "Krakow", nil)
	outsider := testutil.CreateUser(t, env.db, "outsider")
	foreign := testutil.AddMember(t, env.db, outsider, other, constants.RoleMember)

	_, err := env.memberships.ChangeRole(ctx, f.actor(t, env, f.owner), f.community.ID, foreign.ID, constants.RoleLeader)
	assert.ErrorIs(t, err, repositories.ErrMembershipNotFound)

	_, err = env.memberships.Remove(ctx, f.actor(t, env, f.owner), f.community.ID, foreign.ID)
	assert.ErrorIs(t, err, repositories.ErrMembershipNotFound)
	assert.NotNil(t, testutil.Membership(t, env.db, outsider.ID, other.ID))
}

func TestMembershipService_Remove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)

	leader := f.actor(t, env, f.leader)
	admin := f.actor(t, env, f.admin)
	member := f.actor(t, env, f.member)

	_, err := env.memberships.Remove(ctx, member, f.community.ID, f.serviceLeaderM.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.memberships.Remove(ctx, leader, f.community.ID, f.serviceLeaderM.ID)
	assert.ErrorIs(t, err, ErrLeaderRemoveLimit)

	_, err = env.memberships.Remove(ctx, leader, f.community.ID, f.leaderM.ID)
	assert.ErrorIs(t, err, ErrSelfRemoval)

	_, err = env.memberships.Remove(ctx, admin, f.community.ID, f.ownerM.ID)
	assert.ErrorIs(t, err, ErrOwnerRemoval)

	removed, err := env.memberships.Remove(ctx, leader, f.community.ID, f.memberM.ID)
	require.NoError(t, err)
	assert.Equal(t, "member", removed.Person.Username)
	assert.Nil(t, testutil.Membership(t, env.db, f.member.ID, f.community.ID))

	_, err = env.memberships.Remove(ctx, admin, f.community.ID, f.serviceLeaderM.ID)
	require.NoError(t, err)

	_, err = env.memberships.Remove(ctx, admin, f.community.ID, f.serviceLeaderM.ID)
	assert.ErrorIs(t, err, repositories.ErrMembershipNotFound)
}

func TestMembershipService_SuperuserActsAsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)

	root := testutil.CreateUser(t, env.db, "root")
	require.NoError(t, env.db.Model(root).Update("is_superuser", true).Error)
	root.IsSuperuser = true

	a := f.actor(t, env, root)
	assert.True(t, a.CanEdit())

	_, err := env.memberships.ChangeRole(ctx, a, f.community.ID, f.adminM.ID, constants.RoleMember)
	require.NoError(t, err)
	_, err = env.memberships.Remove(ctx, a, f.community.ID, f.adminM.ID)
	require.NoError(t, err)
}

func TestMembershipService_AcceptInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)

	guest := testutil.CreateUser(t, env.db, "guest")
	m, err := env.memberships.AcceptInvite(ctx, guest.ID, f.community.ID, f.leader)
	require.NoError(t, err)
	require.NotNil(t, m.InvitedByID)
	assert.Equal(t, f.leader.ID, *m.InvitedByID)

	_, err = env.memberships.AcceptInvite(ctx, guest.ID, f.community.ID, f.leader)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	members, err := env.memberships.Members(ctx, f.community.ID)
	require.NoError(t, err)
	require.Len(t, members, 6)
	assert.Equal(t, "guest", members[0].Person.Username)
	require.NotNil(t, members[0].InvitedBy)
	assert.Equal(t, "leader", members[0].InvitedBy.Username)

	mine, err := env.memberships.MyCommunities(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Grace", mine[0].Community.Name)
}

func TestMembershipService_AcceptInviteChecksInviterStanding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newFixture(t, env)
	guest := testutil.CreateUser(t, env.db, "guest")

	tests := []struct {
		name    string
		inviter *models.User
	}{
		{"plain member", f.member},
		{"service leader", f.serviceLeader},
		{"unknown inviter", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.memberships.AcceptInvite(ctx, guest.ID, f.community.ID, tt.inviter)
			assert.ErrorIs(t, err, ErrInviteRevoked)
			assert.Nil(t, testutil.Membership(t, env.db, guest.ID, f.community.ID))
		})
	}

	// a leader removed after minting the link
	_, err := env.memberships.Remove(ctx, f.actor(t, env, f.owner), f.community.ID, f.leaderM.ID)
	require.NoError(t, err)
	_, err = env.memberships.AcceptInvite(ctx, guest.ID, f.community.ID, f.leader)
	assert.ErrorIs(t, err, ErrInviteRevoked)

	// a deactivated account
	f.admin.IsActive = false
	_, err = env.memberships.AcceptInvite(ctx, guest.ID, f.community.ID, f.admin)
	assert.ErrorIs(t, err, ErrInviteRevoked)
	assert.Nil(t, testutil.Membership(t, env.db, guest.ID, f.community.ID))
}

func TestMembershipService_SecondOwnerWarning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	core, logs := observer.New(zap.WarnLevel)
	logging.UseLogger(zap.New(core))

	// ownerless community: promoting a member is the first owner, not a second
	community := testutil.CreateCommunity(t, env.db, "Orphan", "Gdansk", nil)
	anna := testutil.CreateUser(t, env.db, "anna")
	annaM := testutil.AddMember(t, env.db, anna, community, constants.RoleMember)
	root := testutil.CreateUser(t, env.db, "root")
	root.IsSuperuser = true
	superuser, _, err := env.memberships.Actor(ctx, root, community.ID)
	require.NoError(t, err)

	_, err = env.memberships.ChangeRole(ctx, superuser, community.ID, annaM.ID, constants.RoleOwner)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("Granting a second owner").Len())

	bob := testutil.CreateUser(t, env.db, "bob")
	bobM := testutil.AddMember(t, env.db, bob, community, constants.RoleMember)
	owner, _, err := env.memberships.Actor(ctx, anna, community.ID)
	require.NoError(t, err)

	_, err = env.memberships.ChangeRole(ctx, owner, community.ID, bobM.ID, constants.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Granting a second owner").Len())
}
