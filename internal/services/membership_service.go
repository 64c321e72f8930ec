package services

import (
	"context"
	"errors"
	"fmt"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/metrics"
	models "portal-united/directory/internal/models/gorm"
)

// MembershipService owns joining, leaving and role management.
type MembershipService struct {
	memberships *repositories.MembershipRepository
	communities *repositories.CommunityRepository
	metrics     *metrics.MetricsRegistry
}

func NewMembershipService(
	memberships *repositories.MembershipRepository,
	communities *repositories.CommunityRepository,
	metricsReg *metrics.MetricsRegistry,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		communities: communities,
		metrics:     metricsReg,
	}
}

// Actor resolves the user's standing in a community.
func (s *MembershipService) Actor(ctx context.Context, user *models.User, communityID uint) (Actor, *models.Membership, error) {
	m, err := s.memberships.GetActive(ctx, user.ID, communityID)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return Actor{}, nil, err
	}
	return NewActor(user, m), m, nil
}

// Membership returns the active membership of userID, or nil.
func (s *MembershipService) Membership(ctx context.Context, userID, communityID uint) (*models.Membership, error) {
	m, err := s.memberships.GetActive(ctx, userID, communityID)
	if errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, nil
	}
	return m, err
}

// Members lists the active members of a community, newest first.
func (s *MembershipService) Members(ctx context.Context, communityID uint) ([]models.Membership, error) {
	return s.memberships.ListActiveByCommunity(ctx, communityID)
}

// MyCommunities lists the active communities userID belongs to.
func (s *MembershipService) MyCommunities(ctx context.Context, userID uint) ([]models.Membership, error) {
	return s.memberships.ListActiveByPerson(ctx, userID)
}

// Join makes userID a member of an active community.
func (s *MembershipService) Join(ctx context.Context, userID, communityID uint) (*models.Membership, error) {
	m, err := s.join(ctx, userID, communityID, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.MembershipEvent("joined")
	logging.Info("Member joined community", "user_id", userID, "community_id", communityID)
	return m, nil
}

// AcceptInvite joins like Join but records who invited the user.
func (s *MembershipService) AcceptInvite(ctx context.Context, userID, communityID uint, inviter *models.User) (*models.Membership, error) {
	// links die with the inviter's manage rights
	if inviter == nil || !inviter.IsActive {
		return nil, ErrInviteRevoked
	}
	standing, _, err := s.Actor(ctx, inviter, communityID)
	if err != nil {
		return nil, err
	}
	if !standing.CanManage() {
		return nil, ErrInviteRevoked
	}

	inviterID := inviter.ID
	m, err := s.join(ctx, userID, communityID, &inviterID)
	if err != nil {
		return nil, err
	}
	s.metrics.MembershipEvent("invited")
	logging.Info("Member joined community by invitation",
		"user_id", userID,
		"community_id", communityID,
		"invited_by", inviterID,
	)
	return m, nil
}

func (s *MembershipService) join(ctx context.Context, userID, communityID uint, invitedBy *uint) (*models.Membership, error) {
	if _, err := s.communities.GetActiveByID(ctx, communityID); err != nil {
		return nil, err
	}

	existing, err := s.memberships.GetByPersonAndCommunity(ctx, userID, communityID)
	switch {
	case err == nil && existing.IsActive:
		return nil, ErrAlreadyMember
	case err == nil:
		// an inactive row blocks a fresh insert on the unique pair, so reuse it
		if err := s.memberships.Reactivate(ctx, existing, constants.RoleMember, invitedBy); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, repositories.ErrMembershipNotFound):
		return nil, err
	}

	m := &models.Membership{
		PersonID:    userID,
		CommunityID: communityID,
		Role:        constants.RoleMember,
		IsActive:    true,
		InvitedByID: invitedBy,
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		// lost a race against a concurrent join
		if _, lookupErr := s.memberships.GetByPersonAndCommunity(ctx, userID, communityID); lookupErr == nil {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	return m, nil
}

// Leave deletes userID's membership. Owners and admins must hand their role over first.
func (s *MembershipService) Leave(ctx context.Context, userID, communityID uint) error {
	m, err := s.memberships.GetActive(ctx, userID, communityID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrNotMember
		}
		return err
	}

	if err := CheckLeave(m.Role); err != nil {
		return err
	}

	if err := s.memberships.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to leave community: %w", err)
	}

	s.metrics.MembershipEvent("left")
	logging.Info("Member left community", "user_id", userID, "community_id", communityID, "role", m.Role)
	return nil
}

// target loads a membership and checks it belongs to communityID.
func (s *MembershipService) target(ctx context.Context, communityID, membershipID uint) (*models.Membership, error) {
	m, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.CommunityID != communityID {
		return nil, repositories.ErrMembershipNotFound
	}
	return m, nil
}

// ChangeRole sets a member's role within the bounds of the actor's own role.
func (s *MembershipService) ChangeRole(ctx context.Context, actor Actor, communityID, membershipID uint, newRole constants.MembershipRole) (*models.Membership, error) {
	if !actor.CanChangeRoles() {
		return nil, ErrPermissionDenied
	}

	target, err := s.target(ctx, communityID, membershipID)
	if err != nil {
		return nil, err
	}

	if err := actor.CheckChangeRole(target, newRole); err != nil {
		return nil, err
	}

	if newRole == constants.RoleOwner && target.Role != constants.RoleOwner {
		owners, err := s.memberships.CountByRole(ctx, communityID, constants.RoleOwner)
		if err != nil {
			return nil, err
		}
		if owners > 0 {
			logging.Warn("Granting a second owner",
				"community_id", communityID,
				"membership_id", membershipID,
				"granted_by", actor.UserID,
			)
		}
	}

	if err := s.memberships.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, err
	}

	s.metrics.RoleChanged(newRole.String())
	logging.Info("Membership role changed",
		"community_id", communityID,
		"membership_id", membershipID,
		"from", target.Role,
		"to", newRole,
		"changed_by", actor.UserID,
	)

	target.Role = newRole
	return target, nil
}

// Remove deletes another member's membership.
func (s *MembershipService) Remove(ctx context.Context, actor Actor, communityID, membershipID uint) (*models.Membership, error) {
	if !actor.CanManage() {
		return nil, ErrPermissionDenied
	}

	target, err := s.target(ctx, communityID, membershipID)
	if err != nil {
		return nil, err
	}

	if err := actor.CheckRemove(target); err != nil {
		return nil, err
	}

	if err := s.memberships.Delete(ctx, target.ID); err != nil {
		return nil, err
	}

	s.metrics.MembershipEvent("removed")
	logging.Info("Member removed from community",
		"community_id", communityID,
		"membership_id", membershipID,
		"removed_by", actor.UserID,
	)
	return target, nil
}
