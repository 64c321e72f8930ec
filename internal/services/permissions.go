package services

import (
	"errors"

	"portal-united/directory/internal/constants"
	models "portal-united/directory/internal/models/gorm"
)

var (
	ErrNotMember         = errors.New("not a member of this community")
	ErrAlreadyMember     = errors.New("already a member of this community")
	ErrPermissionDenied  = errors.New("insufficient permission")
	ErrOwnerCannotLeave  = errors.New("owner cannot leave the community")
	ErrAdminCannotLeave  = errors.New("admin cannot leave the community")
	ErrInvalidRole       = errors.New("invalid role")
	ErrSelfRoleChange    = errors.New("cannot change own role")
	ErrRoleNotAllowed    = errors.New("role cannot be granted by this member")
	ErrTargetProtected   = errors.New("target membership cannot be changed by this member")
	ErrSelfRemoval       = errors.New("cannot remove yourself")
	ErrOwnerRemoval      = errors.New("owner cannot be removed")
	ErrLeaderRemoveLimit = errors.New("leader can only remove regular members")
	ErrInviteRevoked     = errors.New("inviter can no longer manage this community")
)

var (
	editRoles   = []constants.MembershipRole{constants.RoleOwner, constants.RoleAdmin}
	manageRoles = []constants.MembershipRole{constants.RoleOwner, constants.RoleAdmin, constants.RoleLeader}
	// roles an admin may hand out
	adminGrantable = []constants.MembershipRole{constants.RoleLeader, constants.RoleServiceLeader, constants.RoleMember}
)

// Actor is the requesting user as seen by one community.
type Actor struct {
	UserID      uint
	IsSuperuser bool
	// Role is empty when the user has no active membership.
	Role constants.MembershipRole
}

// NewActor builds the actor from the user and their active membership, if any.
func NewActor(user *models.User, membership *models.Membership) Actor {
	a := Actor{UserID: user.ID, IsSuperuser: user.IsSuperuser}
	if membership != nil && membership.IsActive {
		a.Role = membership.Role
	}
	return a
}

// EffectiveRole is the role permissions are checked against. Superusers act as owners.
func (a Actor) EffectiveRole() constants.MembershipRole {
	if a.IsSuperuser {
		return constants.RoleOwner
	}
	return a.Role
}

// CanEdit reports whether the actor may edit the community profile.
func (a Actor) CanEdit() bool {
	return a.EffectiveRole().In(editRoles...)
}

// CanManage reports whether the actor may view the manage page and remove members.
func (a Actor) CanManage() bool {
	return a.EffectiveRole().In(manageRoles...)
}

// CanChangeRoles reports whether the actor may change roles at all.
func (a Actor) CanChangeRoles() bool {
	return a.EffectiveRole().In(editRoles...)
}

// GrantableRoles lists the roles the actor may assign, highest first.
func (a Actor) GrantableRoles() []constants.MembershipRole {
	switch a.EffectiveRole() {
	case constants.RoleOwner:
		return constants.AllRoles
	case constants.RoleAdmin:
		return adminGrantable
	default:
		return nil
	}
}

// CheckChangeRole validates setting target's role to newRole.
func (a Actor) CheckChangeRole(target *models.Membership, newRole constants.MembershipRole) error {
	if !newRole.Valid() {
		return ErrInvalidRole
	}
	if target.PersonID == a.UserID {
		return ErrSelfRoleChange
	}

	switch a.EffectiveRole() {
	case constants.RoleOwner:
		return nil
	case constants.RoleAdmin:
		if target.Role.In(constants.RoleOwner, constants.RoleAdmin) {
			return ErrTargetProtected
		}
		if !newRole.In(adminGrantable...) {
			return ErrRoleNotAllowed
		}
		return nil
	default:
		return ErrPermissionDenied
	}
}

// CheckRemove validates removing target from the community.
func (a Actor) CheckRemove(target *models.Membership) error {
	if target.PersonID == a.UserID {
		return ErrSelfRemoval
	}
	if target.Role == constants.RoleOwner {
		return ErrOwnerRemoval
	}

	switch a.EffectiveRole() {
	case constants.RoleOwner, constants.RoleAdmin:
		return nil
	case constants.RoleLeader:
		if target.Role != constants.RoleMember {
			return ErrLeaderRemoveLimit
		}
		return nil
	default:
		return ErrPermissionDenied
	}
}

// CheckLeave validates a member leaving with role.
func CheckLeave(role constants.MembershipRole) error {
	switch role {
	case constants.RoleOwner:
		return ErrOwnerCannotLeave
	case constants.RoleAdmin:
		return ErrAdminCannotLeave
	default:
		return nil
	}
}
