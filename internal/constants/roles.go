package constants

import (
	"database/sql/driver"
	"fmt"
)

// MembershipRole mirrors the memberships.role column
type MembershipRole string

const (
	RoleOwner         MembershipRole = "owner"
	RoleAdmin         MembershipRole = "admin"
	RoleLeader        MembershipRole = "leader"
	RoleServiceLeader MembershipRole = "service_leader"
	RoleMember        MembershipRole = "member"
)

// AllRoles lists roles from highest to lowest privilege.
var AllRoles = []MembershipRole{
	RoleOwner,
	RoleAdmin,
	RoleLeader,
	RoleServiceLeader,
	RoleMember,
}

var roleLabels = map[MembershipRole]string{
	RoleOwner:         "Owner",
	RoleAdmin:         "Administrator",
	RoleLeader:        "Leader",
	RoleServiceLeader: "Service leader",
	RoleMember:        "Member",
}

// Stringer ­– convenient for fmt / logs
func (r MembershipRole) String() string { return string(r) }

// Label is the human readable name shown in templates.
func (r MembershipRole) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r MembershipRole) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// In reports whether r is one of roles.
func (r MembershipRole) In(roles ...MembershipRole) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *MembershipRole) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = MembershipRole(v)
	case []byte:
		*r = MembershipRole(v)
	default:
		return fmt.Errorf("MembershipRole: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r MembershipRole) Value() (driver.Value, error) { return string(r), nil }
