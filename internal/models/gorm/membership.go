package gorm

import (
	"time"

	"portal-united/directory/internal/constants"
)

// Membership links a person to a community. One row per (person, community).
type Membership struct {
	ID          uint                     `gorm:"column:id;primaryKey"`
	PersonID    uint                     `gorm:"column:person_id;not null;uniqueIndex:uk_membership_person_community"`
	CommunityID uint                     `gorm:"column:community_id;not null;index;uniqueIndex:uk_membership_person_community"`
	Role        constants.MembershipRole `gorm:"column:role;type:varchar(20);not null;default:'member'"`
	IsActive    bool                     `gorm:"column:is_active;not null"`
	InvitedByID *uint                    `gorm:"column:invited_by_id"`
	Notes       string                   `gorm:"column:notes;type:text"`
	JoinedDate  time.Time                `gorm:"column:joined_date;autoCreateTime"`

	// Relationships
	Person    User             `gorm:"foreignKey:PersonID"`
	Community CommunityProfile `gorm:"foreignKey:CommunityID"`
	InvitedBy *User            `gorm:"foreignKey:InvitedByID"`
}

// TableName specifies the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// AllModels is the AutoMigrate list, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&PersonProfile{},
		&Tag{},
		&CommunityProfile{},
		&Membership{},
	}
}
