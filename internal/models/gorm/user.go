package gorm

import (
	"strings"
	"time"

	"portal-united/directory/internal/constants"
)

type User struct {
	ID           uint               `gorm:"column:id;primaryKey"`
	Username     string             `gorm:"column:username;size:150;uniqueIndex;not null"`
	Email        string             `gorm:"column:email;size:254;uniqueIndex;not null"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	FirstName    string             `gorm:"column:first_name;size:150"`
	LastName     string             `gorm:"column:last_name;size:150"`
	UserType     constants.UserType `gorm:"column:user_type;type:varchar(20);not null;default:'person'"`
	IsActive     bool               `gorm:"column:is_active;not null"`
	IsStaff      bool               `gorm:"column:is_staff;default:false"`
	IsSuperuser  bool               `gorm:"column:is_superuser;default:false"`
	DateJoined   time.Time          `gorm:"column:date_joined;autoCreateTime"`
	LastLogin    *time.Time         `gorm:"column:last_login"`

	// Relationships
	PersonProfile *PersonProfile `gorm:"foreignKey:UserID"`
	Memberships   []Membership   `gorm:"foreignKey:PersonID"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IsPerson is true for every account created since communities stopped being users.
func (u User) IsPerson() bool {
	return u.UserType == "" || u.UserType == constants.UserTypePerson
}

// DisplayName prefers the person profile name over the username.
func (u User) DisplayName() string {
	if u.PersonProfile != nil {
		if name := u.PersonProfile.FullName(); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

type PersonProfile struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex;not null"`
	FirstName string    `gorm:"column:first_name;size:100;not null"`
	LastName  string    `gorm:"column:last_name;size:100"`
	City      string    `gorm:"column:city;size:100"`
	Bio       string    `gorm:"column:bio;type:text"`
	PhotoURL  string    `gorm:"column:photo_url;size:500"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (PersonProfile) TableName() string {
	return "person_profiles"
}

func (p PersonProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
