package gorm

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"portal-united/directory/internal/constants"
)

type Tag struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;size:50;uniqueIndex;not null"`
	Slug string `gorm:"column:slug;size:50;uniqueIndex;not null"`

	Communities []CommunityProfile `gorm:"many2many:community_tags;"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// BeforeCreate prepopulates the slug from the name
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.Slug != "" {
		return nil
	}
	s, err := uniqueSlug(tx, &Tag{}, t.Name, "tag", 50)
	if err != nil {
		return err
	}
	t.Slug = s
	return nil
}

// CommunityProfile is a community listed in the directory. It is not a user account.
type CommunityProfile struct {
	ID                uint       `gorm:"column:id;primaryKey"`
	Name              string     `gorm:"column:name;size:200;not null"`
	Slug              string     `gorm:"column:slug;size:220;uniqueIndex;not null"`
	Description       string     `gorm:"column:description;size:500;not null"`
	FullDescription   string     `gorm:"column:full_description;type:text"`
	City              string     `gorm:"column:city;size:100;index;not null"`
	Parish            string     `gorm:"column:parish;size:200"`
	Address           string     `gorm:"column:address;size:300"`
	Denomination      string     `gorm:"column:denomination;size:50;index"`
	DenominationOther string     `gorm:"column:denomination_other;size:100"`
	PhotoURL          string     `gorm:"column:photo_url;size:500"`
	LogoURL           string     `gorm:"column:logo_url;size:500"`
	ContactEmail      string     `gorm:"column:contact_email;size:254"`
	ContactPhone      string     `gorm:"column:contact_phone;size:20"`
	Website           string     `gorm:"column:website;size:500"`
	FoundedDate       *time.Time `gorm:"column:founded_date;type:date"`
	CreatedByID       *uint      `gorm:"column:created_by_id;index"`
	IsActive          bool       `gorm:"column:is_active;not null;index"`
	IsVerified        bool       `gorm:"column:is_verified;default:false"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID"`
	Tags        []Tag        `gorm:"many2many:community_tags;"`
	Memberships []Membership `gorm:"foreignKey:CommunityID"`
}

// TableName specifies the table name for GORM
func (CommunityProfile) TableName() string {
	return "community_profiles"
}

// DenominationLabel resolves "other" to the free-text denomination.
func (c CommunityProfile) DenominationLabel() string {
	if c.Denomination == constants.DenominationOther && c.DenominationOther != "" {
		return c.DenominationOther
	}
	return constants.DenominationLabel(c.Denomination)
}

// BeforeCreate assigns a unique slug derived from the name
func (c *CommunityProfile) BeforeCreate(tx *gorm.DB) error {
	if c.Slug != "" {
		return nil
	}
	s, err := uniqueSlug(tx, &CommunityProfile{}, c.Name, "community", 200)
	if err != nil {
		return err
	}
	c.Slug = s
	return nil
}

// AfterCreate makes the founder the owner of a newly inserted community.
// Updates never reach this hook.
func (c *CommunityProfile) AfterCreate(tx *gorm.DB) error {
	if c.CreatedByID == nil {
		return nil
	}
	db := tx.Session(&gorm.Session{NewDB: true})

	var existing int64
	if err := db.Model(&Membership{}).
		Where("person_id = ? AND community_id = ?", *c.CreatedByID, c.ID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check founder membership: %w", err)
	}
	if existing > 0 {
		return nil
	}

	owner := Membership{
		PersonID:    *c.CreatedByID,
		CommunityID: c.ID,
		Role:        constants.RoleOwner,
		IsActive:    true,
	}
	if err := db.Create(&owner).Error; err != nil {
		return fmt.Errorf("failed to create owner membership: %w", err)
	}
	return nil
}

// uniqueSlug slugifies name and appends -2, -3, ... until no row of model uses it.
func uniqueSlug(tx *gorm.DB, model interface{}, name, fallback string, maxLen int) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = fallback
	}
	if len(base) > maxLen-4 {
		base = base[:maxLen-4]
	}

	db := tx.Session(&gorm.Session{NewDB: true})
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Model(model).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
