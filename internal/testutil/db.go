// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"testing"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db"
	models "portal-united/directory/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory sqlite database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return gdb
}

// SQLX wraps the same connection for the raw-SQL repositories.
func SQLX(t *testing.T, gdb *gorm.DB) *sqlx.DB {
	t.Helper()
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	return sqlx.NewDb(sqlDB, "sqlite3")
}

// CreateUser inserts an active person account. The password hash is not a real hash.
func CreateUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    username,
		UserType:     constants.UserTypePerson,
		IsActive:     true,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return u
}

// CreateCommunity inserts an active community founded by creator (nil for none).
func CreateCommunity(t *testing.T, gdb *gorm.DB, name, city string, creator *models.User) *models.CommunityProfile {
	t.Helper()
	c := &models.CommunityProfile{
		Name:        name,
		Description: name + " description",
		City:        city,
		IsActive:    true,
	}
	if creator != nil {
		c.CreatedByID = &creator.ID
	}
	if err := gdb.Create(c).Error; err != nil {
		t.Fatalf("Failed to create community %s: %v", name, err)
	}
	return c
}

// AddMember inserts an active membership with role.
func AddMember(t *testing.T, gdb *gorm.DB, user *models.User, community *models.CommunityProfile, role constants.MembershipRole) *models.Membership {
	t.Helper()
	m := &models.Membership{
		PersonID:    user.ID,
		CommunityID: community.ID,
		Role:        role,
		IsActive:    true,
	}
	if err := gdb.Create(m).Error; err != nil {
		t.Fatalf("Failed to add %s to %s: %v", user.Username, community.Name, err)
	}
	return m
}

// Membership reloads the row for a pair, or nil when there is none.
func Membership(t *testing.T, gdb *gorm.DB, userID, communityID uint) *models.Membership {
	t.Helper()
	var m models.Membership
	err := gdb.Where("person_id = ? AND community_id = ?", userID, communityID).Limit(1).Find(&m).Error
	if err != nil {
		t.Fatalf("Failed to load membership: %v", err)
	}
	if m.ID == 0 {
		return nil
	}
	return &m
}
