package auth

import (
	models "portal-united/directory/internal/models/gorm"
)

func MakeClaimsFromUser(user *models.User) *SessionClaims {
	return &SessionClaims{
		ID:        user.ID,
		Name:      user.Username,
		Superuser: user.IsSuperuser,
		Staff:     user.IsStaff,
	}
}
