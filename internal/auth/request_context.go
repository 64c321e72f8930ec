package auth

import (
	"context"

	"portal-united/directory/internal/common"
	models "portal-united/directory/internal/models/gorm"
	"portal-united/directory/internal/services"
)

type contextKey string

var (
	userClaimsKey      contextKey = "user_claims"
	sessionDataKey     contextKey = "session_data"
	currentUserKey     contextKey = "current_user"
	communityAccessKey contextKey = "community_access"
)

func SetUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

func GetUserClaims(ctx context.Context) UserClaims {
	val := ctx.Value(userClaimsKey)
	if claims, ok := val.(UserClaims); ok {
		return claims
	}
	return nil
}

// SetSessionData stores the request's session, anonymous or not
func SetSessionData(ctx context.Context, session *common.SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey, session)
}

func GetSessionData(ctx context.Context) *common.SessionData {
	session, _ := ctx.Value(sessionDataKey).(*common.SessionData)
	return session
}

func SetCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns the logged-in user, or nil for anonymous requests
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(currentUserKey).(*models.User)
	return user
}

// CommunityAccess is what the community gate resolved for the request.
type CommunityAccess struct {
	Community  *models.CommunityProfile
	Membership *models.Membership
	Actor      services.Actor
}

func SetCommunityAccess(ctx context.Context, access *CommunityAccess) context.Context {
	return context.WithValue(ctx, communityAccessKey, access)
}

func GetCommunityAccess(ctx context.Context) *CommunityAccess {
	access, _ := ctx.Value(communityAccessKey).(*CommunityAccess)
	return access
}
