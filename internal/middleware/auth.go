package middleware

import (
	"context"
	"errors"
	"net/http"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/logging"
	models "portal-united/directory/internal/models/gorm"
)

// UserLoader fetches the account behind a session.
type UserLoader interface {
	User(ctx context.Context, id uint) (*models.User, error)
}

// SessionAuthMiddleware resolves the session cookie into the request context.
// Requests without a valid session continue anonymously.
func SessionAuthMiddleware(sessions *auth.SessionManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessions.Load(r)
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.SetSessionData(r.Context(), session)

			if session.Authenticated() {
				user, err := users.User(ctx, session.UserID)
				switch {
				case err == nil && user.IsActive:
					ctx = auth.SetCurrentUser(ctx, user)
					ctx = auth.SetUserClaims(ctx, auth.MakeClaimsFromUser(user))
				case err == nil, errors.Is(err, repositories.ErrUserNotFound):
					logging.Info("Session user unavailable", "user_id", session.UserID)
				default:
					logging.Error("Failed to load session user", "user_id", session.UserID, "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
