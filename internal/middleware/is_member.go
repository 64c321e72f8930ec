package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/db/repositories"
	models "portal-united/directory/internal/models/gorm"
	"portal-united/directory/internal/services"
)

// CommunityLoader fetches an active community.
type CommunityLoader interface {
	Get(ctx context.Context, id uint) (*models.CommunityProfile, error)
}

// ActorResolver works out what the current user may do in a community.
type ActorResolver interface {
	Actor(ctx context.Context, user *models.User, communityID uint) (services.Actor, *models.Membership, error)
}

// URLParamID parses a numeric chi URL parameter.
func URLParamID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CommunityAccessMiddleware loads the {id} community and the caller's standing in it.
// A nil allow admits everyone who reaches the community; otherwise allow must accept the actor.
func CommunityAccessMiddleware(
	communities CommunityLoader,
	actors ActorResolver,
	pages ErrorPages,
	allow func(services.Actor) bool,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := URLParamID(r, "id")
			if !ok {
				pages.NotFound(w, r)
				return
			}

			community, err := communities.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, repositories.ErrCommunityNotFound) {
					pages.NotFound(w, r)
					return
				}
				pages.ServerError(w, r, err)
				return
			}

			access := &auth.CommunityAccess{Community: community}
			if user := auth.CurrentUser(r.Context()); user != nil {
				actor, membership, err := actors.Actor(r.Context(), user, community.ID)
				if err != nil {
					pages.ServerError(w, r, err)
					return
				}
				access.Actor = actor
				access.Membership = membership
			}

			if allow != nil && !allow(access.Actor) {
				pages.Forbidden(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetCommunityAccess(r.Context(), access)))
		})
	}
}
