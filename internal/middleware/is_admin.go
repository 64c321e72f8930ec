package middleware

import (
	"net/http"

	"portal-united/directory/internal/auth"
)

// ErrorPages renders the HTML error responses.
type ErrorPages interface {
	NotFound(w http.ResponseWriter, r *http.Request)
	Forbidden(w http.ResponseWriter, r *http.Request)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

// RequireSuperuser guards the admin panel.
func RequireSuperuser(pages ErrorPages) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
				return
			}

			if !claims.IsSuperuser() {
				pages.Forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
