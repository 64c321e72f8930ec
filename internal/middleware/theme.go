package middleware

import (
	"net/http"

	reqctx "portal-united/directory/internal/context"
)

const ThemeCookieName = "theme_preference"

var validThemes = map[string]bool{
	"light":         true,
	"dark":          true,
	"high-contrast": true,
}

// IsValidTheme reports whether theme is one the stylesheet knows.
func IsValidTheme(theme string) bool {
	return validThemes[theme]
}

// ThemeMiddleware injects the user's theme preference into the request context
func ThemeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := reqctx.DefaultTheme
		if cookie, err := r.Cookie(ThemeCookieName); err == nil && IsValidTheme(cookie.Value) {
			theme = cookie.Value
		}

		next.ServeHTTP(w, r.WithContext(reqctx.SetTheme(r.Context(), theme)))
	})
}
