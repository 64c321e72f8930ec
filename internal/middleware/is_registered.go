package middleware

import (
	"net/http"
	"net/url"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/constants"
)

const LoginPath = "/accounts/login/"

// LoginURL is the login page that sends the user back to next afterwards.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.CurrentUser(r.Context()) == nil {
				sessions.AddFlash(w, r, constants.FlashInfo, constants.MsgLoginRequired)
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
