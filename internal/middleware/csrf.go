package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	reqctx "portal-united/directory/internal/context"
	"portal-united/directory/internal/logging"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFFieldName  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32
	csrfCookieAge  = 365 * 24 * 60 * 60
)

// CSRFMiddleware issues a per-browser token cookie and requires every unsafe
// request to echo it back in the csrf_token form field or the X-CSRF-Token header.
func CSRFMiddleware(pages ErrorPages, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(CSRFCookieName); err == nil && validCSRFToken(cookie.Value) {
				token = cookie.Value
			}
			issued := token == ""
			if issued {
				var err error
				if token, err = newCSRFToken(); err != nil {
					pages.ServerError(w, r, err)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   csrfCookieAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if !safeMethod(r.Method) {
				submitted := r.Header.Get(CSRFHeaderName)
				if submitted == "" {
					submitted = r.PostFormValue(CSRFFieldName)
				}
				// a freshly issued token was never rendered into a form
				if issued || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
					logging.Warn("CSRF check failed",
						"method", r.Method,
						"path", r.URL.Path,
						"cookie_present", !issued,
						"request_id", reqctx.GetRequestID(r.Context()),
					)
					pages.Forbidden(w, r)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(reqctx.SetCSRFToken(r.Context(), token)))
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validCSRFToken(token string) bool {
	if len(token) != csrfTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
