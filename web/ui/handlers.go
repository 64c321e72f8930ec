package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/common"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/middleware"
	"portal-united/directory/internal/services"
)

// UIHandler serves every HTML page of the directory.
type UIHandler struct {
	render      *Renderer
	sessions    *auth.SessionManager
	accounts    *services.AccountService
	profiles    *services.ProfileService
	communities *services.CommunityService
	memberships *services.MembershipService
	admin       *services.AdminService
	invites     *common.InviteSigner
}

// Deps bundles what the UI handlers need.
type Deps struct {
	Renderer    *Renderer
	Sessions    *auth.SessionManager
	Accounts    *services.AccountService
	Profiles    *services.ProfileService
	Communities *services.CommunityService
	Memberships *services.MembershipService
	Admin       *services.AdminService
	Invites     *common.InviteSigner
}

func NewUIHandler(d Deps) *UIHandler {
	return &UIHandler{
		render:      d.Renderer,
		sessions:    d.Sessions,
		accounts:    d.Accounts,
		profiles:    d.Profiles,
		communities: d.Communities,
		memberships: d.Memberships,
		admin:       d.Admin,
		invites:     d.Invites,
	}
}

// Pages exposes the error pages to middleware.
func (h *UIHandler) Pages() middleware.ErrorPages {
	return h.render
}

func (h *UIHandler) flash(w http.ResponseWriter, r *http.Request, level constants.FlashLevel, message string) {
	h.sessions.AddFlash(w, r, level, message)
}

// redirect issues the 302 that follows every successful or rejected POST.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}

func communityURL(id uint) string {
	return "/communities/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func manageURL(id uint) string {
	return communityURL(id) + "manage/"
}

// safeNext accepts only local paths as a post-login destination.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}

func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// boolParam reads an admin list filter such as ?is_active=1.
func boolParam(r *http.Request, name string) *bool {
	switch r.URL.Query().Get(name) {
	case "1", "true":
		v := true
		return &v
	case "0", "false":
		v := false
		return &v
	}
	return nil
}

// SetThemeHandler stores the theme preference cookie and goes back to the page.
func (h *UIHandler) SetThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme := r.FormValue("theme")
	if !middleware.IsValidTheme(theme) {
		theme = "light"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.ThemeCookieName,
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	redirect(w, r, safeNext(r.FormValue("next")))
}
