package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"portal-united/directory/internal/api"
	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/middleware"
	"portal-united/directory/internal/services"
	"portal-united/directory/web/ui"
)

// RegisterUIRoutes registers the public site, account and community pages.
func RegisterUIRoutes(r chi.Router, h *ui.UIHandler, deps *api.Dependencies, sessions *auth.SessionManager) {
	pages := h.Pages()
	requireLogin := middleware.RequireLogin(sessions)

	// one attempt every 2s per IP, bursts of 5
	formLimiter := middleware.NewRateLimiter(rate.Every(2*time.Second), 5)

	community := func(allow func(services.Actor) bool) func(next http.Handler) http.Handler {
		return middleware.CommunityAccessMiddleware(deps.Services.Communities, deps.Services.Memberships, pages, allow)
	}

	r.Get("/", h.HomeHandler)
	r.Post("/theme/", h.SetThemeHandler)

	r.Route("/accounts", func(accounts chi.Router) {
		accounts.Use(formLimiter.Limit)
		accounts.Get("/signup/", h.SignupHandler)
		accounts.Post("/signup/", h.SignupHandler)
		accounts.Get("/login/", h.LoginHandler)
		accounts.Post("/login/", h.LoginHandler)
		accounts.Post("/logout/", h.LogoutHandler)
	})

	r.Route("/communities", func(c chi.Router) {
		c.Get("/", h.CommunityListHandler)

		c.With(requireLogin).Get("/create/", h.CommunityCreateHandler)
		c.With(requireLogin).Post("/create/", h.CommunityCreateHandler)

		c.Route("/{id}", func(one chi.Router) {
			one.With(community(nil)).Get("/", h.CommunityDetailHandler)

			one.Group(func(member chi.Router) {
				member.Use(requireLogin)

				member.With(community(nil)).Post("/join/", h.JoinHandler)
				member.With(community(nil)).Post("/leave/", h.LeaveHandler)

				member.With(community(services.Actor.CanEdit)).Get("/edit/", h.CommunityEditHandler)
				member.With(community(services.Actor.CanEdit)).Post("/edit/", h.CommunityEditHandler)

				member.With(community(services.Actor.CanManage)).Get("/manage/", h.ManageHandler)
				member.With(community(services.Actor.CanManage)).Post("/invite/", h.CreateInviteHandler)
				member.With(community(services.Actor.CanManage)).Post("/member/{membershipID}/remove/", h.RemoveMemberHandler)
				member.With(community(services.Actor.CanChangeRoles)).Post("/member/{membershipID}/change-role/", h.ChangeRoleHandler)
			})
		})
	})

	r.With(requireLogin).Get("/invite/accept", h.AcceptInviteHandler)
	r.With(requireLogin).Post("/invite/accept", h.AcceptInviteHandler)

	r.Route("/profile", func(p chi.Router) {
		p.Use(requireLogin)
		p.Get("/", h.ProfileHandler)
		p.Get("/edit/", h.ProfileEditHandler)
		p.Post("/edit/", h.ProfileEditHandler)
	})
}
