package routes

import (
	"github.com/go-chi/chi/v5"

	"portal-united/directory/internal/middleware"
	"portal-united/directory/web/ui"
)

// RegisterAdminRoutes mounts the superuser panel under /admin.
func RegisterAdminRoutes(r chi.Router, h *ui.UIHandler) {
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.RequireSuperuser(h.Pages()))

		admin.Get("/", h.AdminIndexHandler)
		admin.Get("/users/", h.AdminUsersHandler)
		admin.Get("/profiles/", h.AdminProfilesHandler)

		admin.Get("/communities/", h.AdminCommunitiesHandler)
		admin.Post("/communities/{id}/toggle-active/", h.AdminToggleCommunityHandler("is_active"))
		admin.Post("/communities/{id}/toggle-verified/", h.AdminToggleCommunityHandler("is_verified"))

		admin.Get("/memberships/", h.AdminMembershipsHandler)
		admin.Post("/memberships/{id}/role/", h.AdminSetRoleHandler)
		admin.Post("/memberships/{id}/delete/", h.AdminDeleteMembershipHandler)

		admin.Get("/tags/", h.AdminTagsHandler)
		admin.Post("/tags/", h.AdminTagsHandler)
	})
}
