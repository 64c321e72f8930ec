package ui

import (
	"errors"
	"net/http"
	"strings"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/middleware"
	"portal-united/directory/internal/services"
)

// adminSection is one model registered in the admin panel.
type adminSection struct {
	Title string
	URL   string
}

var adminSections = []adminSection{
	{Title: "Users", URL: "/admin/users/"},
	{Title: "Person profiles", URL: "/admin/profiles/"},
	{Title: "Communities", URL: "/admin/communities/"},
	{Title: "Memberships", URL: "/admin/memberships/"},
	{Title: "Tags", URL: "/admin/tags/"},
}

func adminFilters(r *http.Request) (search string, filters map[string]string) {
	q := r.URL.Query()
	filters = make(map[string]string, len(q))
	for k := range q {
		if k != "page" {
			filters[k] = q.Get(k)
		}
	}
	return strings.TrimSpace(q.Get("q")), filters
}

func (h *UIHandler) renderAdmin(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	_, filters := adminFilters(r)
	query := r.URL.Query()
	query.Del("page")

	data["Sections"] = adminSections
	data["Filters"] = filters
	data["Query"] = query
	h.render.RenderTemplate(w, r, http.StatusOK, name, data)
}

// AdminIndexHandler lists the registered models.
func (h *UIHandler) AdminIndexHandler(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, "admin/index.html", map[string]interface{}{
		"PageTitle": "Administration",
	})
}

// AdminUsersHandler is the user changelist.
func (h *UIHandler) AdminUsersHandler(w http.ResponseWriter, r *http.Request) {
	search, _ := adminFilters(r)
	list, err := h.admin.Users(r.Context(), repositories.UserFilter{
		Search:   search,
		UserType: r.URL.Query().Get("user_type"),
		IsStaff:  boolParam(r, "is_staff"),
		IsActive: boolParam(r, "is_active"),
	}, pageNumber(r))
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.renderAdmin(w, r, "admin/users.html", map[string]interface{}{
		"PageTitle": "Users",
		"List":      list,
		"Pager":     list.Pagination,
		"UserTypes": []constants.UserType{constants.UserTypePerson, constants.UserTypeCommunity},
	})
}

// AdminCommunitiesHandler is the community changelist with member counts.
func (h *UIHandler) AdminCommunitiesHandler(w http.ResponseWriter, r *http.Request) {
	search, _ := adminFilters(r)
	q := r.URL.Query()
	list, err := h.admin.Communities(r.Context(), repositories.CommunityFilter{
		AdminSearch:  search,
		IsActive:     boolParam(r, "is_active"),
		IsVerified:   boolParam(r, "is_verified"),
		Denomination: q.Get("denomination"),
		City:         q.Get("city"),
		TagSlug:      q.Get("tag"),
	}, pageNumber(r))
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.renderAdmin(w, r, "admin/communities.html", map[string]interface{}{
		"PageTitle":     "Communities",
		"List":          list,
		"Pager":         list.Pagination,
		"Denominations": constants.Denominations,
	})
}

// AdminToggleCommunityHandler flips is_active or is_verified. POST only.
func (h *UIHandler) AdminToggleCommunityHandler(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.URLParamID(r, "id")
		if !ok {
			h.render.NotFound(w, r)
			return
		}

		value, err := h.admin.ToggleCommunityFlag(r.Context(), id, column)
		if err != nil {
			if errors.Is(err, repositories.ErrCommunityNotFound) {
				h.render.NotFound(w, r)
				return
			}
			h.render.ServerError(w, r, err)
			return
		}

		h.flash(w, r, constants.FlashSuccess, toggleMessage(column, value))
		redirect(w, r, "/admin/communities/")
	}
}

func toggleMessage(column string, value bool) string {
	switch {
	case column == "is_active" && value:
		return constants.MsgCommunityActivated
	case column == "is_active":
		return constants.MsgCommunityDeactivated
	case value:
		return constants.MsgCommunityVerified
	default:
		return constants.MsgCommunityUnverified
	}
}

// AdminProfilesHandler is the person profile changelist.
func (h *UIHandler) AdminProfilesHandler(w http.ResponseWriter, r *http.Request) {
	search, _ := adminFilters(r)
	list, err := h.admin.Profiles(r.Context(), search, pageNumber(r))
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.renderAdmin(w, r, "admin/profiles.html", map[string]interface{}{
		"PageTitle": "Person profiles",
		"List":      list,
		"Pager":     list.Pagination,
	})
}

// AdminMembershipsHandler is the membership changelist.
func (h *UIHandler) AdminMembershipsHandler(w http.ResponseWriter, r *http.Request) {
	search, _ := adminFilters(r)
	list, err := h.admin.Memberships(r.Context(), repositories.MembershipFilter{
		Search:   search,
		Role:     r.URL.Query().Get("role"),
		IsActive: boolParam(r, "is_active"),
	}, pageNumber(r))
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.renderAdmin(w, r, "admin/memberships.html", map[string]interface{}{
		"PageTitle": "Memberships",
		"List":      list,
		"Pager":     list.Pagination,
		"Roles":     constants.AllRoles,
	})
}

// AdminSetRoleHandler assigns any role, bypassing the community hierarchy. POST only.
func (h *UIHandler) AdminSetRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.URLParamID(r, "id")
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	form := forms.ParseRole(r)
	if errs := form.Validate(); !errs.Valid() {
		h.flash(w, r, constants.FlashError, constants.MsgInvalidRole)
		redirect(w, r, "/admin/memberships/")
		return
	}

	err := h.admin.SetMembershipRole(r.Context(), id, constants.MembershipRole(form.Role))
	switch {
	case errors.Is(err, repositories.ErrMembershipNotFound):
		h.flash(w, r, constants.FlashError, constants.MsgMembershipNotFound)
	case errors.Is(err, services.ErrInvalidRole):
		h.flash(w, r, constants.FlashError, constants.MsgInvalidRole)
	case err != nil:
		h.render.ServerError(w, r, err)
		return
	default:
		h.flash(w, r, constants.FlashSuccess, constants.MsgRoleChanged)
	}
	redirect(w, r, "/admin/memberships/")
}

// AdminDeleteMembershipHandler deletes any membership, owners included. POST only.
func (h *UIHandler) AdminDeleteMembershipHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.URLParamID(r, "id")
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	err := h.admin.DeleteMembership(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrMembershipNotFound):
		h.flash(w, r, constants.FlashError, constants.MsgMembershipNotFound)
	case err != nil:
		h.render.ServerError(w, r, err)
		return
	default:
		h.flash(w, r, constants.FlashSuccess, constants.MsgMembershipDeleted)
	}
	redirect(w, r, "/admin/memberships/")
}

// AdminTagsHandler lists tags and creates new ones on POST.
func (h *UIHandler) AdminTagsHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"PageTitle": "Tags",
		"Form":      forms.TagForm{},
		"Errors":    forms.Errors{},
	}

	if r.Method == http.MethodPost {
		form := forms.ParseTag(r)
		_, errs, err := h.admin.CreateTag(r.Context(), form)
		if err != nil {
			h.render.ServerError(w, r, err)
			return
		}
		if errs.Valid() {
			h.flash(w, r, constants.FlashSuccess, constants.MsgTagCreated)
			redirect(w, r, "/admin/tags/")
			return
		}
		data["Form"] = form
		data["Errors"] = errs
	}

	search, _ := adminFilters(r)
	list, err := h.admin.Tags(r.Context(), search, pageNumber(r))
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	data["List"] = list
	data["Pager"] = list.Pagination
	h.renderAdmin(w, r, "admin/tags.html", data)
}
