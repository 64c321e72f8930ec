package ui

import (
	"errors"
	"net/http"
	"strings"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/middleware"
	"portal-united/directory/internal/services"
)

var membershipMessages = []struct {
	err error
	msg string
}{
	{services.ErrNotMember, constants.MsgNotMember},
	{services.ErrAlreadyMember, constants.MsgAlreadyMember},
	{services.ErrPermissionDenied, constants.MsgPermissionDenied},
	{services.ErrOwnerCannotLeave, constants.MsgOwnerCannotLeave},
	{services.ErrAdminCannotLeave, constants.MsgAdminCannotLeave},
	{services.ErrInvalidRole, constants.MsgInvalidRole},
	{services.ErrSelfRoleChange, constants.MsgCannotChangeOwnRole},
	{services.ErrRoleNotAllowed, constants.MsgRoleNotAllowed},
	{services.ErrTargetProtected, constants.MsgCannotEditTarget},
	{services.ErrSelfRemoval, constants.MsgCannotRemoveSelf},
	{services.ErrOwnerRemoval, constants.MsgCannotRemoveOwner},
	{services.ErrLeaderRemoveLimit, constants.MsgLeaderRemoveLimit},
	{services.ErrInviteRevoked, constants.MsgInviteInvalid},
	{repositories.ErrMembershipNotFound, constants.MsgMembershipNotFound},
	{repositories.ErrCommunityNotFound, constants.MsgCommunityNotFound},
}

// membershipMessage maps a rejected membership operation to its flash text.
func membershipMessage(err error) (string, bool) {
	for _, m := range membershipMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "", false
}

// HomeHandler renders the landing page.
func (h *UIHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	home, err := h.communities.Home(r.Context())
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"PageTitle": "Portal UNITED",
		"Home":      home,
	}

	if user := auth.CurrentUser(r.Context()); user != nil {
		mine, err := h.memberships.MyCommunities(r.Context(), user.ID)
		if err != nil {
			h.render.ServerError(w, r, err)
			return
		}
		data["MyMemberships"] = mine
	}

	h.render.RenderTemplate(w, r, http.StatusOK, "home.html", data)
}

// CommunityListHandler renders the public directory with its filters.
func (h *UIHandler) CommunityListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.communities.List(r.Context(), services.DirectoryQuery{
		City:         strings.TrimSpace(q.Get("city")),
		Denomination: q.Get("denomination"),
		Tag:          q.Get("tag"),
		Search:       strings.TrimSpace(q.Get("search")),
		Page:         pageNumber(r),
	})
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	tags, err := h.communities.AllTags(r.Context())
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	filters := r.URL.Query()
	filters.Del("page")

	h.render.RenderTemplate(w, r, http.StatusOK, "communities/list.html", map[string]interface{}{
		"PageTitle":     "Communities",
		"Result":        result,
		"Tags":          tags,
		"Denominations": constants.Denominations,
		"Query":         filters,
		"Pager":         result.Pagination,
	})
}

// CommunityDetailHandler shows a community with its members.
func (h *UIHandler) CommunityDetailHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())

	members, err := h.memberships.Members(r.Context(), access.Community.ID)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.render.RenderTemplate(w, r, http.StatusOK, "communities/detail.html", map[string]interface{}{
		"PageTitle":  access.Community.Name,
		"Community":  access.Community,
		"Members":    members,
		"Membership": access.Membership,
		"CanEdit":    access.Actor.CanEdit(),
		"CanManage":  access.Actor.CanManage(),
	})
}

func (h *UIHandler) renderCommunityForm(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	tags, err := h.communities.AllTags(r.Context())
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	data["Tags"] = tags
	data["Denominations"] = constants.Denominations
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.Errors{}
	}
	h.render.RenderTemplate(w, r, http.StatusOK, name, data)
}

// CommunityCreateHandler lets a logged-in person found a community; they become its owner.
func (h *UIHandler) CommunityCreateHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"PageTitle": "Create a community",
		"Form":      forms.CommunityForm{},
	}

	if r.Method != http.MethodPost {
		h.renderCommunityForm(w, r, "communities/form.html", data)
		return
	}

	form := forms.ParseCommunity(r, false)
	if errs := form.Validate(); !errs.Valid() {
		data["Form"] = form
		data["Errors"] = errs
		h.renderCommunityForm(w, r, "communities/form.html", data)
		return
	}

	community, err := h.communities.Create(r.Context(), auth.CurrentUser(r.Context()), form)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.flash(w, r, constants.FlashSuccess, constants.MsgCommunityCreated)
	redirect(w, r, communityURL(community.ID))
}

// CommunityEditHandler edits the community profile. Gated to owners and admins.
func (h *UIHandler) CommunityEditHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())
	community := access.Community

	data := map[string]interface{}{
		"PageTitle": "Edit " + community.Name,
		"Community": community,
		"Form":      forms.CommunityFormFrom(community),
	}

	if r.Method != http.MethodPost {
		h.renderCommunityForm(w, r, "communities/form.html", data)
		return
	}

	form := forms.ParseCommunity(r, true)
	if errs := form.Validate(); !errs.Valid() {
		data["Form"] = form
		data["Errors"] = errs
		h.renderCommunityForm(w, r, "communities/form.html", data)
		return
	}

	if err := h.communities.Update(r.Context(), community, form); err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.flash(w, r, constants.FlashSuccess, constants.MsgCommunityUpdated)
	redirect(w, r, communityURL(community.ID))
}

// JoinHandler adds the current user as a member. POST only.
func (h *UIHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())
	user := auth.CurrentUser(r.Context())

	if _, err := h.memberships.Join(r.Context(), user.ID, access.Community.ID); err != nil {
		if !h.flashMembershipError(w, r, err) {
			return
		}
	} else {
		h.flash(w, r, constants.FlashSuccess, constants.MsgJoined)
	}
	redirect(w, r, communityURL(access.Community.ID))
}

// LeaveHandler removes the current user's own membership. POST only.
func (h *UIHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())
	user := auth.CurrentUser(r.Context())

	if err := h.memberships.Leave(r.Context(), user.ID, access.Community.ID); err != nil {
		if !h.flashMembershipError(w, r, err) {
			return
		}
	} else {
		h.flash(w, r, constants.FlashSuccess, constants.MsgLeft)
	}
	redirect(w, r, communityURL(access.Community.ID))
}

// flashMembershipError queues the message for a rejected operation. It returns
// false after rendering a 500 for errors that are not user mistakes.
func (h *UIHandler) flashMembershipError(w http.ResponseWriter, r *http.Request, err error) bool {
	msg, ok := membershipMessage(err)
	if !ok {
		h.render.ServerError(w, r, err)
		return false
	}
	h.flash(w, r, constants.FlashError, msg)
	return true
}

func (h *UIHandler) renderManage(w http.ResponseWriter, r *http.Request, extra map[string]interface{}) {
	access := auth.GetCommunityAccess(r.Context())

	members, err := h.memberships.Members(r.Context(), access.Community.ID)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"PageTitle":      "Manage " + access.Community.Name,
		"Community":      access.Community,
		"Members":        members,
		"Actor":          access.Actor,
		"GrantableRoles": access.Actor.GrantableRoles(),
		"CanChangeRoles": access.Actor.CanChangeRoles(),
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render.RenderTemplate(w, r, http.StatusOK, "communities/manage.html", data)
}

// ManageHandler lists members with role and removal controls.
func (h *UIHandler) ManageHandler(w http.ResponseWriter, r *http.Request) {
	h.renderManage(w, r, nil)
}

// ChangeRoleHandler updates another member's role. POST only.
func (h *UIHandler) ChangeRoleHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())
	back := manageURL(access.Community.ID)

	membershipID, ok := middleware.URLParamID(r, "membershipID")
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	form := forms.ParseRole(r)
	if errs := form.Validate(); !errs.Valid() {
		h.flash(w, r, constants.FlashError, constants.MsgInvalidRole)
		redirect(w, r, back)
		return
	}

	_, err := h.memberships.ChangeRole(r.Context(), access.Actor, access.Community.ID, membershipID, constants.MembershipRole(form.Role))
	if err != nil {
		if !h.flashMembershipError(w, r, err) {
			return
		}
	} else {
		h.flash(w, r, constants.FlashSuccess, constants.MsgRoleChanged)
	}
	redirect(w, r, back)
}

// RemoveMemberHandler deletes another member's membership. POST only.
func (h *UIHandler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())
	back := manageURL(access.Community.ID)

	membershipID, ok := middleware.URLParamID(r, "membershipID")
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	if _, err := h.memberships.Remove(r.Context(), access.Actor, access.Community.ID, membershipID); err != nil {
		if !h.flashMembershipError(w, r, err) {
			return
		}
	} else {
		h.flash(w, r, constants.FlashSuccess, constants.MsgMemberRemoved)
	}
	redirect(w, r, back)
}
