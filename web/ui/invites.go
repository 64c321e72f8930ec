package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/common"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/services"
)

// absoluteURL builds a link for path on the host the request came in on.
// The forwarded headers are set by the reverse proxy.
func absoluteURL(r *http.Request, path string) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}

	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + strings.TrimSuffix(host, "/") + path
}

// CreateInviteHandler mints a single-use invitation link and shows it on the manage page.
func (h *UIHandler) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	access := auth.GetCommunityAccess(r.Context())
	user := auth.CurrentUser(r.Context())

	token, expiresAt, err := h.invites.Generate(access.Community.ID, user.ID)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	logging.Info("Invitation created",
		"community_id", access.Community.ID,
		"inviter_id", user.ID,
		"expires_at", expiresAt,
	)

	h.flash(w, r, constants.FlashSuccess, constants.MsgInviteCreated)
	h.renderManage(w, r, map[string]interface{}{
		"InviteURL":       absoluteURL(r, "/invite/accept?token="+url.QueryEscape(token)),
		"InviteExpiresAt": expiresAt,
	})
}

// AcceptInviteHandler shows the invitation on GET and joins on POST.
func (h *UIHandler) AcceptInviteHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	token := r.FormValue("token")

	invite, err := h.invites.Verify(token)
	if err != nil {
		logging.Info("Rejected invitation", "user_id", user.ID, "error", err)
		h.flash(w, r, constants.FlashError, constants.MsgInviteInvalid)
		redirect(w, r, "/communities/")
		return
	}

	community, err := h.communities.Get(r.Context(), invite.CommunityID)
	if err != nil {
		if msg, ok := membershipMessage(err); ok {
			h.flash(w, r, constants.FlashError, msg)
			redirect(w, r, "/communities/")
			return
		}
		h.render.ServerError(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		h.render.RenderTemplate(w, r, http.StatusOK, "communities/invite.html", map[string]interface{}{
			"PageTitle": "Invitation to " + community.Name,
			"Community": community,
			"Token":     token,
		})
		return
	}

	if err := h.invites.Consume(invite); err != nil {
		if !errors.Is(err, common.ErrInviteUsed) && !errors.Is(err, common.ErrInviteInvalid) {
			h.render.ServerError(w, r, err)
			return
		}
		h.flash(w, r, constants.FlashError, constants.MsgInviteInvalid)
		redirect(w, r, communityURL(community.ID))
		return
	}

	inviter, err := h.accounts.User(r.Context(), invite.InviterID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		h.invites.Release(invite)
		h.render.ServerError(w, r, err)
		return
	}

	if _, err := h.memberships.AcceptInvite(r.Context(), user.ID, community.ID, inviter); err != nil {
		// the link stays valid for someone else
		h.invites.Release(invite)
		if errors.Is(err, services.ErrAlreadyMember) {
			h.flash(w, r, constants.FlashInfo, constants.MsgAlreadyMember)
			redirect(w, r, communityURL(community.ID))
			return
		}
		if !h.flashMembershipError(w, r, err) {
			return
		}
		redirect(w, r, communityURL(community.ID))
		return
	}

	h.flash(w, r, constants.FlashSuccess, constants.MsgJoined)
	redirect(w, r, communityURL(community.ID))
}
