package ui

import (
	"net/http"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/forms"
)

// ProfileHandler shows the current user's profile and communities.
func (h *UIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())

	profile, err := h.profiles.Profile(r.Context(), user)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	memberships, err := h.memberships.MyCommunities(r.Context(), user.ID)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.render.RenderTemplate(w, r, http.StatusOK, "profile/profile.html", map[string]interface{}{
		"PageTitle":   "My profile",
		"Profile":     profile,
		"Memberships": memberships,
	})
}

// ProfileEditHandler edits the person profile.
func (h *UIHandler) ProfileEditHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())

	profile, err := h.profiles.Profile(r.Context(), user)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"PageTitle": "Edit profile",
		"Form":      forms.ProfileFormFrom(profile),
		"Errors":    forms.Errors{},
	}

	if r.Method != http.MethodPost {
		h.render.RenderTemplate(w, r, http.StatusOK, "profile/edit.html", data)
		return
	}

	form := forms.ParseProfile(r)
	if errs := form.Validate(); !errs.Valid() {
		data["Form"] = form
		data["Errors"] = errs
		h.render.RenderTemplate(w, r, http.StatusOK, "profile/edit.html", data)
		return
	}

	if err := h.profiles.Update(r.Context(), profile, form); err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	h.flash(w, r, constants.FlashSuccess, constants.MsgProfileUpdated)
	redirect(w, r, "/profile/")
}
