package ui

import (
	"errors"
	"net/http"

	"portal-united/directory/internal/auth"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/services"
)

// SignupHandler shows and processes the registration form.
func (h *UIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if auth.CurrentUser(r.Context()) != nil {
		redirect(w, r, "/")
		return
	}

	data := map[string]interface{}{
		"PageTitle": "Sign up",
		"Form":      forms.RegisterForm{},
		"Errors":    forms.Errors{},
	}

	if r.Method != http.MethodPost {
		h.render.RenderTemplate(w, r, http.StatusOK, "accounts/signup.html", data)
		return
	}

	form := forms.ParseRegister(r)
	user, errs, err := h.accounts.Register(r.Context(), form)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	if !errs.Valid() {
		form.Password1, form.Password2 = "", ""
		data["Form"] = form
		data["Errors"] = errs
		h.render.RenderTemplate(w, r, http.StatusOK, "accounts/signup.html", data)
		return
	}

	h.flash(w, r, constants.FlashSuccess, constants.MsgRegistered)
	if _, err := h.sessions.Login(w, r, user.ID); err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	redirect(w, r, "/")
}

// LoginHandler shows and processes the login form.
func (h *UIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if auth.CurrentUser(r.Context()) != nil {
		redirect(w, r, safeNext(r.URL.Query().Get("next")))
		return
	}

	data := map[string]interface{}{
		"PageTitle": "Log in",
		"Form":      forms.LoginForm{Next: r.URL.Query().Get("next")},
		"Errors":    forms.Errors{},
	}

	if r.Method != http.MethodPost {
		h.render.RenderTemplate(w, r, http.StatusOK, "accounts/login.html", data)
		return
	}

	form := forms.ParseLogin(r)
	errs := form.Validate()
	form.Password = ""
	data["Form"] = form
	data["Errors"] = errs
	if !errs.Valid() {
		h.render.RenderTemplate(w, r, http.StatusOK, "accounts/login.html", data)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), form.Username, r.PostFormValue("password"))
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		errs.Add(forms.NonField, constants.MsgInvalidCredentials)
		h.render.RenderTemplate(w, r, http.StatusOK, "accounts/login.html", data)
		return
	case errors.Is(err, services.ErrAccountInactive):
		errs.Add(forms.NonField, constants.MsgAccountInactive)
		h.render.RenderTemplate(w, r, http.StatusOK, "accounts/login.html", data)
		return
	case err != nil:
		h.render.ServerError(w, r, err)
		return
	}

	if _, err := h.sessions.Login(w, r, user.ID); err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	redirect(w, r, safeNext(form.Next))
}

// LogoutHandler ends the session. POST only.
func (h *UIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if user := auth.CurrentUser(r.Context()); user != nil {
		logging.Info("User logged out", "user_id", user.ID)
	}
	h.sessions.Logout(w, r, constants.MsgLoggedOut)
	redirect(w, r, "/")
}
