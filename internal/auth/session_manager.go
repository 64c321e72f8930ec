package auth

import (
	"context"
	"errors"
	"net/http"

	"portal-united/directory/internal/common"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/logging"
)

const SessionCookieName = "sessionid"

// SessionManager ties the session store to the browser cookie.
type SessionManager struct {
	sessions *common.SessionService
	secure   bool
}

func NewSessionManager(sessions *common.SessionService, secure bool) *SessionManager {
	return &SessionManager{sessions: sessions, secure: secure}
}

// Load returns the session referenced by the request cookie, or nil.
func (m *SessionManager) Load(r *http.Request) *common.SessionData {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := m.sessions.GetSession(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, common.ErrSessionNotFound) {
			logging.Warn("Failed to load session", "error", err)
		}
		return nil
	}
	return session
}

// Login replaces whatever session the request had with a fresh one for userID.
// Pending flashes survive the rotation.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID uint) (*common.SessionData, error) {
	var flashes []common.Flash
	if old := GetSessionData(r.Context()); old != nil {
		flashes = old.PopFlashes()
		_ = m.sessions.DeleteSession(r.Context(), old.SessionID)
	}

	session, err := m.sessions.CreateSession(r.Context(), userID, flashes)
	if err != nil {
		return nil, err
	}
	m.setCookie(w, session)
	return session, nil
}

// Logout drops the user's session and leaves an anonymous one holding message.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request, message string) {
	if old := GetSessionData(r.Context()); old != nil {
		if err := m.sessions.DeleteSession(r.Context(), old.SessionID); err != nil {
			logging.Warn("Failed to delete session", "error", err)
		}
	}

	flashes := []common.Flash{{Level: constants.FlashSuccess, Message: message}}
	session, err := m.sessions.CreateSession(r.Context(), 0, flashes)
	if err != nil {
		m.clearCookie(w)
		return
	}
	m.setCookie(w, session)
}

// AddFlash queues a message for the next page, creating an anonymous session when needed.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, level constants.FlashLevel, message string) {
	session := GetSessionData(r.Context())
	if session == nil {
		created, err := m.sessions.CreateSession(r.Context(), 0, []common.Flash{{Level: level, Message: message}})
		if err != nil {
			logging.Error("Failed to create session for flash", "error", err)
			return
		}
		m.setCookie(w, created)
		*r = *r.WithContext(SetSessionData(r.Context(), created))
		return
	}

	session.AddFlash(level, message)
	m.save(r.Context(), session)
}

// PopFlashes returns the queued messages and clears them from the store.
func (m *SessionManager) PopFlashes(r *http.Request) []common.Flash {
	session := GetSessionData(r.Context())
	if session == nil || len(session.Flashes) == 0 {
		return nil
	}

	flashes := session.PopFlashes()
	m.save(r.Context(), session)
	return flashes
}

func (m *SessionManager) save(ctx context.Context, session *common.SessionData) {
	if err := m.sessions.SaveSession(ctx, session); err != nil {
		logging.Warn("Failed to save session", "error", err)
	}
}

func (m *SessionManager) setCookie(w http.ResponseWriter, session *common.SessionData) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.SessionID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(m.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
