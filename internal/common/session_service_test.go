package common

import (
	"context"
	"testing"
	"time"

	"portal-united/directory/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_RoundTrip(t *testing.T) {
	svc := NewSessionService(NewMemorySessionBackend(), time.Hour)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, 42, []Flash{{Level: constants.FlashInfo, Message: "carried"}})
	require.NoError(t, err)
	assert.True(t, session.Authenticated())

	session.AddFlash(constants.FlashSuccess, "saved")
	require.NoError(t, svc.SaveSession(ctx, session))

	loaded, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, uint(42), loaded.UserID)

	flashes := loaded.PopFlashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, "carried", flashes[0].Message)
	assert.Equal(t, constants.FlashSuccess, flashes[1].Level)
	assert.Empty(t, loaded.Flashes)

	require.NoError(t, svc.DeleteSession(ctx, session.SessionID))
	_, err = svc.GetSession(ctx, session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_AnonymousSession(t *testing.T) {
	svc := NewSessionService(NewMemorySessionBackend(), time.Hour)

	session, err := svc.CreateSession(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.False(t, session.Authenticated())

	var nilSession *SessionData
	assert.False(t, nilSession.Authenticated())
}

func TestSessionService_ExpiredSessionIsDropped(t *testing.T) {
	backend := NewMemorySessionBackend()
	svc := NewSessionService(backend, time.Hour)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, 1, nil)
	require.NoError(t, err)

	// backend still holds it but the payload says it is expired
	session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, backend.Put(ctx, sessionKey(session.SessionID), mustJSON(t, session), time.Hour))

	_, err = svc.GetSession(ctx, session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = backend.Fetch(ctx, sessionKey(session.SessionID))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.SaveSession(ctx, session), ErrSessionNotFound)
}
