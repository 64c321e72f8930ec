package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func newTestSigner(ttl time.Duration) *InviteSigner {
	return NewInviteSigner([]byte("test-secret"), ttl, NewCacheService(time.Hour, time.Hour, nil))
}

func TestInviteSigner_SingleUse(t *testing.T) {
	signer := newTestSigner(time.Hour)

	token, expiresAt, err := signer.Generate(7, 3)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	invite, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), invite.CommunityID)
	assert.Equal(t, uint(3), invite.InviterID)

	require.NoError(t, signer.Consume(invite))
	assert.ErrorIs(t, signer.Consume(invite), ErrInviteUsed)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInviteUsed)

	signer.Release(invite)
	_, err = signer.Verify(token)
	assert.NoError(t, err)
}

func TestInviteSigner_RejectsBadTokens(t *testing.T) {
	signer := newTestSigner(time.Hour)
	token, _, err := signer.Generate(7, 3)
	require.NoError(t, err)

	other := NewInviteSigner([]byte("other-secret"), time.Hour, NewCacheService(time.Hour, time.Hour, nil))
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInviteInvalid)

	_, err = signer.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInviteInvalid)

	_, err = signer.Verify("")
	assert.ErrorIs(t, err, ErrInviteInvalid)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, inviteClaims{
		CommunityID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = signer.Verify(signed)
	assert.ErrorIs(t, err, ErrInviteInvalid)

	noCommunity := jwt.NewWithClaims(jwt.SigningMethodHS256, inviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "y",
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err = noCommunity.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = signer.Verify(signed)
	assert.ErrorIs(t, err, ErrInviteInvalid)
}

func TestCacheService_AddAndGetOrSet(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute, nil)

	assert.True(t, c.Add("k", 1, time.Minute))
	assert.False(t, c.Add("k", 2, time.Minute))

	calls := 0
	loader := func() (any, error) {
		calls++
		return "loaded", nil
	}
	v, err := c.GetOrSet("lazy", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	_, err = c.GetOrSet("lazy", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	c.Delete("lazy")
	_, found := c.Get("lazy")
	assert.False(t, found)
}
