package common

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"portal-united/directory/internal/constants"
)

var (
	ErrInviteInvalid = errors.New("invalid invitation")
	ErrInviteUsed    = errors.New("invitation already used")
)

// Invite is a verified invitation token.
type Invite struct {
	CommunityID uint
	InviterID   uint
	TokenID     string
	ExpiresAt   time.Time
}

type inviteClaims struct {
	CommunityID uint `json:"community_id"`
	jwt.RegisteredClaims
}

// InviteSigner mints and verifies single-use invitation links
type InviteSigner struct {
	secretKey []byte
	ttl       time.Duration
	used      CacheInterface
}

func NewInviteSigner(secretKey []byte, ttl time.Duration, used CacheInterface) *InviteSigner {
	return &InviteSigner{
		secretKey: secretKey,
		ttl:       ttl,
		used:      used,
	}
}

// Generate signs an invitation to communityID issued by inviterID
func (s *InviteSigner) Generate(communityID, inviterID uint) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := inviteClaims{
		CommunityID: communityID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatUint(uint64(inviterID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign invitation: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry without consuming the token
func (s *InviteSigner) Verify(tokenString string) (*Invite, error) {
	var claims inviteClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInviteInvalid, err)
	}

	inviterID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || inviterID == 0 || claims.CommunityID == 0 || claims.ID == "" {
		return nil, ErrInviteInvalid
	}

	if _, used := s.used.Get(usedInviteKey(claims.ID)); used {
		return nil, ErrInviteUsed
	}

	return &Invite{
		CommunityID: claims.CommunityID,
		InviterID:   uint(inviterID),
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Consume marks the invitation used; it fails if another request got there first
func (s *InviteSigner) Consume(invite *Invite) error {
	ttl := time.Until(invite.ExpiresAt)
	if ttl <= 0 {
		return ErrInviteInvalid
	}
	if !s.used.Add(usedInviteKey(invite.TokenID), true, ttl) {
		return ErrInviteUsed
	}
	return nil
}

// Release makes a consumed invitation usable again after a failed join
func (s *InviteSigner) Release(invite *Invite) {
	s.used.Delete(usedInviteKey(invite.TokenID))
}

func usedInviteKey(tokenID string) string {
	return string(constants.CachePrefixUsedInvite) + tokenID
}
