package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/logging"
)

var ErrSessionNotFound = errors.New("session not found")

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   constants.FlashLevel `json:"level"`
	Message string               `json:"message"`
}

// SessionData is the server-side session. UserID is zero for anonymous
// sessions that only carry flash messages.
type SessionData struct {
	SessionID string    `json:"session_id"`
	UserID    uint      `json:"user_id"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionData) Authenticated() bool {
	return s != nil && s.UserID != 0
}

func (s *SessionData) AddFlash(level constants.FlashLevel, message string) {
	s.Flashes = append(s.Flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns and clears pending flashes.
func (s *SessionData) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// SessionBackend stores serialized sessions under a key with a TTL.
type SessionBackend interface {
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// SessionService manages user sessions in a SessionBackend
type SessionService struct {
	backend SessionBackend
	ttl     time.Duration
}

func NewSessionService(backend SessionBackend, ttl time.Duration) *SessionService {
	return &SessionService{
		backend: backend,
		ttl:     ttl,
	}
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

func sessionKey(sessionID string) string {
	return string(constants.CachePrefixSession) + sessionID
}

// CreateSession starts a new session for userID (zero for anonymous), carrying over flashes.
func (s *SessionService) CreateSession(ctx context.Context, userID uint, flashes []Flash) (*SessionData, error) {
	now := time.Now()
	session := &SessionData{
		SessionID: uuid.New().String(),
		UserID:    userID,
		Flashes:   flashes,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	logging.Debug("Session created", "user_id", userID)
	return session, nil
}

// GetSession retrieves a session, dropping it when expired
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	data, err := s.backend.Fetch(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, err
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.DeleteSession(ctx, sessionID)
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// SaveSession writes the session back with its remaining lifetime
func (s *SessionService) SaveSession(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionNotFound
	}

	if err := s.backend.Put(ctx, sessionKey(session.SessionID), data, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.backend.Remove(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RedisSessionBackend keeps sessions in Redis so they survive restarts and are
// shared between instances.
type RedisSessionBackend struct {
	redis *redis.Client
}

func NewRedisSessionBackend(client *redis.Client) *RedisSessionBackend {
	return &RedisSessionBackend{redis: client}
}

func (b *RedisSessionBackend) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return b.redis.Set(ctx, key, data, ttl).Err()
}

func (b *RedisSessionBackend) Fetch(ctx context.Context, key string) ([]byte, error) {
	val, err := b.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return val, nil
}

func (b *RedisSessionBackend) Remove(ctx context.Context, key string) error {
	return b.redis.Del(ctx, key).Err()
}

// MemorySessionBackend keeps sessions in process memory. Used when no Redis host
// is configured and in tests.
type MemorySessionBackend struct {
	cache *cache.Cache
}

func NewMemorySessionBackend() *MemorySessionBackend {
	return &MemorySessionBackend{cache: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (b *MemorySessionBackend) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	b.cache.Set(key, data, ttl)
	return nil
}

func (b *MemorySessionBackend) Fetch(_ context.Context, key string) ([]byte, error) {
	val, ok := b.cache.Get(key)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return val.([]byte), nil
}

func (b *MemorySessionBackend) Remove(_ context.Context, key string) error {
	b.cache.Delete(key)
	return nil
}
