package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates the presented session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionManager owns the server-side session lifecycle: an opaque id mapped
// to a user id, expiring after the configured TTL.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, sessionID string) (string, error)
	Destroy(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "session:"

type redisSessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionManager builds a Redis-backed session manager.
func NewRedisSessionManager(client *redis.Client, ttl time.Duration) SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisSessionManager{client: client, ttl: ttl}
}

func (m *redisSessionManager) Create(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.NewString()
	if err := m.client.Set(ctx, sessionKeyPrefix+sessionID, userID, m.ttl).Err(); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (m *redisSessionManager) Resolve(ctx context.Context, sessionID string) (string, error) {
	userID, err := m.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (m *redisSessionManager) Destroy(ctx context.Context, sessionID string) error {
	return m.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
