package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/lokapasar/lokapasar-backend/pkg/config"
	redisclient "github.com/lokapasar/lokapasar-backend/pkg/redis"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// Store tracks active sessions in Redis, keyed by the JWT jti. A revoked
// session invalidates its token before expiry.
type Store struct {
	kv  sessionStore
	ttl time.Duration
}

// NewStore constructs a session store backed by Redis.
func NewStore(client *redisclient.Client, cfg config.JWTConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive")
	}
	return &Store{kv: client, ttl: ttl}, nil
}

// Create registers a session for the given jti and user.
func (s *Store) Create(ctx context.Context, sessionID string, userID int64) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return s.kv.Set(ctx, redisclient.SessionKey(sessionID), fmt.Sprintf("%d", userID), s.ttl)
}

// HasSession reports whether the session is still active.
func (s *Store) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	if _, err := s.kv.Get(ctx, redisclient.SessionKey(sessionID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke ends the session; the matching token stops validating immediately.
func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return s.kv.Del(ctx, redisclient.SessionKey(sessionID))
}
