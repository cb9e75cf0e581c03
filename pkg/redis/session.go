package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps login sessions so tokens can be revoked before expiry.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error
	Exists(ctx context.Context, sessionID uuid.UUID) (bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type redisSessions struct {
	rdb *goredis.Client
}

func NewSessionStore(rdb *goredis.Client) SessionStore {
	return &redisSessions{rdb: rdb}
}

func sessionKey(id uuid.UUID) string { return "session:" + id.String() }

func (s *redisSessions) Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(sessionID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *redisSessions) Exists(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n == 1, nil
}

func (s *redisSessions) Delete(ctx context.Context, sessionID uuid.UUID) error {
	n, err := s.rdb.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
