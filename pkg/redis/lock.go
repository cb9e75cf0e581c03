package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrLockBusy = errors.New("lock is held by another request")

// Locker serializes work on a key across instances.
type Locker interface {
	// WithLock runs fn while holding key. It waits up to wait for the lock.
	WithLock(ctx context.Context, key string, wait time.Duration, fn func(ctx context.Context) error) error
}

type redisLocker struct {
	rdb   *goredis.Client
	ttl   time.Duration
	retry time.Duration
}

func NewLocker(rdb *goredis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisLocker{rdb: rdb, ttl: ttl, retry: 50 * time.Millisecond}
}

// compare-and-delete so an expired holder cannot release a newer lock
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *redisLocker) WithLock(ctx context.Context, key string, wait time.Duration, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	key = "lock:" + key

	deadline := time.Now().Add(wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}

	defer func() {
		// release even when ctx was canceled mid-work
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(rctx, l.rdb, []string{key}, token).Err()
	}()

	return fn(ctx)
}
