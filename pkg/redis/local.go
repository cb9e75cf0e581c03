package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// localLocker is an in-process Locker for tests and one-shot CLI commands.
type localLocker struct {
	mu    sync.Mutex
	held  map[string]chan struct{}
	retry time.Duration
}

func NewLocalLocker() Locker {
	return &localLocker{held: map[string]chan struct{}{}, retry: 5 * time.Millisecond}
}

func (l *localLocker) WithLock(ctx context.Context, key string, wait time.Duration, fn func(ctx context.Context) error) error {
	deadline := time.Now().Add(wait)
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			break
		}
		l.mu.Unlock()

		if time.Now().After(deadline) {
			return ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		case <-time.After(l.retry):
		}
	}

	defer func() {
		l.mu.Lock()
		close(l.held[key])
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}

// memorySessions is a SessionStore kept in process memory.
type memorySessions struct {
	mu   sync.Mutex
	now  func() time.Time
	rows map[uuid.UUID]time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessions{now: time.Now, rows: map[uuid.UUID]time.Time{}}
}

func (s *memorySessions) Create(_ context.Context, sessionID, _ uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sessionID] = s.now().Add(ttl)
	return nil
}

func (s *memorySessions) Exists(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.rows[sessionID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.rows, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *memorySessions) Delete(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, sessionID)
	return nil
}
