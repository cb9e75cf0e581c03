package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLocalLockerSerializes(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(ctx, "k", time.Second, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Errorf("WithLock: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxInside)
	}
}

func TestLocalLockerBusy(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	err := l.WithLock(ctx, "k", 0, func(ctx context.Context) error {
		return l.WithLock(ctx, "k", 10*time.Millisecond, func(context.Context) error { return nil })
	})
	if !errors.Is(err, ErrLockBusy) {
		t.Errorf("err = %v, want ErrLockBusy", err)
	}

	// different keys do not contend
	err = l.WithLock(ctx, "a", 0, func(ctx context.Context) error {
		return l.WithLock(ctx, "b", 0, func(context.Context) error { return nil })
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore().(*memorySessions)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()
	sid := uuid.New()

	if err := s.Create(ctx, sid, uuid.New(), time.Hour); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, sid); !ok {
		t.Error("session should exist")
	}

	now = now.Add(time.Hour)
	if ok, _ := s.Exists(ctx, sid); ok {
		t.Error("session should have expired")
	}

	_ = s.Create(ctx, sid, uuid.New(), time.Hour)
	_ = s.Delete(ctx, sid)
	if ok, _ := s.Exists(ctx, sid); ok {
		t.Error("session should be deleted")
	}
}
