package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// memoryBus delivers in-process. Each subscription has its own ordered
// queue; a full queue drops the message.
type memoryBus struct {
	mu     sync.RWMutex
	subs   []*memorySub
	sync   bool
	closed bool
}

type memorySub struct {
	bus     *memoryBus
	pattern string
	h       Handler
	queue   chan Message
	done    chan struct{}
	once    sync.Once
}

const memoryQueueSize = 256

// NewMemory returns a Bus for single-instance deployments.
func NewMemory() Bus {
	return &memoryBus{}
}

// NewSyncMemory runs handlers inside Publish. Tests only.
func NewSyncMemory() Bus {
	return &memoryBus{sync: true}
}

func (b *memoryBus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	m := Message{Subject: subject, Data: slices.Clone(data)}
	for _, s := range b.subs {
		if !Match(s.pattern, subject) {
			continue
		}
		if b.sync {
			s.h(ctx, m)
			continue
		}
		select {
		case s.queue <- m:
		default:
			slog.Warn("event dropped, subscriber queue full", "subject", subject, "pattern", s.pattern)
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(subject string, h Handler) (Subscription, error) {
	s := &memorySub{bus: b, pattern: subject, h: h, done: make(chan struct{})}
	if !b.sync {
		s.queue = make(chan Message, memoryQueueSize)
		go s.run()
	}

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s, nil
}

func (s *memorySub) run() {
	for {
		select {
		case m := <-s.queue:
			s.h(context.Background(), m)
		case <-s.done:
			return
		}
	}
}

func (s *memorySub) Unsubscribe() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		s.bus.subs = slices.DeleteFunc(s.bus.subs, func(x *memorySub) bool { return x == s })
		s.bus.mu.Unlock()
		close(s.done)
	})
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.closed = true
	b.mu.Unlock()

	for _, s := range subs {
		s.once.Do(func() { close(s.done) })
	}
	return nil
}
