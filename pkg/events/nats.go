package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type natsBus struct {
	nc *nats.Conn
}

// NewNATS wraps an open connection. Close drains it.
func NewNATS(nc *nats.Conn) Bus {
	return &natsBus{nc: nc}
}

func (b *natsBus) Publish(_ context.Context, subject string, data []byte) error {
	if err := b.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

func (b *natsBus) Subscribe(subject string, h Handler) (Subscription, error) {
	sub, err := b.nc.Subscribe(subject, func(msg *nats.Msg) {
		h(context.Background(), Message{Subject: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}
	return sub, nil
}

func (b *natsBus) Close() error {
	return b.nc.Drain()
}
