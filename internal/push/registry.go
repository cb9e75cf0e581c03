// Package push keeps the live WebSocket connections of signed-in users and
// delivers JSON payloads to them. Delivery is best-effort: a slow client drops
// messages instead of blocking the sender, and nothing is persisted.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/fasthttp/websocket"

	"github.com/medibook/medibook_backend/pkg/observability"
)

const DefaultBufferSize = 16

// Conn is the write side of a WebSocket connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one registered connection.
type Client struct {
	UserID string

	conn Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// Done is closed once the client is disconnected and its writer has stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

type Registry struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // user id -> connections
	buffer  int
	metrics *observability.Metrics
}

func NewRegistry(buffer int, metrics *observability.Metrics) *Registry {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Registry{
		clients: make(map[string]map[*Client]struct{}),
		buffer:  buffer,
		metrics: metrics,
	}
}

// Connect registers conn for userID and starts its writer.
func (r *Registry) Connect(userID string, conn Conn) *Client {
	c := &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, r.buffer),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	if r.clients[userID] == nil {
		r.clients[userID] = make(map[*Client]struct{})
	}
	r.clients[userID][c] = struct{}{}
	r.mu.Unlock()

	r.metrics.PushConnections(context.Background(), 1)
	go r.writePump(c)
	return c
}

// Disconnect removes the client and closes its connection. Safe to call twice.
func (r *Registry) Disconnect(c *Client) {
	r.mu.Lock()
	set, ok := r.clients[c.UserID]
	if ok {
		if _, present := set[c]; !present {
			ok = false
		}
		delete(set, c)
		if len(set) == 0 {
			delete(r.clients, c.UserID)
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.metrics.PushConnections(context.Background(), -1)
	c.once.Do(func() { close(c.send) })
}

// Push marshals payload and queues it on every connection of userID.
// It returns how many connections accepted the message.
func (r *Registry) Push(userID string, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("push: marshal payload", "user_id", userID, "error", err)
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for c := range r.clients[userID] {
		select {
		case c.send <- data:
			delivered++
		default:
			slog.Debug("push: client buffer full, dropping message", "user_id", userID)
		}
	}
	return delivered
}

// Count returns the number of live connections for userID.
func (r *Registry) Count(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients[userID])
}

// Close disconnects every client.
func (r *Registry) Close() {
	r.mu.RLock()
	all := make([]*Client, 0)
	for _, set := range r.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range all {
		r.Disconnect(c)
	}
}

func (r *Registry) writePump(c *Client) {
	defer func() {
		_ = c.conn.Close()
		close(c.done)
	}()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Debug("push: write failed", "user_id", c.UserID, "error", err)
			go r.Disconnect(c)
			// drain until Disconnect closes the channel
			for range c.send {
			}
			return
		}
	}
}
