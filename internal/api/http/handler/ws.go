package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"

	"github.com/medibook/medibook_backend/internal/push"
	"github.com/medibook/medibook_backend/internal/service/notification"
)

var upgrader = websocket.FastHTTPUpgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the token query parameter is the credential; origin is not checked
	CheckOrigin: func(*fasthttp.RequestCtx) bool { return true },
}

type PushHandler struct {
	registry  *push.Registry
	notif     notification.Service
	limit     int
	writeWait time.Duration
}

func NewPushHandler(registry *push.Registry, notif notification.Service, limit int, writeWait time.Duration) *PushHandler {
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &PushHandler{registry: registry, notif: notif, limit: limit, writeWait: writeWait}
}

// deadlineConn bounds every write so a stalled client cannot pin the writer.
type deadlineConn struct {
	*websocket.Conn
	wait time.Duration
}

func (d deadlineConn) WriteMessage(messageType int, data []byte) error {
	_ = d.SetWriteDeadline(time.Now().Add(d.wait))
	return d.Conn.WriteMessage(messageType, data)
}

// GET /ws?token=...
func (h *PushHandler) Connect(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	if !websocket.FastHTTPIsWebSocketUpgrade(c.RequestCtx()) {
		return fail(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
	}
	userID := actor.UserID.String()

	err := upgrader.Upgrade(c.RequestCtx(), func(conn *websocket.Conn) {
		client := h.registry.Connect(userID, deadlineConn{Conn: conn, wait: h.writeWait})
		defer h.registry.Disconnect(client)

		if snap, err := h.notif.Snapshot(context.Background(), userID, h.limit); err == nil {
			h.registry.Push(userID, snap)
		} else {
			slog.Warn("push: initial snapshot failed", "user_id", userID, "error", err)
		}

		// clients only listen; reading detects the close
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	if err != nil {
		slog.Debug("websocket upgrade failed", "user_id", userID, "error", err)
	}
	return nil
}
