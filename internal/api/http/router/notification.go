package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

func (r *Router) registerNotificationRoutes(
	api fiber.Router,
	nh *handler.NotificationHandler,
	ph *handler.PushHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	perm := func(act authorize.Action) fiber.Handler {
		return requirePerm(authorize.ResourceNotification, act)
	}

	n := api.Group("/notification", authRequired)
	n.Get("/", perm(authorize.ActionList), nh.List)
	n.Get("/unread-count", perm(authorize.ActionRead), nh.UnreadCount)
	n.Post("/", perm(authorize.ActionCreate), nh.Create)
	n.Put("/read-all", perm(authorize.ActionUpdate), nh.MarkAllRead)
	n.Put("/:id/read", perm(authorize.ActionUpdate), nh.MarkRead)
	n.Put("/:id", perm(authorize.ActionUpdate), nh.Update)
	n.Delete("/:id", perm(authorize.ActionDelete), nh.Delete)

	api.Get("/ws", authRequired, perm(authorize.ActionRead), ph.Connect)
}
