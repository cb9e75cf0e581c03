package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

func (r *Router) registerAuthRoutes(
	api fiber.Router,
	ah *handler.AuthHandler,
	uh *handler.UserHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	api.Post("/login", ah.Login)
	api.Post("/register", ah.Register)
	api.Post("/logout", authRequired, ah.Logout)

	api.Get("/me", authRequired, ah.Me)
	api.Put("/me", authRequired, requirePerm(authorize.ResourceUser, authorize.ActionUpdate), uh.UpdateMe)
	api.Put("/me/password", authRequired, requirePerm(authorize.ResourceUser, authorize.ActionUpdate), uh.ChangePassword)
}
