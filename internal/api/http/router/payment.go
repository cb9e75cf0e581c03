package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

func (r *Router) registerPaymentRoutes(
	api fiber.Router,
	ph *handler.PaymentHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	// gateway IPN, authenticated by its signature
	api.Post("/callback", ph.Callback)

	p := api.Group("/payment", authRequired)
	p.Post("/:appointmentId", requirePerm(authorize.ResourcePayment, authorize.ActionCreate), ph.Initiate)
	p.Get("/:appointmentId/status", requirePerm(authorize.ResourcePayment, authorize.ActionRead), ph.Status)
}
