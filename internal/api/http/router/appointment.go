package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	// these paths share no prefix, so auth is attached per route rather than
	// through a group middleware that would also catch later public routes
	a := authed{api, authRequired}
	perm := func(act authorize.Action) fiber.Handler {
		return requirePerm(authorize.ResourceAppointment, act)
	}

	a.Post("/create-appointment/:patientUserId", perm(authorize.ActionCreate), ah.Create)
	a.Put("/cancel-appointment/:id", perm(authorize.ActionCancel), ah.Cancel)
	a.Put("/doctor/confirm-appointment/:id", perm(authorize.ActionConfirm), ah.Confirm)
	a.Put("/doctor/complete-appointment/:id", perm(authorize.ActionComplete), ah.Complete)
	a.Put("/update-appointment/:id", perm(authorize.ActionUpdate), ah.Update)
	a.Put("/admin/update-appointment/:id", perm(authorize.ActionOverride), ah.AdminUpdate)
	a.Delete("/delete-appointment/:id", perm(authorize.ActionDelete), ah.Delete)
	a.Delete("/delete-appointment-by-status/:status", perm(authorize.ActionDelete), ah.DeleteByStatus)

	a.Get("/user-appointment", perm(authorize.ActionList), ah.Mine)
	a.Get("/upcoming-appointments", perm(authorize.ActionList), ah.Upcoming)
	a.Get("/admin/upcoming-appointments", requirePerm(authorize.ResourceDashboard, authorize.ActionRead), ah.AdminUpcoming)
	a.Get("/appointments/status/:status", perm(authorize.ActionList), ah.ByStatus)
	a.Get("/appointments/:id", perm(authorize.ActionRead), ah.GetByID)
}

type authed struct {
	r    fiber.Router
	auth fiber.Handler
}

func (a authed) Get(path string, h ...fiber.Handler) {
	a.r.Get(path, a.auth, toAny(h)...)
}

func (a authed) Post(path string, h ...fiber.Handler) {
	a.r.Post(path, a.auth, toAny(h)...)
}

func (a authed) Put(path string, h ...fiber.Handler) {
	a.r.Put(path, a.auth, toAny(h)...)
}

func (a authed) Delete(path string, h ...fiber.Handler) {
	a.r.Delete(path, a.auth, toAny(h)...)
}

func toAny(hs []fiber.Handler) []any {
	out := make([]any, len(hs))
	for i, h := range hs {
		out[i] = h
	}
	return out
}
