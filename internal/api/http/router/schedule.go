package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

func (r *Router) registerScheduleRoutes(
	api fiber.Router,
	sh *handler.ScheduleHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	api.Get("/schedules/doctor/:doctorId", sh.ListByDoctor)

	s := api.Group("/schedules", authRequired)
	s.Get("/mine", requirePerm(authorize.ResourceSchedule, authorize.ActionList), sh.ListMine)
	s.Get("/", requirePerm(authorize.ResourceSchedule, authorize.ActionOverride), sh.ListAll)
	s.Post("/", requirePerm(authorize.ResourceSchedule, authorize.ActionCreate), sh.Create)
	s.Put("/:id", requirePerm(authorize.ResourceSchedule, authorize.ActionUpdate), sh.Update)
	s.Delete("/:id", requirePerm(authorize.ResourceSchedule, authorize.ActionDelete), sh.Delete)
}
