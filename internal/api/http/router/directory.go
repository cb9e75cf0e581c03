package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/api/http/handler"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

func (r *Router) registerDirectoryRoutes(
	api fiber.Router,
	dh *handler.DoctorHandler,
	ph *handler.PatientHandler,
	sh *handler.SpecializationHandler,
	authRequired fiber.Handler,
	requirePerm permFunc,
) {
	// public catalogue
	api.Get("/specializations", sh.List)
	api.Get("/specializations/:id", sh.Get)
	api.Get("/doctors", dh.List)
	api.Get("/doctors/:id", dh.Get)

	specs := api.Group("/specializations", authRequired)
	specs.Post("/", requirePerm(authorize.ResourceSpecialization, authorize.ActionCreate), sh.Create)
	specs.Put("/:id", requirePerm(authorize.ResourceSpecialization, authorize.ActionUpdate), sh.Update)
	specs.Delete("/:id", requirePerm(authorize.ResourceSpecialization, authorize.ActionDelete), sh.Delete)

	doctors := api.Group("/doctors", authRequired)
	doctors.Post("/", requirePerm(authorize.ResourceDoctor, authorize.ActionCreate), dh.Create)
	doctors.Put("/:id", requirePerm(authorize.ResourceDoctor, authorize.ActionUpdate), dh.Update)
	doctors.Delete("/:id", requirePerm(authorize.ResourceDoctor, authorize.ActionDelete), dh.Delete)

	patients := api.Group("/patients", authRequired)
	patients.Get("/", requirePerm(authorize.ResourcePatient, authorize.ActionList), ph.List)
	patients.Post("/", requirePerm(authorize.ResourcePatient, authorize.ActionCreate), ph.Create)
	patients.Get("/:id", requirePerm(authorize.ResourcePatient, authorize.ActionRead), ph.Get)
	patients.Put("/:id", requirePerm(authorize.ResourcePatient, authorize.ActionUpdate), ph.Update)
	patients.Delete("/:id", requirePerm(authorize.ResourcePatient, authorize.ActionDelete), ph.Delete)
}
