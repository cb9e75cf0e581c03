package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/specialization"
)

type SpecializationHandler struct {
	svc specialization.Service
}

func NewSpecializationHandler(svc specialization.Service) *SpecializationHandler {
	return &SpecializationHandler{svc: svc}
}

func mapSpecializationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, specialization.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, specialization.ErrNameRequired),
		errors.Is(err, specialization.ErrInvalidImage):
		return badRequest(c, err.Error())
	case errors.Is(err, specialization.ErrNameTaken),
		errors.Is(err, specialization.ErrInUse):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

type specializationBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (b specializationBody) request() specialization.Request {
	return specialization.Request{Name: b.Name, Description: b.Description, Image: b.Image}
}

// GET /specializations
func (h *SpecializationHandler) List(c fiber.Ctx) error {
	out, err := h.svc.List(c.Context())
	if err != nil {
		return mapSpecializationError(c, err)
	}
	return ok(c, out)
}

// GET /specializations/:id
func (h *SpecializationHandler) Get(c fiber.Ctx) error {
	s, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapSpecializationError(c, err)
	}
	return ok(c, s)
}

// POST /specializations
func (h *SpecializationHandler) Create(c fiber.Ctx) error {
	var body specializationBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	s, err := h.svc.Create(c.Context(), body.request())
	if err != nil {
		return mapSpecializationError(c, err)
	}
	return created(c, s)
}

// PUT /specializations/:id
func (h *SpecializationHandler) Update(c fiber.Ctx) error {
	var body specializationBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	s, err := h.svc.Update(c.Context(), c.Params("id"), body.request())
	if err != nil {
		return mapSpecializationError(c, err)
	}
	return ok(c, s)
}

// DELETE /specializations/:id
func (h *SpecializationHandler) Delete(c fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapSpecializationError(c, err)
	}
	return ok(c, fiber.Map{"deleted": 1})
}
