package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/scheduling"
)

type ScheduleHandler struct {
	svc scheduling.Service
}

func NewScheduleHandler(svc scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrNotFound),
		errors.Is(err, scheduling.ErrDoctorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidInput),
		errors.Is(err, scheduling.ErrSlotStarted):
		return badRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrWithinLockWindow),
		errors.Is(err, scheduling.ErrDuplicateSlot),
		errors.Is(err, scheduling.ErrAppointmentClash):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /schedules
func (h *ScheduleHandler) Create(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		slotBody
		DoctorID string `json:"doctor_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	d, shift, valid := body.parse()
	if !valid {
		return badRequest(c, scheduling.ErrInvalidInput.Error())
	}

	sc, err := h.svc.Create(c.Context(), actor, scheduling.CreateRequest{
		DoctorID:  body.DoctorID,
		WorkDate:  d,
		WorkShift: shift,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}
	return created(c, sc)
}

// PUT /schedules/:id
func (h *ScheduleHandler) Update(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body slotBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	d, shift, valid := body.parse()
	if !valid {
		return badRequest(c, scheduling.ErrInvalidInput.Error())
	}

	res, err := h.svc.Update(c.Context(), actor, c.Params("id"), scheduling.UpdateRequest{WorkDate: d, WorkShift: shift})
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, res)
}

// DELETE /schedules/:id
func (h *ScheduleHandler) Delete(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	if err := h.svc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, fiber.Map{"deleted": 1})
}

// GET /schedules/doctor/:doctorId
func (h *ScheduleHandler) ListByDoctor(c fiber.Ctx) error {
	out, err := h.svc.ListByDoctor(c.Context(), c.Params("doctorId"))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, out)
}

// GET /schedules/mine
func (h *ScheduleHandler) ListMine(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	out, err := h.svc.ListMine(c.Context(), actor)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, out)
}

// GET /schedules
func (h *ScheduleHandler) ListAll(c fiber.Ctx) error {
	out, err := h.svc.ListAll(c.Context())
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, out)
}
