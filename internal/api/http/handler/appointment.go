package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrNotFound),
		errors.Is(err, appointment.ErrPatientNotFound),
		errors.Is(err, appointment.ErrDoctorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidInput),
		errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrSlotStarted):
		return badRequest(c, err.Error())
	case errors.Is(err, appointment.ErrDuplicateBooking),
		errors.Is(err, appointment.ErrCancellationWindowExpired),
		errors.Is(err, appointment.ErrCancellationLimit),
		errors.Is(err, appointment.ErrDailyLimit):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrBusy):
		// another request holds the patient's day lock; safe to retry
		return tooManyRequests(c, err.Error())
	default:
		return internalError(c)
	}
}

type appointmentBody struct {
	slotBody
	Status string `json:"status"`
}

func (b appointmentBody) toUpdate() (appointment.UpdateRequest, bool) {
	d, shift, valid := b.parse()
	if !valid {
		return appointment.UpdateRequest{}, false
	}
	return appointment.UpdateRequest{WorkDate: d, WorkShift: shift, Status: repo.AppointmentStatus(b.Status)}, true
}

// POST /create-appointment/:patientUserId
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
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
	if !valid || body.DoctorID == "" {
		return badRequest(c, "doctor_id, work_date and work_shift are required")
	}

	a, err := h.svc.Create(c.Context(), actor, appointment.CreateRequest{
		PatientUserID: c.Params("patientUserId"),
		DoctorID:      body.DoctorID,
		WorkDate:      d,
		WorkShift:     shift,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, a)
}

// PUT /cancel-appointment/:id
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	a, err := h.svc.Cancel(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// PUT /doctor/confirm-appointment/:id
func (h *AppointmentHandler) Confirm(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	a, err := h.svc.Confirm(c.Context(), actor, c.Params("id"), repo.AppointmentStatus(body.Status))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// PUT /doctor/complete-appointment/:id
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	a, err := h.svc.Complete(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// PUT /update-appointment/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body appointmentBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	req, valid := body.toUpdate()
	if !valid {
		return badRequest(c, "work_date and work_shift are required")
	}

	a, err := h.svc.Update(c.Context(), actor, c.Params("id"), req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// PUT /admin/update-appointment/:id
func (h *AppointmentHandler) AdminUpdate(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body appointmentBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	req, valid := body.toUpdate()
	if !valid {
		return badRequest(c, "work_date and work_shift are required")
	}

	a, err := h.svc.AdminUpdate(c.Context(), actor, c.Params("id"), req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// DELETE /delete-appointment/:id
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, fiber.Map{"deleted": 1})
}

// DELETE /delete-appointment-by-status/:status
func (h *AppointmentHandler) DeleteByStatus(c fiber.Ctx) error {
	n, err := h.svc.DeleteByStatus(c.Context(), repo.AppointmentStatus(c.Params("status")))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, fiber.Map{"deleted": n})
}

// GET /user-appointment
func (h *AppointmentHandler) Mine(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	out, err := h.svc.CurrentUserAppointments(c.Context(), actor)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, out)
}

// GET /upcoming-appointments
func (h *AppointmentHandler) Upcoming(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	out, err := h.svc.Upcoming(c.Context(), actor)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, out)
}

// GET /appointments/status/:status
func (h *AppointmentHandler) ByStatus(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	out, err := h.svc.ByStatus(c.Context(), actor, repo.AppointmentStatus(c.Params("status")))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, out)
}

// GET /admin/upcoming-appointments
func (h *AppointmentHandler) AdminUpcoming(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.svc.AdminDashboardUpcoming(c.Context(), limit)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, out)
}

// GET /appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	v, err := h.svc.GetByID(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, v)
}
