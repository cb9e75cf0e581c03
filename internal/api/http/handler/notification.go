package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound),
		errors.Is(err, notification.ErrRecipientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrUnauthorized):
		return forbidden(c, err.Error())
	case errors.Is(err, notification.ErrInvalidInput):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /notification
func (h *NotificationHandler) List(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	unread, _ := strconv.ParseBool(c.Query("unread"))

	out, err := h.svc.List(c.Context(), actor, notification.ListRequest{UnreadOnly: unread, Limit: limit})
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, out)
}

// GET /notification/unread-count
func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	n, err := h.svc.UnreadCount(c.Context(), actor)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"unread_count": n})
}

// POST /notification
func (h *NotificationHandler) Create(c fiber.Ctx) error {
	var body struct {
		UserID        string `json:"user_id"`
		PatientID     string `json:"patient_id"`
		DoctorID      string `json:"doctor_id"`
		AppointmentID string `json:"appointment_id"`
		Content       string `json:"content"`
		RecipientType string `json:"recipient_type"`
		NewDate       string `json:"new_date"`
		NewWorkShift  string `json:"new_work_shift"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := notification.CreateRequest{
		UserID:        body.UserID,
		PatientID:     body.PatientID,
		DoctorID:      body.DoctorID,
		AppointmentID: body.AppointmentID,
		Content:       body.Content,
		RecipientType: repo.RecipientType(body.RecipientType),
		NewWorkShift:  repo.Shift(body.NewWorkShift),
	}
	if body.NewDate != "" {
		d, err := parseDate(body.NewDate)
		if err != nil {
			return badRequest(c, "invalid new_date")
		}
		d = repo.DayStart(d)
		req.NewDate = &d
	}

	n, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return created(c, n)
}

// PUT /notification/:id
func (h *NotificationHandler) Update(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	n, err := h.svc.Update(c.Context(), actor, c.Params("id"), body.Content)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, n)
}

// PUT /notification/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	n, err := h.svc.MarkRead(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, n)
}

// PUT /notification/read-all
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	n, err := h.svc.MarkAllRead(c.Context(), actor)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"updated": n})
}

// DELETE /notification/:id
func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	if err := h.svc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"deleted": 1})
}
