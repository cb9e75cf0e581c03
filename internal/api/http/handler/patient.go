package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/patient"
	"github.com/medibook/medibook_backend/internal/service/user"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	if r := mapAccountError(c, err); r != nil {
		return r
	}
	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrAccessDenied):
		return forbidden(c, err.Error())
	case errors.Is(err, user.ErrInvalidDisplayName),
		errors.Is(err, user.ErrInvalidURL),
		errors.Is(err, user.ErrInvalidPhone):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	out, err := h.svc.List(c.Context())
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, out)
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	v, err := h.svc.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, v)
}

// POST /patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Image    string `json:"image"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.Create(c.Context(), patient.CreatePatientRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Phone:    body.Phone,
		Image:    body.Image,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, v)
}

// PUT /patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	var body struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
		Image *string `json:"image"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.Update(c.Context(), c.Params("id"), patient.UpdatePatientRequest{
		Name:  body.Name,
		Phone: body.Phone,
		Image: body.Image,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, v)
}

// DELETE /patients/:id
func (h *PatientHandler) Delete(c fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, fiber.Map{"deleted": 1})
}
