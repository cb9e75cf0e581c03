package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/doctor"
	"github.com/medibook/medibook_backend/internal/service/user"
)

type DoctorHandler struct {
	svc doctor.Service
}

func NewDoctorHandler(svc doctor.Service) *DoctorHandler {
	return &DoctorHandler{svc: svc}
}

func mapDoctorError(c fiber.Ctx, err error) error {
	if r := mapAccountError(c, err); r != nil {
		return r
	}
	switch {
	case errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, doctor.ErrSpecializationNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, doctor.ErrInvalidPrice):
		return badRequest(c, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, user.ErrInvalidDisplayName),
		errors.Is(err, user.ErrInvalidURL),
		errors.Is(err, user.ErrInvalidPhone):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /doctors
func (h *DoctorHandler) List(c fiber.Ctx) error {
	out, err := h.svc.List(c.Context(), doctor.ListRequest{SpecializationID: c.Query("specialization_id")})
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, out)
}

// GET /doctors/:id
func (h *DoctorHandler) Get(c fiber.Ctx) error {
	v, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, v)
}

// POST /doctors
func (h *DoctorHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name             string `json:"name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		Phone            string `json:"phone"`
		Image            string `json:"image"`
		SpecializationID string `json:"specialization_id"`
		Description      string `json:"description"`
		Price            int64  `json:"price"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.Create(c.Context(), doctor.CreateRequest{
		Name:             body.Name,
		Email:            body.Email,
		Password:         body.Password,
		Phone:            body.Phone,
		Image:            body.Image,
		SpecializationID: body.SpecializationID,
		Description:      body.Description,
		Price:            body.Price,
	})
	if err != nil {
		return mapDoctorError(c, err)
	}
	return created(c, v)
}

// PUT /doctors/:id
func (h *DoctorHandler) Update(c fiber.Ctx) error {
	var body struct {
		Name             *string `json:"name"`
		Phone            *string `json:"phone"`
		Image            *string `json:"image"`
		SpecializationID *string `json:"specialization_id"`
		Description      *string `json:"description"`
		Price            *int64  `json:"price"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.Update(c.Context(), c.Params("id"), doctor.UpdateRequest{
		Name:             body.Name,
		Phone:            body.Phone,
		Image:            body.Image,
		SpecializationID: body.SpecializationID,
		Description:      body.Description,
		Price:            body.Price,
	})
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, v)
}

// DELETE /doctors/:id
func (h *DoctorHandler) Delete(c fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, fiber.Map{"deleted": 1})
}
