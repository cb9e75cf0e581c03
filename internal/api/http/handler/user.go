package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/user"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, user.ErrInvalidPassword):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrInvalidDisplayName),
		errors.Is(err, user.ErrInvalidURL),
		errors.Is(err, user.ErrInvalidPhone):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// PUT /me
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
		Image *string `json:"image"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	u, err := h.svc.UpdateProfile(c.Context(), actor.UserID.String(), user.UpdateProfileRequest{
		Name:  body.Name,
		Phone: body.Phone,
		Image: body.Image,
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, u)
}

// PUT /me/password
func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.ChangePassword(c.Context(), actor.UserID.String(), user.ChangePasswordRequest{
		Current: body.CurrentPassword,
		New:     body.NewPassword,
	}); err != nil {
		return mapUserError(c, err)
	}
	return ok(c, fiber.Map{"message": "password updated"})
}
