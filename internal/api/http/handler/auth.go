package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/auth"
	"github.com/medibook/medibook_backend/pkg/token"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func mapAuthError(c fiber.Ctx, err error) error {
	if r := mapAccountError(c, err); r != nil {
		return r
	}
	switch {
	case errors.Is(err, auth.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrNoRole):
		return forbidden(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Login(c.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, res)
}

// POST /register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Register(c.Context(), auth.RegisterRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Phone:    body.Phone,
	})
	if err != nil {
		return mapAuthError(c, err)
	}
	return created(c, p)
}

// POST /logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	claims, found := token.ClaimsFromFiber(c)
	if !found {
		return unauthorized(c)
	}
	if claims.SessionID != nil {
		if err := h.svc.Logout(c.Context(), *claims.SessionID); err != nil {
			return mapAuthError(c, err)
		}
	}
	return ok(c, fiber.Map{"message": "logged out"})
}

// GET /me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	p, err := h.svc.Me(c.Context(), actor.UserID.String())
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, p)
}
