package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/account"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

// Every response is wrapped in {ok, data?, error?}.
type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func ok(c fiber.Ctx, data any) error {
	return c.JSON(envelope{OK: true, Data: data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{OK: true, Data: data})
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(envelope{OK: false, Error: msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadRequest, msg)
}

func unauthorized(c fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, "unauthorized")
}

func forbidden(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusForbidden, msg)
}

func notFound(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusNotFound, msg)
}

func conflict(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusConflict, msg)
}

func tooManyRequests(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusTooManyRequests, msg)
}

func badGateway(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadGateway, msg)
}

func internalError(c fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}

// ErrorHandler renders errors that escaped a handler, including fiber's own
// (404 on unknown routes, 401 from middleware), in the same envelope.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, fe.Message)
	}
	return internalError(c)
}

func actorFrom(c fiber.Ctx) (authorize.Actor, bool) {
	a, err := authorize.ActorFromContext(c.Context())
	return a, err == nil
}

// mapAccountError covers validation failures shared by every account-creating
// endpoint. It returns nil when err is not one of them.
func mapAccountError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		return conflict(c, err.Error())
	case errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrInvalidPhone),
		errors.Is(err, account.ErrPasswordTooShort):
		return badRequest(c, err.Error())
	}
	return nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// slotBody is the work_date/work_shift pair most booking bodies carry.
type slotBody struct {
	WorkDate  string `json:"work_date"`
	WorkShift string `json:"work_shift"`
}

func (b slotBody) parse() (time.Time, repo.Shift, bool) {
	d, err := parseDate(b.WorkDate)
	if err != nil {
		return time.Time{}, "", false
	}
	shift := repo.Shift(strings.ToLower(strings.TrimSpace(b.WorkShift)))
	if !shift.Valid() {
		return time.Time{}, "", false
	}
	return d, shift, true
}
