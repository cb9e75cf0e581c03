package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/internal/service/payment"
	"github.com/medibook/medibook_backend/pkg/momo"
)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func mapPaymentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payment.ErrAppointmentNotFound),
		errors.Is(err, payment.ErrPaymentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, payment.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, payment.ErrAppointmentClosed),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrAmountMismatch):
		return badRequest(c, err.Error())
	case errors.Is(err, payment.ErrGatewayFailure):
		return badGateway(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /payment/:appointmentId
func (h *PaymentHandler) Initiate(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		Price     int64  `json:"price"`
		OrderInfo string `json:"order_info"`
	}
	_ = c.Bind().JSON(&body)

	resp, err := h.svc.Initiate(c.Context(), actor, c.Params("appointmentId"), payment.InitiateRequest{
		Amount:    body.Price,
		OrderInfo: body.OrderInfo,
	})
	if err != nil {
		return mapPaymentError(c, err)
	}
	return ok(c, resp)
}

// GET /payment/:appointmentId/status
func (h *PaymentHandler) Status(c fiber.Ctx) error {
	actor, found := actorFrom(c)
	if !found {
		return unauthorized(c)
	}
	p, err := h.svc.Status(c.Context(), actor, c.Params("appointmentId"))
	if err != nil {
		return mapPaymentError(c, err)
	}
	return ok(c, p)
}

// POST /callback
//
// MoMo expects 204 once the IPN is accepted.
func (h *PaymentHandler) Callback(c fiber.Ctx) error {
	var ipn momo.IPN
	if err := c.Bind().JSON(&ipn); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.svc.Callback(c.Context(), ipn); err != nil {
		return mapPaymentError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
