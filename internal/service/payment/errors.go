package payment

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentClosed   = errors.New("appointment is canceled")
	ErrForbidden           = errors.New("not allowed to pay for this appointment")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrGatewayFailure      = errors.New("payment gateway error")
	ErrInvalidSignature    = errors.New("invalid callback signature")
	ErrAmountMismatch      = errors.New("payment amount does not match")
)
