package appointment

import "errors"

var (
	ErrNotFound                  = errors.New("appointment not found")
	ErrPatientNotFound           = errors.New("patient not found")
	ErrDoctorNotFound            = errors.New("doctor not found")
	ErrForbidden                 = errors.New("not allowed to act on this appointment")
	ErrInvalidInput              = errors.New("invalid appointment request")
	ErrInvalidStatus             = errors.New("invalid status for this transition")
	ErrSlotStarted               = errors.New("the requested shift has already started")
	ErrDuplicateBooking          = errors.New("patient already has an appointment in this slot")
	ErrCancellationLimit         = errors.New("slot canceled too many times to rebook")
	ErrDailyLimit                = errors.New("daily appointment limit reached")
	ErrCancellationWindowExpired = errors.New("appointments can only be canceled more than 24 hours ahead")
	ErrBusy                      = errors.New("another booking for this patient is in progress")
)
