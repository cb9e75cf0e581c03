package scheduling

import "errors"

var (
	ErrNotFound         = errors.New("schedule not found")
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrForbidden        = errors.New("schedule belongs to another doctor")
	ErrInvalidInput     = errors.New("work_date and a valid work_shift are required")
	ErrDuplicateSlot    = errors.New("doctor already has this slot")
	ErrSlotStarted      = errors.New("slot is in the past")
	ErrWithinLockWindow = errors.New("schedule cannot change within 24 hours of its date")
	// ErrAppointmentClash means moving the slot would give a patient two
	// active appointments on the same date and shift.
	ErrAppointmentClash = errors.New("a patient already holds an appointment on the target slot")
)
