package doctor

import "errors"

var (
	ErrDoctorNotFound         = errors.New("doctor not found")
	ErrSpecializationNotFound = errors.New("specialization not found")
	ErrInvalidPrice           = errors.New("price must not be negative")
)
