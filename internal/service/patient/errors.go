package patient

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrAccessDenied    = errors.New("access denied to this patient record")
)
