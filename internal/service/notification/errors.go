package notification

import "errors"

var (
	ErrNotFound          = errors.New("notification not found")
	ErrUnauthorized      = errors.New("not authorized to access this notification")
	ErrInvalidInput      = errors.New("invalid notification")
	ErrRecipientNotFound = errors.New("recipient user not found")
)
