package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("new password must be at least 8 characters")
	ErrInvalidDisplayName = errors.New("name must be between 1 and 100 characters")
	ErrInvalidURL         = errors.New("image must be an absolute http(s) URL")
	ErrInvalidPhone       = errors.New("invalid phone number")
)
