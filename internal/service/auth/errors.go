package auth

import (
	"errors"

	"github.com/medibook/medibook_backend/internal/service/account"
)

var (
	ErrNotFound           = errors.New("no account with this email")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrNoRole             = errors.New("account has no role assigned")

	// registration failures come from the account package
	ErrInvalidInput     = account.ErrInvalidInput
	ErrInvalidEmail     = account.ErrInvalidEmail
	ErrInvalidPhone     = account.ErrInvalidPhone
	ErrPasswordTooShort = account.ErrPasswordTooShort
	ErrEmailTaken       = account.ErrEmailTaken
)
