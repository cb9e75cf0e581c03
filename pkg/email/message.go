package email

import (
	"errors"
	"fmt"
)

var (
	ErrDisabled       = errors.New("email is disabled")
	ErrInvalidMessage = errors.New("invalid email message")
	ErrSend           = errors.New("email send failed")
)

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidMessage, reason)
}

// Message is one outgoing email. Kind names the template that produced it
// and travels as the X-MediBook-Kind header.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
	Kind     string
}
