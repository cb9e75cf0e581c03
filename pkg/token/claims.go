package token

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the app-facing token payload: who the caller is and which role
// they act under.
type Claims struct {
	UserID    uuid.UUID
	Role      string
	SessionID *uuid.UUID

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
	Subject   string
}

// GetUserID implements reqctx.AuthClaims.
func (c *Claims) GetUserID() uuid.UUID {
	return c.UserID
}

// GetRole implements reqctx.AuthClaims.
func (c *Claims) GetRole() string {
	return c.Role
}

// GetSessionID implements reqctx.AuthClaims.
func (c *Claims) GetSessionID() *uuid.UUID {
	return c.SessionID
}

// IsExpired implements reqctx.AuthClaims.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
