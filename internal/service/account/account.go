// Package account creates and removes login accounts: the User row, its
// UserRole link and the profile record (patient or doctor) hanging off it.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/util/password"
	"github.com/medibook/medibook_backend/pkg/util/phone"
)

var (
	ErrInvalidInput     = errors.New("name, email and password are required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrEmailTaken       = errors.New("email is already registered")
)

type Request struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Image    string
	// PhoneRequired rejects an empty phone instead of storing none.
	PhoneRequired bool
}

// NormalizeEmail lower-cases and validates a bare address.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return raw, nil
}

// Create inserts the user, links role and runs attach to add the profile
// record. Any failure after the user insert removes what was written.
func Create(ctx context.Context, db *repo.Client, hasher *password.Hasher, req Request, role authorize.Role, attach func(ctx context.Context, u *repo.User) error) (*repo.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	var tel string
	if req.PhoneRequired {
		tel, err = phone.Normalize(req.Phone, "")
	} else {
		tel, err = phone.NormalizeOptional(req.Phone, "")
	}
	if err != nil {
		return nil, ErrInvalidPhone
	}
	if err := hasher.Validate(req.Password); err != nil {
		return nil, ErrPasswordTooShort
	}
	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &repo.User{
		ID:        repo.NewID(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Phone:     tel,
		Image:     strings.TrimSpace(req.Image),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.User.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := link(ctx, db, u, role, attach); err != nil {
		if rerr := Remove(ctx, db, u.ID); rerr != nil {
			slog.Error("account rollback failed", "user_id", u.ID, "error", rerr)
		}
		return nil, err
	}
	return u, nil
}

func link(ctx context.Context, db *repo.Client, u *repo.User, role authorize.Role, attach func(ctx context.Context, u *repo.User) error) error {
	r, err := db.Role.Ensure(ctx, string(role))
	if err != nil {
		return fmt.Errorf("ensure role %s: %w", role, err)
	}
	if err := db.UserRole.Create(ctx, &repo.UserRole{ID: repo.NewID(), UserID: u.ID, RoleID: r.ID}); err != nil {
		return fmt.Errorf("create user role: %w", err)
	}
	if attach != nil {
		return attach(ctx, u)
	}
	return nil
}

// Remove deletes the UserRole link and the User row. Missing rows are not
// an error; profile records are the caller's job.
func Remove(ctx context.Context, db *repo.Client, userID string) error {
	if err := db.UserRole.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("delete user role: %w", err)
	}
	if err := db.User.Delete(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
