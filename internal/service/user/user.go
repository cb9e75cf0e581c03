package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/util/password"
	"github.com/medibook/medibook_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// UpdateProfileRequest changes only the fields that are set.
type UpdateProfileRequest struct {
	Name  *string
	Phone *string
	Image *string
}

type ChangePasswordRequest struct {
	Current string
	New     string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	GetByID(ctx context.Context, id string) (*repo.User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*repo.User, error)
	ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error
}

type UserService struct {
	client *repo.Client
	hasher *password.Hasher
}

func New(client *repo.Client, hasher *password.Hasher) *UserService {
	return &UserService{client: client, hasher: hasher}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*repo.User, error) {
	u, err := s.client.User.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func validImageURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*repo.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if n := utf8.RuneCountInString(name); n < 1 || n > 100 {
			return nil, ErrInvalidDisplayName
		}
		u.Name = name
	}
	if req.Phone != nil {
		p, err := phone.NormalizeOptional(*req.Phone, "")
		if err != nil {
			return nil, ErrInvalidPhone
		}
		u.Phone = p
	}
	if req.Image != nil {
		img := strings.TrimSpace(*req.Image)
		if img != "" && !validImageURL(img) {
			return nil, ErrInvalidURL
		}
		u.Image = img
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.client.User.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(u.Password, req.Current); err != nil {
		return ErrInvalidPassword
	}
	if err := s.hasher.Validate(req.New); err != nil {
		return ErrPasswordTooShort
	}
	hash, err := s.hasher.Hash(req.New)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	if err := s.client.User.Update(ctx, u); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
