package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/account"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/redis"
	"github.com/medibook/medibook_backend/pkg/token"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Profile is the public view of an account.
type Profile struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Phone string         `json:"phone,omitempty"`
	Image string         `json:"image,omitempty"`
	Role  authorize.Role `json:"role"`
}

type LoginUser struct {
	Profile
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginResult struct {
	User      LoginUser `json:"user"`
	SessionID uuid.UUID `json:"-"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (*Profile, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Me(ctx context.Context, userID string) (*Profile, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	db       *repo.Client
	sessions redis.SessionStore
	tokens   *token.Manager
	hasher   *password.Hasher
}

func New(db *repo.Client, sessions redis.SessionStore, tokens *token.Manager, hasher *password.Hasher) Service {
	return &authService{db: db, sessions: sessions, tokens: tokens, hasher: hasher}
}

// RoleOf resolves the role name through UserRole and Role.
func RoleOf(ctx context.Context, db *repo.Client, userID string) (authorize.Role, error) {
	ur, err := db.UserRole.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNoRole
		}
		return "", fmt.Errorf("get user role: %w", err)
	}
	r, err := db.Role.Get(ctx, ur.RoleID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNoRole
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	role := authorize.Role(r.Name)
	if _, ok := authorize.KnownRoles[role]; !ok {
		return "", ErrNoRole
	}
	return role, nil
}

func profileOf(u *repo.User, role authorize.Role) Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Image: u.Image, Role: role}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.db.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Verify(u.Password, req.Password); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			slog.Warn("login: unreadable password hash", "user_id", u.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	role, err := RoleOf(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("user id %q: %w", u.ID, err)
	}

	// legacy bcrypt hashes are upgraded on the first successful login
	if s.hasher.NeedsRehash(u.Password) {
		s.rehash(ctx, u, req.Password)
	}

	sessionID := uuid.Must(uuid.NewV7())
	if err := s.sessions.Create(ctx, sessionID, uid, s.tokens.AccessTTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	tok, claims, err := s.tokens.IssueAccess(uid, string(role), &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &LoginResult{
		User: LoginUser{
			Profile:   profileOf(u, role),
			Token:     tok,
			ExpiresAt: claims.ExpiresAt,
		},
		SessionID: sessionID,
	}, nil
}

func (s *authService) rehash(ctx context.Context, u *repo.User, plain string) {
	h, err := s.hasher.Hash(plain)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", u.ID, "error", err)
		return
	}
	u.Password = h
	u.UpdatedAt = time.Now().UTC()
	if err := s.db.User.Update(ctx, u); err != nil {
		slog.Warn("password rehash not saved", "user_id", u.ID, "error", err)
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	u, err := account.Create(ctx, s.db, s.hasher, account.Request{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		PhoneRequired: true,
	}, authorize.RolePatient, func(ctx context.Context, u *repo.User) error {
		if err := s.db.Patient.Create(ctx, &repo.Patient{
			ID: repo.NewID(), UserID: u.ID, CreatedAt: u.CreatedAt, UpdatedAt: u.CreatedAt,
		}); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p := profileOf(u, authorize.RolePatient)
	return &p, nil
}

// ---------------------------------------------------------------------------
// Logout / Me
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	err := s.sessions.Delete(ctx, sessionID)
	if errors.Is(err, redis.ErrSessionNotFound) {
		slog.Debug("logout: session already expired", "session_id", sessionID)
		return nil
	}
	return err
}

func (s *authService) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.db.User.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	role, err := RoleOf(ctx, s.db, u.ID)
	if err != nil {
		return nil, err
	}
	p := profileOf(u, role)
	return &p, nil
}
