// Package servicetest holds fixtures shared by the service tests: an
// in-memory database with seeded accounts, a settable clock and a recording
// mailer.
package servicetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/repo/memory"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/email"
)

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Mailer records sent messages. Set Err to make every send fail.
type Mailer struct {
	mu   sync.Mutex
	Sent []email.Message
	Err  error
}

var ErrMailDown = errors.New("smtp unavailable")

func (m *Mailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// To lists the first recipient of every sent message.
func (m *Mailer) To() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, s := range m.Sent {
		if len(s.To) > 0 {
			out = append(out, s.To[0])
		}
	}
	return out
}

func NewDB() *repo.Client { return memory.New() }

// SeedUser inserts a user holding role.
func SeedUser(t *testing.T, db *repo.Client, role authorize.Role, name string) *repo.User {
	t.Helper()
	ctx := context.Background()
	u := &repo.User{
		ID:        repo.NewID(),
		Name:      name,
		Email:     uuid.NewString()[:8] + "@medibook.test",
		Phone:     "+84901234567",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.User.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	r, err := db.Role.Ensure(ctx, string(role))
	if err != nil {
		t.Fatalf("seed role: %v", err)
	}
	if err := db.UserRole.Create(ctx, &repo.UserRole{ID: repo.NewID(), UserID: u.ID, RoleID: r.ID}); err != nil {
		t.Fatalf("seed user role: %v", err)
	}
	return u
}

func SeedSpecialization(t *testing.T, db *repo.Client, name string) *repo.Specialization {
	t.Helper()
	s := &repo.Specialization{ID: repo.NewID(), Name: name}
	if err := db.Specialization.Create(context.Background(), s); err != nil {
		t.Fatalf("seed specialization: %v", err)
	}
	return s
}

func SeedDoctor(t *testing.T, db *repo.Client, name string) (*repo.Doctor, *repo.User) {
	t.Helper()
	u := SeedUser(t, db, authorize.RoleDoctor, name)
	spec := SeedSpecialization(t, db, "Spec "+u.ID[:8])
	d := &repo.Doctor{
		ID:               repo.NewID(),
		UserID:           u.ID,
		SpecializationID: spec.ID,
		Price:            300000,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := db.Doctor.Create(context.Background(), d); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return d, u
}

func SeedPatient(t *testing.T, db *repo.Client, name string) (*repo.Patient, *repo.User) {
	t.Helper()
	u := SeedUser(t, db, authorize.RolePatient, name)
	p := &repo.Patient{ID: repo.NewID(), UserID: u.ID, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Patient.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p, u
}

func Actor(t *testing.T, u *repo.User, role authorize.Role) authorize.Actor {
	t.Helper()
	id, err := uuid.Parse(u.ID)
	if err != nil {
		t.Fatalf("user id %q: %v", u.ID, err)
	}
	return authorize.Actor{UserID: id, Role: role}
}

// AdminActor is an admin that exists only as claims.
func AdminActor() authorize.Actor {
	return authorize.Actor{UserID: uuid.New(), Role: authorize.RoleAdmin}
}
