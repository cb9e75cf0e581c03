package account

import (
	"context"
	"errors"
	"testing"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/servicetest"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

var hasher = password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32, MinLength: 8})

func TestCreateRollsBackOnAttachFailure(t *testing.T) {
	db := servicetest.NewDB()
	ctx := context.Background()
	boom := errors.New("profile insert failed")

	_, err := Create(ctx, db, hasher, Request{Name: "Rolled Back", Email: "rb@example.com", Password: "longenough"},
		authorize.RoleDoctor, func(context.Context, *repo.User) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want attach error", err)
	}
	if _, err := db.User.GetByEmail(ctx, "rb@example.com"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("user left behind: %v", err)
	}

	// the email is free again
	u, err := Create(ctx, db, hasher, Request{Name: "Second Try", Email: "rb@example.com", Password: "longenough"}, authorize.RoleDoctor, nil)
	if err != nil {
		t.Fatal(err)
	}
	ur, err := db.UserRole.GetByUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := db.Role.Get(ctx, ur.RoleID)
	if r.Name != string(authorize.RoleDoctor) {
		t.Errorf("role = %s", r.Name)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"no name", Request{Email: "a@b.co", Password: "longenough"}, ErrInvalidInput},
		{"display name in email", Request{Name: "A", Email: "A <a@b.co>", Password: "longenough"}, ErrInvalidEmail},
		{"required phone missing", Request{Name: "A", Email: "a@b.co", Password: "longenough", PhoneRequired: true}, ErrInvalidPhone},
		{"optional phone bad", Request{Name: "A", Email: "a@b.co", Password: "longenough", Phone: "x"}, ErrInvalidPhone},
		{"short password", Request{Name: "A", Email: "a@b.co", Password: "1234567"}, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(context.Background(), servicetest.NewDB(), hasher, tt.req, authorize.RolePatient, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	db := servicetest.NewDB()
	u := servicetest.SeedUser(t, db, authorize.RolePatient, "Gone Soon")
	for i := 0; i < 2; i++ {
		if err := Remove(context.Background(), db, u.ID); err != nil {
			t.Fatalf("Remove #%d: %v", i+1, err)
		}
	}
	if _, err := db.UserRole.GetByUser(context.Background(), u.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("user role left: %v", err)
	}
}
