package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/servicetest"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/redis"
	"github.com/medibook/medibook_backend/pkg/token"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

type fixture struct {
	db       *repo.Client
	sessions redis.SessionStore
	tokens   *token.Manager
	svc      Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	tokens, err := token.New(token.Config{Issuer: "medibook", Audience: "medibook-web", AccessTTL: time.Hour}, token.NewJWTKeys("auth-test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	// cheap argon2 parameters keep the suite fast
	hasher := password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32, MinLength: 8})

	f := &fixture{db: servicetest.NewDB(), sessions: redis.NewMemorySessionStore(), tokens: tokens}
	f.svc = New(f.db, f.sessions, tokens, hasher)
	return f
}

func (f *fixture) register(t *testing.T, email string) *Profile {
	t.Helper()
	p, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Lan Nguyen", Email: email, Password: "correct-horse", Phone: "0901234567",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return p
}

func TestRegister(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p := f.register(t, "  Lan@Example.com ")
	if p.Email != "lan@example.com" || p.Role != authorize.RolePatient || p.Phone != "+84901234567" {
		t.Errorf("profile = %+v", p)
	}
	if _, err := f.db.Patient.GetByUser(ctx, p.ID); err != nil {
		t.Errorf("patient record: %v", err)
	}
	role, err := RoleOf(ctx, f.db, p.ID)
	if err != nil || role != authorize.RolePatient {
		t.Errorf("RoleOf = %q, %v", role, err)
	}
	u, _ := f.db.User.Get(ctx, p.ID)
	if u.Password == "correct-horse" || !password.Match(u.Password, "correct-horse") {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterRejects(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "longenough", Phone: "0901234567"}, ErrInvalidInput},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "longenough", Phone: "0901234567"}, ErrInvalidEmail},
		{"bad phone", RegisterRequest{Name: "A", Email: "a@b.co", Password: "longenough", Phone: "12"}, ErrInvalidPhone},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.co", Password: "short", Phone: "0901234567"}, ErrPasswordTooShort},
		{"taken email", RegisterRequest{Name: "A", Email: "taken@example.com", Password: "longenough", Phone: "0901234567"}, ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.register(t, "taken@example.com")
			_, err := f.svc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.register(t, "lan@example.com")

	res, err := f.svc.Login(ctx, LoginRequest{Email: "LAN@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != p.ID || res.User.Role != authorize.RolePatient || res.User.Token == "" {
		t.Errorf("login user = %+v", res.User)
	}

	claims, err := f.tokens.Verify(res.User.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID.String() != p.ID || claims.Role != string(authorize.RolePatient) {
		t.Errorf("claims = %+v", claims)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt); ttl != time.Hour {
		t.Errorf("token ttl = %v, want 1h", ttl)
	}
	if claims.SessionID == nil || *claims.SessionID != res.SessionID {
		t.Fatalf("session id not carried in token")
	}
	if ok, _ := f.sessions.Exists(ctx, res.SessionID); !ok {
		t.Error("session was not stored")
	}
}

func TestLoginFailures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "lan@example.com")

	if _, err := f.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown email err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Login(ctx, LoginRequest{Email: "lan@example.com", Password: "wrong-horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.Login(ctx, LoginRequest{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty err = %v", err)
	}

	// an account without a role cannot log in
	hash, _ := password.Hash("roleless-pass")
	u := &repo.User{ID: uuid.NewString(), Name: "Ghost", Email: "ghost@example.com", Password: hash}
	if err := f.db.User.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Login(ctx, LoginRequest{Email: u.Email, Password: "roleless-pass"}); !errors.Is(err, ErrNoRole) {
		t.Errorf("roleless err = %v, want ErrNoRole", err)
	}
}

func TestLoginUpgradesBcryptHash(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := servicetest.SeedUser(t, f.db, authorize.RoleDoctor, "Legacy Doctor")
	legacy, err := bcrypt.GenerateFromPassword([]byte("imported-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u.Password = string(legacy)
	if err := f.db.User.Update(ctx, u); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Login(ctx, LoginRequest{Email: u.Email, Password: "imported-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.Role != authorize.RoleDoctor {
		t.Errorf("role = %s", res.User.Role)
	}
	stored, _ := f.db.User.Get(ctx, u.ID)
	if password.IsBcrypt(stored.Password) || !password.Match(stored.Password, "imported-pass") {
		t.Error("bcrypt hash was not upgraded to argon2id")
	}
}

func TestLogoutAndMe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.register(t, "lan@example.com")
	res, err := f.svc.Login(ctx, LoginRequest{Email: "lan@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}

	me, err := f.svc.Me(ctx, p.ID)
	if err != nil || me.Email != "lan@example.com" || me.Role != authorize.RolePatient {
		t.Errorf("Me = %+v, %v", me, err)
	}
	if _, err := f.svc.Me(ctx, repo.NewID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Me unknown err = %v", err)
	}

	if err := f.svc.Logout(ctx, res.SessionID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := f.sessions.Exists(ctx, res.SessionID); ok {
		t.Error("session survived logout")
	}
	if err := f.svc.Logout(ctx, res.SessionID); err != nil {
		t.Errorf("second logout err = %v", err)
	}
}
