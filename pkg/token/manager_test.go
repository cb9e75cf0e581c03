package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func managers(t *testing.T) map[string]*Manager {
	t.Helper()
	cfg := Config{Issuer: "medibook", Audience: "medibook-web", AccessTTL: time.Hour}

	out := map[string]*Manager{}
	for name, keys := range map[string]Keys{
		"jwt":    NewJWTKeys("test-secret"),
		"local":  NewLocalKeys(),
		"public": NewPublicKeys(),
	} {
		m, err := New(cfg, keys)
		if err != nil {
			t.Fatalf("%s: New: %v", name, err)
		}
		out[name] = m
	}
	return out
}

func TestIssueAndVerify(t *testing.T) {
	uid := uuid.New()
	sid := uuid.New()

	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			tok, issued, err := m.IssueAccess(uid, "doctor", &sid)
			if err != nil {
				t.Fatalf("IssueAccess: %v", err)
			}
			if got := issued.ExpiresAt.Sub(issued.IssuedAt); got != time.Hour {
				t.Errorf("ttl = %v, want 1h", got)
			}

			c, err := m.Verify(tok)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if c.UserID != uid {
				t.Errorf("UserID = %v, want %v", c.UserID, uid)
			}
			if c.Role != "doctor" {
				t.Errorf("Role = %q, want doctor", c.Role)
			}
			if c.SessionID == nil || *c.SessionID != sid {
				t.Errorf("SessionID = %v, want %v", c.SessionID, sid)
			}
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	uid := uuid.New()
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			tok, _, err := m.IssueAccess(uid, "patient", nil)
			if err != nil {
				t.Fatalf("IssueAccess: %v", err)
			}

			m.WithClock(func() time.Time { return time.Now().Add(61 * time.Minute) })
			defer m.WithClock(time.Now)

			_, err = m.Verify(tok)
			var inv ErrInvalidToken
			if !errors.As(err, &inv) {
				t.Fatalf("Verify err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			tok, _, err := m.IssueAccess(uuid.New(), "patient", nil)
			if err != nil {
				t.Fatalf("IssueAccess: %v", err)
			}
			last := tok[len(tok)-2]
			repl := byte('A')
			if last == 'A' {
				repl = 'B'
			}
			bad := tok[:len(tok)-2] + string(repl) + tok[len(tok)-1:]
			if _, err := m.Verify(bad); err == nil {
				t.Fatal("tampered token verified")
			}
		})
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	cfg := Config{Issuer: "medibook", AccessTTL: time.Hour}
	a, _ := New(cfg, NewJWTKeys("a"))
	b, _ := New(cfg, NewJWTKeys("b"))

	tok, _, err := a.IssueAccess(uuid.New(), "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(tok); err == nil {
		t.Fatal("token signed with another secret verified")
	}
}

func TestJWTPayloadCarriesIDAndRole(t *testing.T) {
	m, _ := New(Config{AccessTTL: time.Hour}, NewJWTKeys("s"))
	tok, _, err := m.IssueAccess(uuid.New(), "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("jwt has %d segments", len(parts))
	}
}

func TestLoadKeys(t *testing.T) {
	tests := []struct {
		name    string
		in      KeyStrings
		wantErr bool
	}{
		{"jwt ok", KeyStrings{Mode: ModeJWT, JWTSecret: "x"}, false},
		{"jwt empty", KeyStrings{Mode: ModeJWT}, true},
		{"local from seed", KeyStrings{Mode: ModeLocal, Seed: "session-secret"}, false},
		{"local nothing", KeyStrings{Mode: ModeLocal}, true},
		{"local bad hex", KeyStrings{Mode: ModeLocal, SymmetricHex: "zz"}, true},
		{"public nothing", KeyStrings{Mode: ModePublic}, true},
		{"unknown", KeyStrings{Mode: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeys(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeedDerivationIsStable(t *testing.T) {
	k1, _ := LoadKeys(KeyStrings{Mode: ModeLocal, Seed: "s"})
	k2, _ := LoadKeys(KeyStrings{Mode: ModeLocal, Seed: "s"})
	cfg := Config{AccessTTL: time.Hour}
	a, _ := New(cfg, k1)
	b, _ := New(cfg, k2)

	tok, _, err := a.IssueAccess(uuid.New(), "patient", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(tok); err != nil {
		t.Fatalf("same seed should verify: %v", err)
	}
}
