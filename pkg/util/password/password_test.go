package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// cheap params keep the suite fast
var testParams = &Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashFormat(t *testing.T) {
	hash, err := HashWithParams("correcthorsebatterystaple", testParams)
	if err != nil {
		t.Fatalf("HashWithParams() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("unexpected format %s", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("expected 6 parts, got %d", len(parts))
	}
}

func TestVerify(t *testing.T) {
	argon, err := HashWithParams("mysecretpassword", testParams)
	if err != nil {
		t.Fatal(err)
	}
	legacy, err := bcrypt.GenerateFromPassword([]byte("mysecretpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{"argon2 correct", argon, "mysecretpassword", nil},
		{"argon2 wrong", argon, "wrongpassword", ErrMismatch},
		{"bcrypt correct", string(legacy), "mysecretpassword", nil},
		{"bcrypt wrong", string(legacy), "wrongpassword", ErrMismatch},
		{"garbage", "notahash", "x", ErrInvalidHash},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", "x", ErrInvalidHash},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA", "x", ErrIncompatibleVersion},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA", "x", ErrInvalidHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.hash, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashUniqueness(t *testing.T) {
	a, _ := HashWithParams("same", testParams)
	b, _ := HashWithParams("same", testParams)
	if a == b {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}

func TestHasher(t *testing.T) {
	cfg := Config{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32, MinLength: 8}
	h := NewHasher(cfg)

	t.Run("validate length", func(t *testing.T) {
		if err := h.Validate("short"); !errors.Is(err, ErrTooShort) {
			t.Fatalf("Validate(short) = %v", err)
		}
		if err := h.Validate("long enough"); err != nil {
			t.Fatalf("Validate(long enough) = %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		hash, err := h.Hash("long enough")
		if err != nil {
			t.Fatal(err)
		}
		if err := h.Verify(hash, "long enough"); err != nil {
			t.Fatal(err)
		}
		if h.NeedsRehash(hash) {
			t.Error("fresh hash should not need rehash")
		}
	})

	t.Run("rehash legacy and outdated", func(t *testing.T) {
		legacy, _ := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
		if !h.NeedsRehash(string(legacy)) {
			t.Error("bcrypt hash should need rehash")
		}
		old, _ := HashWithParams("x", &Params{Memory: 4 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
		if !h.NeedsRehash(old) {
			t.Error("hash with other params should need rehash")
		}
	})
}

func TestToParamsLowMemory(t *testing.T) {
	p := Config{MemoryKiB: 64 * 1024, LowMemoryMode: true}.ToParams()
	if p.Memory != 32*1024 {
		t.Fatalf("Memory = %d, want 32 MiB", p.Memory)
	}
	if p.Iterations == 0 || p.KeyLength == 0 {
		t.Fatalf("zero values not defaulted: %+v", p)
	}
}

func TestGenerate(t *testing.T) {
	for _, n := range []int{8, 16, 33} {
		pw, err := Generate(n)
		if err != nil {
			t.Fatal(err)
		}
		if len(pw) != n {
			t.Errorf("Generate(%d) len = %d", n, len(pw))
		}
	}
}
