package codes

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestGenerateSecureToken(t *testing.T) {
	tok, err := GenerateSecureToken(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 32 {
		t.Fatalf("len = %d", len(tok))
	}
	if _, err := GenerateSecureToken(0); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("zero length err = %v", err)
	}
}

func TestOrderID(t *testing.T) {
	at := time.UnixMilli(1767225600000)
	re := regexp.MustCompile(`^MOMO1767225600000[0-9a-f]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := OrderID("MOMO", at)
		if err != nil {
			t.Fatal(err)
		}
		if !re.MatchString(id) {
			t.Fatalf("order id %q has the wrong shape", id)
		}
		if seen[id] {
			t.Fatalf("duplicate order id %q", id)
		}
		seen[id] = true
	}
}
