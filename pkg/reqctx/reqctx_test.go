package reqctx

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type testClaims struct {
	id   uuid.UUID
	role string
	exp  time.Time
}

func (c testClaims) GetUserID() uuid.UUID     { return c.id }
func (c testClaims) GetRole() string          { return c.role }
func (c testClaims) GetSessionID() *uuid.UUID { return nil }
func (c testClaims) IsExpired() bool          { return time.Now().After(c.exp) }

func TestClaimsRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithClaims(context.Background(), testClaims{id: id, role: "doctor", exp: time.Now().Add(time.Hour)})

	got, ok := UserIDFromContext(ctx)
	if !ok || got != id {
		t.Fatalf("UserIDFromContext() = %v, %v", got, ok)
	}
	role, ok := RoleFromContext(ctx)
	if !ok || role != "doctor" {
		t.Fatalf("RoleFromContext() = %q, %v", role, ok)
	}
	if !IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false, want true")
	}
}

func TestClaimsMissing(t *testing.T) {
	ctx := context.Background()

	if _, ok := UserIDFromContext(ctx); ok {
		t.Error("expected no user id")
	}
	if IsAuthenticated(ctx) {
		t.Error("expected unauthenticated")
	}
	if RequestIDFromContext(ctx) != "" {
		t.Error("expected empty request id")
	}
	if _, ok := RoleFromContext(ctx); ok {
		t.Error("expected no role")
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestMeta(context.Background(), &RequestMeta{RequestID: "req-42", RequestedAt: time.Now()})
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
	if got := RequestIDFromContext(WithRequestMeta(context.Background(), nil)); got != "" {
		t.Errorf("nil meta gave %q", got)
	}
}

func TestExpiredClaimsAreNotAuthenticated(t *testing.T) {
	ctx := WithClaims(context.Background(), testClaims{id: uuid.New(), exp: time.Now().Add(-time.Minute)})
	if IsAuthenticated(ctx) {
		t.Error("expired claims should not authenticate")
	}
}
