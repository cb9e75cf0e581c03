package reqctx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyClaims
)

// RequestMeta is set once per HTTP request by the request id middleware.
type RequestMeta struct {
	RequestID   string
	ClientIP    string
	UserAgent   string
	RequestedAt time.Time
}

// AuthClaims is what the bearer middleware attaches. JWT and PASETO claims
// both satisfy it.
type AuthClaims interface {
	GetUserID() uuid.UUID
	GetRole() string
	GetSessionID() *uuid.UUID
	IsExpired() bool
}

func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// RequestIDFromContext returns "" outside an HTTP request.
func RequestIDFromContext(ctx context.Context) string {
	if meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta); ok && meta != nil {
		return meta.RequestID
	}
	return ""
}

// ClaimsFromContext returns nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	claims, _ := ctx.Value(keyClaims).(AuthClaims)
	return claims
}

func IsAuthenticated(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && !claims.IsExpired()
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.GetUserID(), true
	}
	return uuid.Nil, false
}

func RoleFromContext(ctx context.Context) (string, bool) {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.GetRole(), true
	}
	return "", false
}
