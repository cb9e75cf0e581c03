package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"

	"github.com/medibook/medibook_backend/pkg/reqctx"
)

// AuditedAuthorization logs every decision with the calling user and request
// id so denied bookings can be traced back to a request.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{
		inner:  inner,
		logger: logger,
	}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject Role, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, object, action)

	attrs := []any{
		"subject", string(subject),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if uid, ok := reqctx.UserIDFromContext(ctx); ok {
		attrs = append(attrs, "user_id", uid.String())
	}
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		a.logger.ErrorContext(ctx, "authz_decision", attrs...)
	case allowed:
		a.logger.DebugContext(ctx, "authz_decision", attrs...)
	default:
		a.logger.WarnContext(ctx, "authz_decision", attrs...)
	}

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	added, err := a.inner.AddPermission(ctx, p)
	a.logChange(ctx, "add_permission", p, added, err)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, p)
	a.logChange(ctx, "remove_permission", p, removed, err)
	return removed, err
}

func (a *AuditedAuthorization) logChange(ctx context.Context, op string, p PermissionPolicy, changed bool, err error) {
	attrs := []any{
		"operation", op,
		"role", string(p.Subject),
		"resource", string(p.Object),
		"action", string(p.Action),
		"effect", string(p.Effect),
		"changed", changed,
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
		a.logger.ErrorContext(ctx, "authz_permission_change", attrs...)
		return
	}
	a.logger.InfoContext(ctx, "authz_permission_change", attrs...)
}

func (a *AuditedAuthorization) Raw() *casbin.SyncedEnforcer {
	return a.inner.Raw()
}
