// pkg/authorize/casbin.go
package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// ModelText is the RBAC model: subjects are role names, with allow/deny
// effects and "*" wildcards on resource and action.
const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "Is role allowed to act on object?"
	Enforce(ctx context.Context, subject Role, object Resource, action Action) (bool, error)

	// MustEnforce is convenience for services: return ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, subject Role, object Resource, action Action) error

	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)
	RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error)

	Raw() *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer from ModelText. Policies are
// seeded from code at startup (see SeedDefaultPolicies).
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	return e, nil
}

// Authorization is a thin typed wrapper around casbin.SyncedEnforcer.
type Authorization struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorization wraps an already-configured enforcer.
func NewAuthorization(e *casbin.SyncedEnforcer) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	return &Authorization{enforcer: e}, nil
}

// New builds the enforcer, seeds the default policies and optionally wraps
// the result with audit logging.
func New(ctx context.Context, cfg Config) (IAuthorization, error) {
	e, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	auth, err := NewAuthorization(e)
	if err != nil {
		return nil, err
	}
	if err := SeedDefaultPolicies(ctx, auth); err != nil {
		return nil, err
	}
	if cfg.EnableAudit {
		auth = NewAuditedAuthorization(auth, nil)
	}
	return auth, nil
}

func (a *Authorization) Raw() *casbin.SyncedEnforcer { return a.enforcer }

func (a *Authorization) Enforce(ctx context.Context, subject Role, object Resource, action Action) (bool, error) {
	_ = ctx

	if subject == "" {
		return false, fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	if object == "" {
		return false, fmt.Errorf("%w: object is empty", ErrInvalidArgs)
	}
	if action == "" {
		return false, fmt.Errorf("%w: action is empty", ErrInvalidArgs)
	}

	// Guardrails: only known constants reach casbin
	if _, ok := KnownResources[object]; !ok {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}

	return a.enforcer.Enforce(string(subject), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, subject Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ---- Permissions (p rules) ----

func (a *Authorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	_ = ctx
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.AddPolicy(string(p.Subject), string(p.Object), string(p.Action), string(p.Effect))
}

func (a *Authorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	_ = ctx
	if p.Subject == "" || p.Object == "" || p.Action == "" || p.Effect == "" {
		return false, fmt.Errorf("%w: empty permission fields", ErrInvalidArgs)
	}
	return a.enforcer.RemovePolicy(string(p.Subject), string(p.Object), string(p.Action), string(p.Effect))
}

func validatePolicy(p PermissionPolicy) error {
	if p.Subject == "" || p.Object == "" || p.Action == "" || p.Effect == "" {
		return fmt.Errorf("%w: empty permission fields", ErrInvalidArgs)
	}
	if _, ok := KnownRoles[p.Subject]; !ok {
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, p.Subject)
	}
	if _, ok := KnownResources[p.Object]; !ok && p.Object != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, p.Object)
	}
	if _, ok := KnownActions[p.Action]; !ok && p.Action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, p.Action)
	}
	if p.Effect != EffectAllow && p.Effect != EffectDeny {
		return fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, p.Effect)
	}
	return nil
}
