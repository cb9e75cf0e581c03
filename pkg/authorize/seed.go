package authorize

import (
	"context"
	"log/slog"
)

func allow(role Role, obj Resource, acts ...Action) []PermissionPolicy {
	out := make([]PermissionPolicy, 0, len(acts))
	for _, a := range acts {
		out = append(out, PermissionPolicy{role, obj, a, EffectAllow})
	}
	return out
}

// DefaultPolicies is the baseline role matrix. Ownership (a doctor's own
// appointments, a patient's own notifications) is checked by the services.
func DefaultPolicies() []PermissionPolicy {
	var ps []PermissionPolicy

	// Admin: everything
	ps = append(ps, PermissionPolicy{RoleAdmin, WildcardResource, WildcardAction, EffectAllow})

	// Doctor
	ps = append(ps, allow(RoleDoctor, ResourceSchedule, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList)...)
	ps = append(ps, allow(RoleDoctor, ResourceAppointment, ActionRead, ActionList, ActionConfirm, ActionComplete, ActionUpdate)...)
	ps = append(ps, allow(RoleDoctor, ResourceNotification, ActionRead, ActionList, ActionUpdate, ActionDelete)...)
	ps = append(ps, allow(RoleDoctor, ResourceUser, ActionRead, ActionUpdate)...)
	ps = append(ps, allow(RoleDoctor, ResourcePatient, ActionRead)...)

	// Patient
	ps = append(ps, allow(RolePatient, ResourceAppointment, ActionCreate, ActionRead, ActionList, ActionCancel)...)
	ps = append(ps, allow(RolePatient, ResourceNotification, ActionRead, ActionList, ActionUpdate, ActionDelete)...)
	ps = append(ps, allow(RolePatient, ResourcePayment, ActionCreate, ActionRead)...)
	ps = append(ps, allow(RolePatient, ResourceUser, ActionRead, ActionUpdate)...)
	ps = append(ps, allow(RolePatient, ResourcePatient, ActionRead)...)

	return ps
}

// SeedDefaultPolicies loads DefaultPolicies into auth.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p)
		if err != nil {
			slog.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			slog.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	slog.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}
