package authorize

import "testing"

func TestKnownRoles(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RolePatient} {
		if _, ok := KnownRoles[r]; !ok {
			t.Errorf("role %q missing from KnownRoles", r)
		}
		if RoleDisplayNames[r] == "" {
			t.Errorf("role %q has no display name", r)
		}
	}
}

func TestDefaultPoliciesUseKnownConstants(t *testing.T) {
	for _, p := range DefaultPolicies() {
		if err := validatePolicy(p); err != nil {
			t.Errorf("policy %+v: %v", p, err)
		}
	}
}
