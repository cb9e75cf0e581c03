package authorize

import "github.com/medibook/medibook_backend/pkg/constants"

type Action string
type Resource string
type Role string
type PolicyEffect string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Appointment lifecycle
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"

	// Administrative overrides (slot collisions checked, bulk delete)
	ActionOverride Action = "override"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionConfirm: {}, ActionComplete: {}, ActionCancel: {},
	ActionOverride: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceUser           Resource = "user"
	ResourceDoctor         Resource = "doctor"
	ResourcePatient        Resource = "patient"
	ResourceSpecialization Resource = "specialization"
	ResourceSchedule       Resource = "schedule"
	ResourceAppointment    Resource = "appointment"
	ResourceNotification   Resource = "notification"
	ResourcePayment        Resource = "payment"
	ResourceDashboard      Resource = "dashboard"
	ResourceSystem         Resource = "system"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourceDoctor: {}, ResourcePatient: {}, ResourceSpecialization: {},
	ResourceSchedule: {}, ResourceAppointment: {}, ResourceNotification: {},
	ResourcePayment: {}, ResourceDashboard: {}, ResourceSystem: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Subjects are the role names carried in access tokens.

const (
	RoleAdmin   Role = constants.RoleAdmin
	RoleDoctor  Role = constants.RoleDoctor
	RolePatient Role = constants.RolePatient
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin:   {},
	RoleDoctor:  {},
	RolePatient: {},
}

// Display names used in emails and the admin console.
var RoleDisplayNames = map[Role]string{
	RoleAdmin:   "Administrator",
	RoleDoctor:  "Doctor",
	RolePatient: "Patient",
}

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy is one p rule: role, resource, action, effect.
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
