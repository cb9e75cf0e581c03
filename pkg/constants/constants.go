package constants

const (
	AppName      = "medibook"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "MEDIBOOK"
)

// Role names as stored in the roles collection and carried in tokens.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// Subjects published on the event bus.
const (
	SubjectNotificationChanged = "medibook.notification.changed"
	SubjectAppointmentCreated  = "medibook.appointment.created"
	SubjectAppointmentCanceled = "medibook.appointment.canceled"
	SubjectAppointmentUpdated  = "medibook.appointment.updated"
	SubjectPaymentReceived     = "medibook.payment.received"
)
