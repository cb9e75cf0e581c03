// Package repo holds the persisted models and the stores that read and write
// them. Stores are interfaces so services can run against the MongoDB
// implementation in production and the in-memory one in tests.
package repo

import (
	"context"
	"time"
)

type UserStore interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetMany(ctx context.Context, ids []string) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	// Ensure returns the role with name, creating it when missing.
	Ensure(ctx context.Context, name string) (*Role, error)
	Get(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
}

type UserRoleStore interface {
	Create(ctx context.Context, ur *UserRole) error
	GetByUser(ctx context.Context, userID string) (*UserRole, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type DoctorFilter struct {
	SpecializationID string
}

type DoctorStore interface {
	Create(ctx context.Context, d *Doctor) error
	Get(ctx context.Context, id string) (*Doctor, error)
	GetByUser(ctx context.Context, userID string) (*Doctor, error)
	GetMany(ctx context.Context, ids []string) ([]*Doctor, error)
	List(ctx context.Context, f DoctorFilter) ([]*Doctor, error)
	CountBySpecialization(ctx context.Context, specializationID string) (int64, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id string) error
}

type PatientStore interface {
	Create(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id string) (*Patient, error)
	GetByUser(ctx context.Context, userID string) (*Patient, error)
	GetMany(ctx context.Context, ids []string) ([]*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id string) error
}

type SpecializationStore interface {
	Create(ctx context.Context, s *Specialization) error
	Get(ctx context.Context, id string) (*Specialization, error)
	GetMany(ctx context.Context, ids []string) ([]*Specialization, error)
	List(ctx context.Context) ([]*Specialization, error)
	Update(ctx context.Context, s *Specialization) error
	Delete(ctx context.Context, id string) error
}

type ScheduleFilter struct {
	DoctorID string
	// From keeps slots with work_date >= From.
	From *time.Time
}

type ScheduleStore interface {
	Create(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, id string) (*Schedule, error)
	// List is sorted by work_date ascending, morning before afternoon.
	List(ctx context.Context, f ScheduleFilter) ([]*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id string) error
	DeleteByDoctor(ctx context.Context, doctorID string) (int64, error)
}

type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Statuses  []AppointmentStatus
	// ActiveOnly drops canceled appointments.
	ActiveOnly bool
	WorkDate   *time.Time
	WorkShift  Shift
	// From keeps appointments with work_date >= From.
	From *time.Time
	// ExcludeID skips one appointment, used when checking a reschedule target.
	ExcludeID string
	Limit     int
}

type AppointmentStore interface {
	// Create fails with ErrDuplicate when the patient already holds an
	// active appointment on the same work_date and work_shift.
	Create(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	// List is sorted by work_date ascending then created_at ascending.
	List(ctx context.Context, f AppointmentFilter) ([]*Appointment, error)
	Count(ctx context.Context, f AppointmentFilter) (int64, error)
	Update(ctx context.Context, a *Appointment) error
	// MoveSlot rewrites every appointment of doctorID on the old slot to the
	// new one and stamps updated_at with at.
	MoveSlot(ctx context.Context, doctorID string, oldDate time.Time, oldShift Shift, newDate time.Time, newShift Shift, at time.Time) (int64, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

type AppointmentHistoryStore interface {
	Create(ctx context.Context, h *AppointmentHistory) error
	ListByAppointment(ctx context.Context, appointmentID string) ([]*AppointmentHistory, error)
	DeleteByAppointments(ctx context.Context, appointmentIDs []string) (int64, error)
}

type NotificationFilter struct {
	UserID        string
	RecipientType RecipientType
	UnreadOnly    bool
	Limit         int
}

type NotificationStore interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	// List is sorted newest first.
	List(ctx context.Context, f NotificationFilter) ([]*Notification, error)
	Count(ctx context.Context, f NotificationFilter) (int64, error)
	Update(ctx context.Context, n *Notification) error
	MarkAllRead(ctx context.Context, f NotificationFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	LatestByAppointment(ctx context.Context, appointmentID string) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
}

// Client groups every store, one field per collection.
type Client struct {
	User               UserStore
	Role               RoleStore
	UserRole           UserRoleStore
	Doctor             DoctorStore
	Patient            PatientStore
	Specialization     SpecializationStore
	Schedule           ScheduleStore
	Appointment        AppointmentStore
	AppointmentHistory AppointmentHistoryStore
	Notification       NotificationStore
	Payment            PaymentStore
}

// DayStart truncates t to 00:00 UTC of its calendar date, the form work_date is stored in.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
