package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/booking"
	"github.com/medibook/medibook_backend/internal/service/notification"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/email"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/logs"
	"github.com/medibook/medibook_backend/pkg/observability"
	"github.com/medibook/medibook_backend/pkg/redis"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientUserID string
	DoctorID      string
	WorkDate      time.Time
	WorkShift     repo.Shift
}

type UpdateRequest struct {
	WorkDate  time.Time
	WorkShift repo.Shift
	// Status is optional; empty keeps the current one.
	Status repo.AppointmentStatus
}

// View is an appointment with the display names of both parties.
type View struct {
	*repo.Appointment
	PatientUserID      string `json:"patient_user_id"`
	PatientName        string `json:"patient_name"`
	DoctorUserID       string `json:"doctor_user_id"`
	DoctorName         string `json:"doctor_name"`
	SpecializationID   string `json:"specialization_id,omitempty"`
	SpecializationName string `json:"specialization_name,omitempty"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Appointment, error)
	Confirm(ctx context.Context, actor authorize.Actor, id string, status repo.AppointmentStatus) (*repo.Appointment, error)
	Cancel(ctx context.Context, actor authorize.Actor, id string) (*repo.Appointment, error)
	Complete(ctx context.Context, actor authorize.Actor, id string) (*repo.Appointment, error)
	Update(ctx context.Context, actor authorize.Actor, id string, req UpdateRequest) (*repo.Appointment, error)
	AdminUpdate(ctx context.Context, actor authorize.Actor, id string, req UpdateRequest) (*repo.Appointment, error)
	Delete(ctx context.Context, id string) error
	DeleteByStatus(ctx context.Context, status repo.AppointmentStatus) (int64, error)

	CurrentUserAppointments(ctx context.Context, actor authorize.Actor) ([]*View, error)
	Upcoming(ctx context.Context, actor authorize.Actor) ([]*View, error)
	ByStatus(ctx context.Context, actor authorize.Actor, status repo.AppointmentStatus) ([]*View, error)
	AdminDashboardUpcoming(ctx context.Context, limit int) ([]*View, error)
	GetByID(ctx context.Context, actor authorize.Actor, id string) (*View, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	db       *repo.Client
	locker   redis.Locker
	notifier notification.Service
	bus      events.Publisher
	mail     booking.Mail
	policy   booking.Policy
	metrics  *observability.Metrics
}

func New(
	db *repo.Client,
	locker redis.Locker,
	notifier notification.Service,
	bus events.Publisher,
	mail booking.Mail,
	policy booking.Policy,
) Service {
	return &appointmentService{
		db:       db,
		locker:   locker,
		notifier: notifier,
		bus:      bus,
		mail:     mail,
		policy:   policy,
		metrics:  mail.Metrics,
	}
}

// party is one side of an appointment resolved down to its user row.
type party struct {
	user *repo.User
}

func (s *appointmentService) loadPatientByUser(ctx context.Context, userID string) (*repo.Patient, error) {
	p, err := s.db.Patient.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *appointmentService) loadDoctor(ctx context.Context, id string) (*repo.Doctor, error) {
	d, err := s.db.Doctor.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (s *appointmentService) load(ctx context.Context, id string) (*repo.Appointment, error) {
	a, err := s.db.Appointment.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// parties resolves the patient and doctor users of a. Missing rows come back
// as empty parties so a dangling reference never blocks a status change.
func (s *appointmentService) parties(ctx context.Context, a *repo.Appointment) (patient, doctor party) {
	if p, err := s.db.Patient.Get(ctx, a.PatientID); err == nil {
		if u, err := s.db.User.Get(ctx, p.UserID); err == nil {
			patient.user = u
		}
	}
	if d, err := s.db.Doctor.Get(ctx, a.DoctorID); err == nil {
		if u, err := s.db.User.Get(ctx, d.UserID); err == nil {
			doctor.user = u
		}
	}
	return patient, doctor
}

func (p party) userID() string {
	if p.user == nil {
		return ""
	}
	return p.user.ID
}

func (p party) name() string {
	if p.user == nil {
		return ""
	}
	return p.user.Name
}

func (p party) email() string {
	if p.user == nil {
		return ""
	}
	return p.user.Email
}

// authorizeDoctor allows admins and the doctor the appointment is booked with.
func (s *appointmentService) authorizeDoctor(ctx context.Context, actor authorize.Actor, a *repo.Appointment) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsDoctor() {
		return ErrForbidden
	}
	d, err := s.db.Doctor.GetByUser(ctx, actor.UserID.String())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("get doctor: %w", err)
	}
	if d.ID != a.DoctorID {
		return ErrForbidden
	}
	return nil
}

// authorizePatient allows admins and the patient who booked.
func (s *appointmentService) authorizePatient(ctx context.Context, actor authorize.Actor, a *repo.Appointment) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsPatient() {
		return ErrForbidden
	}
	p, err := s.db.Patient.GetByUser(ctx, actor.UserID.String())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("get patient: %w", err)
	}
	if p.ID != a.PatientID {
		return ErrForbidden
	}
	return nil
}

func (s *appointmentService) notify(ctx context.Context, req notification.CreateRequest) {
	if req.UserID == "" {
		return
	}
	if _, err := s.notifier.Create(ctx, req); err != nil {
		logs.FromContext(ctx).Warn("appointment notification failed", "appointment_id", req.AppointmentID, "recipient", req.RecipientType, "error", err)
	}
}

func (s *appointmentService) publish(ctx context.Context, subject string, a *repo.Appointment, patient, doctor party) {
	if s.bus == nil {
		return
	}
	ev := events.AppointmentEvent{
		AppointmentID: a.ID,
		PatientUserID: patient.userID(),
		DoctorUserID:  doctor.userID(),
		WorkDate:      a.WorkDate,
		WorkShift:     string(a.WorkShift),
		Status:        string(a.Status),
	}
	if err := events.PublishJSON(ctx, s.bus, subject, ev); err != nil {
		logs.FromContext(ctx).Warn("publish appointment event failed", "subject", subject, "appointment_id", a.ID, "error", err)
	}
}

func slotText(d time.Time, shift repo.Shift) string {
	return d.Format("2006-01-02") + " (" + string(shift) + ")"
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *appointmentService) Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Appointment, error) {
	if !actor.IsAdmin() && actor.UserID.String() != req.PatientUserID {
		return nil, ErrForbidden
	}
	if req.PatientUserID == "" || req.DoctorID == "" || req.WorkDate.IsZero() || !req.WorkShift.Valid() {
		return nil, ErrInvalidInput
	}

	patient, err := s.loadPatientByUser(ctx, req.PatientUserID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.loadDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	workDate := repo.DayStart(req.WorkDate)
	if s.policy.SlotStarted(workDate, req.WorkShift) {
		s.metrics.Booking(ctx, observability.OutcomeStarted)
		return nil, ErrSlotStarted
	}

	var appt *repo.Appointment
	lockKey := "booking:" + patient.ID + ":" + workDate.Format("2006-01-02")
	err = s.locker.WithLock(ctx, lockKey, s.policy.LockWait, func(ctx context.Context) error {
		var err error
		appt, err = s.insertLocked(ctx, patient, doctor, workDate, req.WorkShift)
		return err
	})
	if err != nil {
		if errors.Is(err, redis.ErrLockBusy) {
			return nil, ErrBusy
		}
		return nil, err
	}
	s.metrics.Booking(ctx, observability.OutcomeBooked)

	if err := s.db.AppointmentHistory.Create(ctx, &repo.AppointmentHistory{
		ID:            repo.NewID(),
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		Status:        appt.Status,
		Date:          appt.CreatedAt,
	}); err != nil {
		logs.FromContext(ctx).Error("appointment history insert failed", "appointment_id", appt.ID, "error", err)
	}

	pParty, dParty := s.parties(ctx, appt)
	slot := slotText(appt.WorkDate, appt.WorkShift)
	s.notify(ctx, notification.CreateRequest{
		UserID:        pParty.userID(),
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		AppointmentID: appt.ID,
		RecipientType: repo.RecipientPatient,
		Content:       fmt.Sprintf("Your appointment with %s on %s is booked and awaiting confirmation.", dParty.name(), slot),
	})
	s.notify(ctx, notification.CreateRequest{
		UserID:        dParty.userID(),
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		AppointmentID: appt.ID,
		RecipientType: repo.RecipientDoctor,
		Content:       fmt.Sprintf("%s booked an appointment on %s.", pParty.name(), slot),
	})
	s.publish(ctx, constants.SubjectAppointmentCreated, appt, pParty, dParty)

	return appt, nil
}

// insertLocked runs the per-patient checks and the insert while the
// (patient, date) lock is held.
func (s *appointmentService) insertLocked(ctx context.Context, patient *repo.Patient, doctor *repo.Doctor, workDate time.Time, shift repo.Shift) (*repo.Appointment, error) {
	dup, err := s.db.Appointment.Count(ctx, repo.AppointmentFilter{
		PatientID: patient.ID, WorkDate: &workDate, WorkShift: shift, ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("count slot bookings: %w", err)
	}
	if dup > 0 {
		s.metrics.Booking(ctx, observability.OutcomeDuplicate)
		return nil, ErrDuplicateBooking
	}

	canceled, err := s.db.Appointment.Count(ctx, repo.AppointmentFilter{
		PatientID: patient.ID, WorkDate: &workDate, WorkShift: shift,
		Statuses: []repo.AppointmentStatus{repo.StatusCanceled},
	})
	if err != nil {
		return nil, fmt.Errorf("count slot cancellations: %w", err)
	}
	if canceled >= int64(s.policy.MaxSlotCancels) {
		s.metrics.Booking(ctx, observability.OutcomeCancelCap)
		return nil, ErrCancellationLimit
	}

	daily, err := s.db.Appointment.Count(ctx, repo.AppointmentFilter{
		PatientID: patient.ID, WorkDate: &workDate, ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("count daily bookings: %w", err)
	}
	if daily >= int64(s.policy.DailyLimit) {
		s.metrics.Booking(ctx, observability.OutcomeDailyCap)
		return nil, ErrDailyLimit
	}

	now := s.policy.Clock()
	appt := &repo.Appointment{
		ID:        repo.NewID(),
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		WorkDate:  workDate,
		WorkShift: shift,
		Status:    repo.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	appt.SyncActive()
	if err := s.db.Appointment.Create(ctx, appt); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			s.metrics.Booking(ctx, observability.OutcomeDuplicate)
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func (s *appointmentService) save(ctx context.Context, a *repo.Appointment) error {
	a.UpdatedAt = s.policy.Clock()
	a.SyncActive()
	if err := s.db.Appointment.Update(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateBooking
		}
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	s.metrics.Transition(ctx, string(a.Status))
	return nil
}

func (s *appointmentService) Confirm(ctx context.Context, actor authorize.Actor, id string, status repo.AppointmentStatus) (*repo.Appointment, error) {
	if status != repo.StatusConfirmed && status != repo.StatusCanceled {
		return nil, ErrInvalidStatus
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(ctx, actor, a); err != nil {
		return nil, err
	}
	if a.Status != repo.StatusPending {
		return nil, ErrInvalidStatus
	}

	a.Status = status
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}

	pParty, dParty := s.parties(ctx, a)
	verb := "confirmed"
	subject := constants.SubjectAppointmentUpdated
	if status == repo.StatusCanceled {
		verb = "declined"
		subject = constants.SubjectAppointmentCanceled
	}
	s.notify(ctx, notification.CreateRequest{
		UserID:        pParty.userID(),
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		AppointmentID: a.ID,
		RecipientType: repo.RecipientPatient,
		Content:       fmt.Sprintf("%s %s your appointment on %s.", dParty.name(), verb, slotText(a.WorkDate, a.WorkShift)),
	})
	s.publish(ctx, subject, a, pParty, dParty)
	return a, nil
}

func (s *appointmentService) Cancel(ctx context.Context, actor authorize.Actor, id string) (*repo.Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePatient(ctx, actor, a); err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, ErrInvalidStatus
	}
	if s.policy.WithinLockWindow(a.WorkDate) {
		return nil, ErrCancellationWindowExpired
	}

	a.Status = repo.StatusCanceled
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}

	pParty, dParty := s.parties(ctx, a)
	s.notify(ctx, notification.CreateRequest{
		UserID:        dParty.userID(),
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		AppointmentID: a.ID,
		RecipientType: repo.RecipientDoctor,
		Content:       fmt.Sprintf("%s canceled the appointment on %s.", pParty.name(), slotText(a.WorkDate, a.WorkShift)),
	})

	data := s.mail.Data()
	data.To = dParty.email()
	data.RecipientName = dParty.name()
	data.OtherName = pParty.name()
	data.Date = a.WorkDate
	data.Shift = string(a.WorkShift)
	s.mail.Send(ctx, "cancellation", email.BuildCancellationEmail(data))

	s.publish(ctx, constants.SubjectAppointmentCanceled, a, pParty, dParty)
	return a, nil
}

func (s *appointmentService) Complete(ctx context.Context, actor authorize.Actor, id string) (*repo.Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(ctx, actor, a); err != nil {
		return nil, err
	}
	if a.Status != repo.StatusConfirmed {
		return nil, ErrInvalidStatus
	}

	a.Status = repo.StatusCompleted
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}

	pParty, dParty := s.parties(ctx, a)
	s.notify(ctx, notification.CreateRequest{
		UserID:        pParty.userID(),
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		AppointmentID: a.ID,
		RecipientType: repo.RecipientPatient,
		Content:       fmt.Sprintf("Your appointment with %s on %s is completed.", dParty.name(), slotText(a.WorkDate, a.WorkShift)),
	})
	s.publish(ctx, constants.SubjectAppointmentUpdated, a, pParty, dParty)
	return a, nil
}

func (r UpdateRequest) validate() error {
	if r.WorkDate.IsZero() || !r.WorkShift.Valid() {
		return ErrInvalidInput
	}
	if r.Status != "" && !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (s *appointmentService) Update(ctx context.Context, actor authorize.Actor, id string, req UpdateRequest) (*repo.Appointment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(ctx, actor, a); err != nil {
		return nil, err
	}
	// closed appointments only move through AdminUpdate
	if a.Status.Terminal() && !actor.IsAdmin() {
		return nil, ErrInvalidStatus
	}
	return s.reschedule(ctx, a, req)
}

func (s *appointmentService) AdminUpdate(ctx context.Context, actor authorize.Actor, id string, req UpdateRequest) (*repo.Appointment, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	newDate := repo.DayStart(req.WorkDate)
	clash, err := s.db.Appointment.Count(ctx, repo.AppointmentFilter{
		PatientID:  a.PatientID,
		WorkDate:   &newDate,
		WorkShift:  req.WorkShift,
		ActiveOnly: true,
		ExcludeID:  a.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("check slot collision: %w", err)
	}
	if clash > 0 {
		return nil, ErrDuplicateBooking
	}
	return s.reschedule(ctx, a, req)
}

// reschedule overwrites slot and status, then tells the patient.
func (s *appointmentService) reschedule(ctx context.Context, a *repo.Appointment, req UpdateRequest) (*repo.Appointment, error) {
	oldDate, oldShift := a.WorkDate, a.WorkShift

	a.WorkDate = repo.DayStart(req.WorkDate)
	a.WorkShift = req.WorkShift
	if req.Status != "" {
		a.Status = req.Status
	}
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}

	pParty, dParty := s.parties(ctx, a)
	newDate := a.WorkDate
	s.notify(ctx, notification.CreateRequest{
		UserID:        pParty.userID(),
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		AppointmentID: a.ID,
		RecipientType: repo.RecipientPatient,
		Content: fmt.Sprintf("Your appointment with %s moved from %s to %s.",
			dParty.name(), slotText(oldDate, oldShift), slotText(a.WorkDate, a.WorkShift)),
		NewDate:      &newDate,
		NewWorkShift: a.WorkShift,
	})

	data := s.mail.Data()
	data.To = pParty.email()
	data.RecipientName = pParty.name()
	data.OtherName = dParty.name()
	data.Date, data.Shift = oldDate, string(oldShift)
	data.NewDate, data.NewShift = a.WorkDate, string(a.WorkShift)
	s.mail.Send(ctx, "reschedule", email.BuildRescheduleEmail(data))

	s.publish(ctx, constants.SubjectAppointmentUpdated, a, pParty, dParty)
	return a, nil
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.deleteIDs(ctx, []string{a.ID})
	return err
}

func (s *appointmentService) DeleteByStatus(ctx context.Context, status repo.AppointmentStatus) (int64, error) {
	if !status.Valid() {
		return 0, ErrInvalidStatus
	}
	as, err := s.db.Appointment.List(ctx, repo.AppointmentFilter{Statuses: []repo.AppointmentStatus{status}})
	if err != nil {
		return 0, fmt.Errorf("list appointments: %w", err)
	}
	ids := make([]string, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.ID)
	}
	return s.deleteIDs(ctx, ids)
}

func (s *appointmentService) deleteIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.db.Appointment.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete appointments: %w", err)
	}
	if _, err := s.db.AppointmentHistory.DeleteByAppointments(ctx, ids); err != nil {
		return n, fmt.Errorf("delete appointment history: %w", err)
	}
	return n, nil
}
