package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/booking"
	"github.com/medibook/medibook_backend/internal/service/notification"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/email"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	// DoctorID is only read for admins; doctors always create on their own record.
	DoctorID  string
	WorkDate  time.Time
	WorkShift repo.Shift
}

type UpdateRequest struct {
	WorkDate  time.Time
	WorkShift repo.Shift
}

// UpdateResult reports how many appointments followed the slot and how many
// patients were emailed about it.
type UpdateResult struct {
	Schedule          *repo.Schedule `json:"schedule"`
	MovedAppointments int64          `json:"moved_appointments"`
	NotifiedPatients  int            `json:"notified_patients"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Schedule, error)
	Update(ctx context.Context, actor authorize.Actor, id string, req UpdateRequest) (*UpdateResult, error)
	Delete(ctx context.Context, actor authorize.Actor, id string) error

	// Public
	ListByDoctor(ctx context.Context, doctorID string) ([]*repo.Schedule, error)

	ListMine(ctx context.Context, actor authorize.Actor) ([]*repo.Schedule, error)
	ListAll(ctx context.Context) ([]*repo.Schedule, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type schedulingService struct {
	db       *repo.Client
	notifier notification.Service
	mail     booking.Mail
	policy   booking.Policy
}

func New(db *repo.Client, notifier notification.Service, mail booking.Mail, policy booking.Policy) Service {
	return &schedulingService{db: db, notifier: notifier, mail: mail, policy: policy}
}

func (s *schedulingService) doctorFor(ctx context.Context, actor authorize.Actor, doctorID string) (*repo.Doctor, error) {
	var (
		d   *repo.Doctor
		err error
	)
	switch {
	case actor.IsDoctor():
		d, err = s.db.Doctor.GetByUser(ctx, actor.UserID.String())
	case actor.IsAdmin() && doctorID != "":
		d, err = s.db.Doctor.Get(ctx, doctorID)
	case actor.IsAdmin():
		return nil, ErrInvalidInput
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

// loadOwned returns the schedule when the actor is its doctor or an admin.
func (s *schedulingService) loadOwned(ctx context.Context, actor authorize.Actor, id string) (*repo.Schedule, error) {
	sc, err := s.db.Schedule.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if actor.IsAdmin() {
		return sc, nil
	}
	if !actor.IsDoctor() {
		return nil, ErrForbidden
	}
	d, err := s.db.Doctor.GetByUser(ctx, actor.UserID.String())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if d.ID != sc.DoctorID {
		return nil, ErrForbidden
	}
	return sc, nil
}

// ---------------------------------------------------------------------------
// Write
// ---------------------------------------------------------------------------

func (s *schedulingService) Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Schedule, error) {
	if req.WorkDate.IsZero() || !req.WorkShift.Valid() {
		return nil, ErrInvalidInput
	}
	d, err := s.doctorFor(ctx, actor, req.DoctorID)
	if err != nil {
		return nil, err
	}
	workDate := repo.DayStart(req.WorkDate)
	if s.policy.SlotStarted(workDate, req.WorkShift) {
		return nil, ErrSlotStarted
	}

	sc := &repo.Schedule{
		ID:        repo.NewID(),
		DoctorID:  d.ID,
		WorkDate:  workDate,
		WorkShift: req.WorkShift,
		CreatedAt: s.policy.Clock(),
	}
	if err := s.db.Schedule.Create(ctx, sc); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return sc, nil
}

func (s *schedulingService) Update(ctx context.Context, actor authorize.Actor, id string, req UpdateRequest) (*UpdateResult, error) {
	if req.WorkDate.IsZero() || !req.WorkShift.Valid() {
		return nil, ErrInvalidInput
	}
	sc, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.policy.WithinLockWindow(sc.WorkDate) {
		return nil, ErrWithinLockWindow
	}
	newDate := repo.DayStart(req.WorkDate)
	if s.policy.SlotStarted(newDate, req.WorkShift) {
		return nil, ErrSlotStarted
	}
	if newDate.Equal(sc.WorkDate) && req.WorkShift == sc.WorkShift {
		return &UpdateResult{Schedule: sc}, nil
	}

	// read the bookings before the move so we know who to tell
	affected, err := s.db.Appointment.List(ctx, repo.AppointmentFilter{
		DoctorID:  sc.DoctorID,
		WorkDate:  &sc.WorkDate,
		WorkShift: sc.WorkShift,
	})
	if err != nil {
		return nil, fmt.Errorf("list slot appointments: %w", err)
	}

	if err := s.checkTarget(ctx, affected, newDate, req.WorkShift); err != nil {
		return nil, err
	}

	oldDate, oldShift := sc.WorkDate, sc.WorkShift
	sc.WorkDate, sc.WorkShift = newDate, req.WorkShift
	if err := s.db.Schedule.Update(ctx, sc); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	moved, err := s.db.Appointment.MoveSlot(ctx, sc.DoctorID, oldDate, oldShift, newDate, req.WorkShift, s.policy.Clock())
	if err != nil {
		// a booking raced in after checkTarget; put the schedule back
		sc.WorkDate, sc.WorkShift = oldDate, oldShift
		if rerr := s.db.Schedule.Update(ctx, sc); rerr != nil {
			slog.Error("schedule restore failed", "schedule_id", sc.ID, "error", rerr)
		}
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAppointmentClash
		}
		return nil, fmt.Errorf("move slot appointments: %w", err)
	}

	res := &UpdateResult{Schedule: sc, MovedAppointments: moved}
	res.NotifiedPatients = s.tellPatients(ctx, sc, affected, oldDate, oldShift)
	return res, nil
}

// checkTarget rejects a move when a patient on the slot already holds an
// active booking at the target date and shift.
func (s *schedulingService) checkTarget(ctx context.Context, affected []*repo.Appointment, date time.Time, shift repo.Shift) error {
	checked := make(map[string]bool, len(affected))
	for _, a := range affected {
		if !a.Active || checked[a.PatientID] {
			continue
		}
		checked[a.PatientID] = true
		n, err := s.db.Appointment.Count(ctx, repo.AppointmentFilter{
			PatientID: a.PatientID, WorkDate: &date, WorkShift: shift, ActiveOnly: true,
		})
		if err != nil {
			return fmt.Errorf("check target slot: %w", err)
		}
		if n > 0 {
			return ErrAppointmentClash
		}
	}
	return nil
}

// tellPatients notifies and emails every distinct patient on the moved slot,
// one after another. It returns how many patients were reached.
func (s *schedulingService) tellPatients(ctx context.Context, sc *repo.Schedule, affected []*repo.Appointment, oldDate time.Time, oldShift repo.Shift) int {
	if len(affected) == 0 {
		return 0
	}

	var doctorName string
	if d, err := s.db.Doctor.Get(ctx, sc.DoctorID); err == nil {
		if u, err := s.db.User.Get(ctx, d.UserID); err == nil {
			doctorName = u.Name
		}
	}

	seen := make(map[string]bool, len(affected))
	reached := 0
	for _, a := range affected {
		if seen[a.PatientID] {
			continue
		}
		seen[a.PatientID] = true

		p, err := s.db.Patient.Get(ctx, a.PatientID)
		if err != nil {
			slog.Warn("schedule change: patient lookup failed", "patient_id", a.PatientID, "error", err)
			continue
		}
		u, err := s.db.User.Get(ctx, p.UserID)
		if err != nil {
			slog.Warn("schedule change: user lookup failed", "user_id", p.UserID, "error", err)
			continue
		}

		newDate := sc.WorkDate
		if _, err := s.notifier.Create(ctx, notification.CreateRequest{
			UserID:        u.ID,
			PatientID:     a.PatientID,
			DoctorID:      sc.DoctorID,
			AppointmentID: a.ID,
			RecipientType: repo.RecipientPatient,
			Content: fmt.Sprintf("%s moved the %s %s slot to %s %s.", doctorName,
				oldDate.Format("2006-01-02"), oldShift, sc.WorkDate.Format("2006-01-02"), sc.WorkShift),
			NewDate:      &newDate,
			NewWorkShift: sc.WorkShift,
		}); err != nil {
			slog.Warn("schedule change notification failed", "user_id", u.ID, "error", err)
		}

		data := s.mail.Data()
		data.To = u.Email
		data.RecipientName = u.Name
		data.OtherName = doctorName
		data.Date, data.Shift = oldDate, string(oldShift)
		data.NewDate, data.NewShift = sc.WorkDate, string(sc.WorkShift)
		s.mail.Send(ctx, "schedule_change", email.BuildScheduleChangeEmail(data))
		reached++
	}
	return reached
}

func (s *schedulingService) Delete(ctx context.Context, actor authorize.Actor, id string) error {
	sc, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if s.policy.WithinLockWindow(sc.WorkDate) {
		return ErrWithinLockWindow
	}
	if err := s.db.Schedule.Delete(ctx, sc.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func (s *schedulingService) ListByDoctor(ctx context.Context, doctorID string) ([]*repo.Schedule, error) {
	if _, err := s.db.Doctor.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	today := s.policy.Today()
	out, err := s.db.Schedule.List(ctx, repo.ScheduleFilter{DoctorID: doctorID, From: &today})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (s *schedulingService) ListMine(ctx context.Context, actor authorize.Actor) ([]*repo.Schedule, error) {
	if !actor.IsDoctor() {
		return nil, ErrForbidden
	}
	d, err := s.db.Doctor.GetByUser(ctx, actor.UserID.String())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	today := s.policy.Today()
	out, err := s.db.Schedule.List(ctx, repo.ScheduleFilter{DoctorID: d.ID, From: &today})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (s *schedulingService) ListAll(ctx context.Context) ([]*repo.Schedule, error) {
	out, err := s.db.Schedule.List(ctx, repo.ScheduleFilter{})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}
