package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/authorize"
)

const (
	defaultDashboardLimit = 10
	maxDashboardLimit     = 100
)

// scopeFilter narrows f to what the actor may see. ok is false when the
// actor has no patient/doctor record, which means an empty result.
func (s *appointmentService) scopeFilter(ctx context.Context, actor authorize.Actor, f *repo.AppointmentFilter) (ok bool, err error) {
	switch actor.Role {
	case authorize.RoleAdmin:
		return true, nil
	case authorize.RolePatient:
		p, err := s.db.Patient.GetByUser(ctx, actor.UserID.String())
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("get patient: %w", err)
		}
		f.PatientID = p.ID
		return true, nil
	case authorize.RoleDoctor:
		d, err := s.db.Doctor.GetByUser(ctx, actor.UserID.String())
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("get doctor: %w", err)
		}
		f.DoctorID = d.ID
		return true, nil
	}
	return false, ErrForbidden
}

func (s *appointmentService) list(ctx context.Context, actor authorize.Actor, f repo.AppointmentFilter) ([]*View, error) {
	ok, err := s.scopeFilter(ctx, actor, &f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*View{}, nil
	}
	as, err := s.db.Appointment.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return s.enrich(ctx, as)
}

func (s *appointmentService) CurrentUserAppointments(ctx context.Context, actor authorize.Actor) ([]*View, error) {
	today := s.policy.Today()
	f := repo.AppointmentFilter{}
	switch actor.Role {
	case authorize.RolePatient:
		f.From = &today
		f.ActiveOnly = true
	case authorize.RoleDoctor:
		f.Statuses = []repo.AppointmentStatus{repo.StatusPending, repo.StatusConfirmed}
	}
	return s.list(ctx, actor, f)
}

func (s *appointmentService) Upcoming(ctx context.Context, actor authorize.Actor) ([]*View, error) {
	today := s.policy.Today()
	return s.list(ctx, actor, repo.AppointmentFilter{ActiveOnly: true, From: &today})
}

func (s *appointmentService) ByStatus(ctx context.Context, actor authorize.Actor, status repo.AppointmentStatus) ([]*View, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.list(ctx, actor, repo.AppointmentFilter{Statuses: []repo.AppointmentStatus{status}})
}

func (s *appointmentService) AdminDashboardUpcoming(ctx context.Context, limit int) ([]*View, error) {
	if limit < 1 {
		limit = defaultDashboardLimit
	}
	if limit > maxDashboardLimit {
		limit = maxDashboardLimit
	}
	today := s.policy.Today()
	as, err := s.db.Appointment.List(ctx, repo.AppointmentFilter{ActiveOnly: true, From: &today, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return s.enrich(ctx, as)
}

func (s *appointmentService) GetByID(ctx context.Context, actor authorize.Actor, id string) (*View, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case authorize.RoleAdmin:
	case authorize.RoleDoctor:
		err = s.authorizeDoctor(ctx, actor, a)
	case authorize.RolePatient:
		err = s.authorizePatient(ctx, actor, a)
	default:
		err = ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	vs, err := s.enrich(ctx, []*repo.Appointment{a})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

// enrich attaches display names with one batch read per collection.
func (s *appointmentService) enrich(ctx context.Context, as []*repo.Appointment) ([]*View, error) {
	out := make([]*View, 0, len(as))
	if len(as) == 0 {
		return out, nil
	}

	patientIDs := make([]string, 0, len(as))
	doctorIDs := make([]string, 0, len(as))
	for _, a := range as {
		patientIDs = append(patientIDs, a.PatientID)
		doctorIDs = append(doctorIDs, a.DoctorID)
	}

	patients, err := s.db.Patient.GetMany(ctx, uniq(patientIDs))
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	doctors, err := s.db.Doctor.GetMany(ctx, uniq(doctorIDs))
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	patientUser := make(map[string]string, len(patients))
	doctorByID := make(map[string]*repo.Doctor, len(doctors))
	userIDs := make([]string, 0, len(patients)+len(doctors))
	specIDs := make([]string, 0, len(doctors))
	for _, p := range patients {
		patientUser[p.ID] = p.UserID
		userIDs = append(userIDs, p.UserID)
	}
	for _, d := range doctors {
		doctorByID[d.ID] = d
		userIDs = append(userIDs, d.UserID)
		specIDs = append(specIDs, d.SpecializationID)
	}

	users, err := s.db.User.GetMany(ctx, uniq(userIDs))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	specs, err := s.db.Specialization.GetMany(ctx, uniq(specIDs))
	if err != nil {
		return nil, fmt.Errorf("load specializations: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	specNames := make(map[string]string, len(specs))
	for _, sp := range specs {
		specNames[sp.ID] = sp.Name
	}

	for _, a := range as {
		v := &View{Appointment: a}
		if uid, ok := patientUser[a.PatientID]; ok {
			v.PatientUserID = uid
			v.PatientName = names[uid]
		}
		if d, ok := doctorByID[a.DoctorID]; ok {
			v.DoctorUserID = d.UserID
			v.DoctorName = names[d.UserID]
			v.SpecializationID = d.SpecializationID
			v.SpecializationName = specNames[d.SpecializationID]
		}
		out = append(out, v)
	}
	return out, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
