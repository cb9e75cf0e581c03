// Package memory is an in-process implementation of the repo stores. It
// enforces the same unique constraints as the MongoDB indexes and is used by
// service tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
)

type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]T{}}
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) get(id string) (*T, error) {
	v, ok := t.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &v, nil
}

func (t *table[T]) del(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	return true
}

// where returns copies of matching rows in insertion order.
func (t *table[T]) where(match func(*T) bool) []*T {
	var out []*T
	for _, id := range t.order {
		v := t.rows[id]
		if match == nil || match(&v) {
			out = append(out, &v)
		}
	}
	return out
}

func (t *table[T]) first(match func(*T) bool) (*T, error) {
	for _, id := range t.order {
		v := t.rows[id]
		if match(&v) {
			return &v, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (t *table[T]) byIDs(ids []string) []*T {
	var out []*T
	for _, id := range ids {
		if v, ok := t.rows[id]; ok {
			out = append(out, &v)
		}
	}
	return out
}

type DB struct {
	mu sync.Mutex

	users        *table[repo.User]
	roles        *table[repo.Role]
	userRoles    *table[repo.UserRole]
	doctors      *table[repo.Doctor]
	patients     *table[repo.Patient]
	specs        *table[repo.Specialization]
	schedules    *table[repo.Schedule]
	appointments *table[repo.Appointment]
	histories    *table[repo.AppointmentHistory]
	notes        *table[repo.Notification]
	payments     *table[repo.Payment]
}

// New returns a Client backed by fresh in-memory tables.
func New() *repo.Client {
	return NewDB().Client()
}

func NewDB() *DB {
	return &DB{
		users:        newTable[repo.User](),
		roles:        newTable[repo.Role](),
		userRoles:    newTable[repo.UserRole](),
		doctors:      newTable[repo.Doctor](),
		patients:     newTable[repo.Patient](),
		specs:        newTable[repo.Specialization](),
		schedules:    newTable[repo.Schedule](),
		appointments: newTable[repo.Appointment](),
		histories:    newTable[repo.AppointmentHistory](),
		notes:        newTable[repo.Notification](),
		payments:     newTable[repo.Payment](),
	}
}

func (db *DB) Client() *repo.Client {
	return &repo.Client{
		User:               users{db},
		Role:               roles{db},
		UserRole:           userRoles{db},
		Doctor:             doctors{db},
		Patient:            patients{db},
		Specialization:     specializations{db},
		Schedule:           schedules{db},
		Appointment:        appointments{db},
		AppointmentHistory: histories{db},
		Notification:       notifications{db},
		Payment:            payments{db},
	}
}

// ----- users & roles -----

type users struct{ db *DB }

func (s users) Create(_ context.Context, u *repo.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.users.first(func(x *repo.User) bool { return x.Email == u.Email }); err == nil {
		return repo.ErrDuplicate
	}
	if _, ok := s.db.users.rows[u.ID]; ok {
		return repo.ErrDuplicate
	}
	s.db.users.put(u.ID, *u)
	return nil
}

func (s users) Get(_ context.Context, id string) (*repo.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.users.get(id)
}

func (s users) GetByEmail(_ context.Context, email string) (*repo.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	return s.db.users.first(func(x *repo.User) bool { return x.Email == email })
}

func (s users) GetMany(_ context.Context, ids []string) ([]*repo.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.users.byIDs(ids), nil
}

func (s users) Update(_ context.Context, u *repo.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users.rows[u.ID]; !ok {
		return repo.ErrNotFound
	}
	if _, err := s.db.users.first(func(x *repo.User) bool { return x.Email == u.Email && x.ID != u.ID }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.users.put(u.ID, *u)
	return nil
}

func (s users) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.users.del(id) {
		return repo.ErrNotFound
	}
	return nil
}

type roles struct{ db *DB }

func (s roles) Ensure(_ context.Context, name string) (*repo.Role, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if r, err := s.db.roles.first(func(x *repo.Role) bool { return x.Name == name }); err == nil {
		return r, nil
	}
	r := repo.Role{ID: repo.NewID(), Name: name}
	s.db.roles.put(r.ID, r)
	return &r, nil
}

func (s roles) Get(_ context.Context, id string) (*repo.Role, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.roles.get(id)
}

func (s roles) GetByName(_ context.Context, name string) (*repo.Role, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.roles.first(func(x *repo.Role) bool { return x.Name == name })
}

type userRoles struct{ db *DB }

func (s userRoles) Create(_ context.Context, ur *repo.UserRole) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.userRoles.first(func(x *repo.UserRole) bool { return x.UserID == ur.UserID }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.userRoles.put(ur.ID, *ur)
	return nil
}

func (s userRoles) GetByUser(_ context.Context, userID string) (*repo.UserRole, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.userRoles.first(func(x *repo.UserRole) bool { return x.UserID == userID })
}

func (s userRoles) DeleteByUser(_ context.Context, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, ur := range s.db.userRoles.where(func(x *repo.UserRole) bool { return x.UserID == userID }) {
		s.db.userRoles.del(ur.ID)
	}
	return nil
}

// ----- directory -----

type doctors struct{ db *DB }

func (s doctors) Create(_ context.Context, d *repo.Doctor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.doctors.first(func(x *repo.Doctor) bool { return x.UserID == d.UserID }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.doctors.put(d.ID, *d)
	return nil
}

func (s doctors) Get(_ context.Context, id string) (*repo.Doctor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.doctors.get(id)
}

func (s doctors) GetByUser(_ context.Context, userID string) (*repo.Doctor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.doctors.first(func(x *repo.Doctor) bool { return x.UserID == userID })
}

func (s doctors) GetMany(_ context.Context, ids []string) ([]*repo.Doctor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.doctors.byIDs(ids), nil
}

func (s doctors) List(_ context.Context, f repo.DoctorFilter) ([]*repo.Doctor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.doctors.where(func(x *repo.Doctor) bool {
		return f.SpecializationID == "" || x.SpecializationID == f.SpecializationID
	}), nil
}

func (s doctors) CountBySpecialization(_ context.Context, specializationID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.db.doctors.where(func(x *repo.Doctor) bool { return x.SpecializationID == specializationID }))), nil
}

func (s doctors) Update(_ context.Context, d *repo.Doctor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.doctors.rows[d.ID]; !ok {
		return repo.ErrNotFound
	}
	s.db.doctors.put(d.ID, *d)
	return nil
}

func (s doctors) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.doctors.del(id) {
		return repo.ErrNotFound
	}
	return nil
}

type patients struct{ db *DB }

func (s patients) Create(_ context.Context, p *repo.Patient) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.patients.first(func(x *repo.Patient) bool { return x.UserID == p.UserID }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.patients.put(p.ID, *p)
	return nil
}

func (s patients) Get(_ context.Context, id string) (*repo.Patient, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.patients.get(id)
}

func (s patients) GetByUser(_ context.Context, userID string) (*repo.Patient, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.patients.first(func(x *repo.Patient) bool { return x.UserID == userID })
}

func (s patients) GetMany(_ context.Context, ids []string) ([]*repo.Patient, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.patients.byIDs(ids), nil
}

func (s patients) List(_ context.Context) ([]*repo.Patient, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.patients.where(nil), nil
}

func (s patients) Update(_ context.Context, p *repo.Patient) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.patients.rows[p.ID]; !ok {
		return repo.ErrNotFound
	}
	s.db.patients.put(p.ID, *p)
	return nil
}

func (s patients) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.patients.del(id) {
		return repo.ErrNotFound
	}
	return nil
}

type specializations struct{ db *DB }

func (s specializations) Create(_ context.Context, sp *repo.Specialization) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.specs.first(func(x *repo.Specialization) bool { return x.Name == sp.Name }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.specs.put(sp.ID, *sp)
	return nil
}

func (s specializations) Get(_ context.Context, id string) (*repo.Specialization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.specs.get(id)
}

func (s specializations) GetMany(_ context.Context, ids []string) ([]*repo.Specialization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.specs.byIDs(ids), nil
}

func (s specializations) List(_ context.Context) ([]*repo.Specialization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.specs.where(nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s specializations) Update(_ context.Context, sp *repo.Specialization) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.specs.rows[sp.ID]; !ok {
		return repo.ErrNotFound
	}
	if _, err := s.db.specs.first(func(x *repo.Specialization) bool { return x.Name == sp.Name && x.ID != sp.ID }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.specs.put(sp.ID, *sp)
	return nil
}

func (s specializations) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.specs.del(id) {
		return repo.ErrNotFound
	}
	return nil
}

// ----- schedules & appointments -----

func sortSlots[T any](rows []*T, date func(*T) time.Time, shift func(*T) repo.Shift) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := date(rows[i]), date(rows[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return shift(rows[i]).Order() < shift(rows[j]).Order()
	})
}

type schedules struct{ db *DB }

func sameSchedule(a, b *repo.Schedule) bool {
	return a.DoctorID == b.DoctorID && a.WorkDate.Equal(b.WorkDate) && a.WorkShift == b.WorkShift
}

func (s schedules) Create(_ context.Context, sc *repo.Schedule) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.schedules.first(func(x *repo.Schedule) bool { return sameSchedule(x, sc) }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.schedules.put(sc.ID, *sc)
	return nil
}

func (s schedules) Get(_ context.Context, id string) (*repo.Schedule, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.schedules.get(id)
}

func (s schedules) List(_ context.Context, f repo.ScheduleFilter) ([]*repo.Schedule, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.schedules.where(func(x *repo.Schedule) bool {
		if f.DoctorID != "" && x.DoctorID != f.DoctorID {
			return false
		}
		return f.From == nil || !x.WorkDate.Before(*f.From)
	})
	sortSlots(out,
		func(x *repo.Schedule) time.Time { return x.WorkDate },
		func(x *repo.Schedule) repo.Shift { return x.WorkShift })
	return out, nil
}

func (s schedules) Update(_ context.Context, sc *repo.Schedule) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.schedules.rows[sc.ID]; !ok {
		return repo.ErrNotFound
	}
	if _, err := s.db.schedules.first(func(x *repo.Schedule) bool { return x.ID != sc.ID && sameSchedule(x, sc) }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.schedules.put(sc.ID, *sc)
	return nil
}

func (s schedules) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.schedules.del(id) {
		return repo.ErrNotFound
	}
	return nil
}

func (s schedules) DeleteByDoctor(_ context.Context, doctorID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, sc := range s.db.schedules.where(func(x *repo.Schedule) bool { return x.DoctorID == doctorID }) {
		s.db.schedules.del(sc.ID)
		n++
	}
	return n, nil
}

type appointments struct{ db *DB }

func matchAppointment(f repo.AppointmentFilter) func(*repo.Appointment) bool {
	return func(a *repo.Appointment) bool {
		switch {
		case f.PatientID != "" && a.PatientID != f.PatientID,
			f.DoctorID != "" && a.DoctorID != f.DoctorID,
			len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status),
			f.ActiveOnly && !a.Active,
			f.WorkShift != "" && a.WorkShift != f.WorkShift,
			f.ExcludeID != "" && a.ID == f.ExcludeID:
			return false
		}
		if f.WorkDate != nil {
			return a.WorkDate.Equal(*f.WorkDate)
		}
		return f.From == nil || !a.WorkDate.Before(*f.From)
	}
}

// violatesActiveSlot mirrors the partial unique index on active appointments.
func (s appointments) violatesActiveSlot(a *repo.Appointment) bool {
	if !a.Active {
		return false
	}
	_, err := s.db.appointments.first(func(x *repo.Appointment) bool {
		return x.ID != a.ID && x.Active && x.PatientID == a.PatientID &&
			x.WorkDate.Equal(a.WorkDate) && x.WorkShift == a.WorkShift
	})
	return err == nil
}

func (s appointments) Create(_ context.Context, a *repo.Appointment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a.SyncActive()
	if s.violatesActiveSlot(a) {
		return repo.ErrDuplicate
	}
	s.db.appointments.put(a.ID, *a)
	return nil
}

func (s appointments) Get(_ context.Context, id string) (*repo.Appointment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.appointments.get(id)
}

func (s appointments) List(_ context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.appointments.where(matchAppointment(f))
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].WorkDate.Equal(out[j].WorkDate) {
			return out[i].WorkDate.Before(out[j].WorkDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s appointments) Count(_ context.Context, f repo.AppointmentFilter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.db.appointments.where(matchAppointment(f)))), nil
}

func (s appointments) Update(_ context.Context, a *repo.Appointment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.appointments.rows[a.ID]; !ok {
		return repo.ErrNotFound
	}
	a.SyncActive()
	if s.violatesActiveSlot(a) {
		return repo.ErrDuplicate
	}
	s.db.appointments.put(a.ID, *a)
	return nil
}

// MoveSlot applies nothing when any moved appointment would break the active
// slot key.
func (s appointments) MoveSlot(_ context.Context, doctorID string, oldDate time.Time, oldShift repo.Shift, newDate time.Time, newShift repo.Shift, at time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	moving := s.db.appointments.where(func(x *repo.Appointment) bool {
		return x.DoctorID == doctorID && x.WorkDate.Equal(oldDate) && x.WorkShift == oldShift
	})
	for _, a := range moving {
		a.WorkDate, a.WorkShift, a.UpdatedAt = newDate, newShift, at.UTC()
		if s.violatesActiveSlot(a) {
			return 0, repo.ErrDuplicate
		}
	}
	for _, a := range moving {
		s.db.appointments.put(a.ID, *a)
	}
	return int64(len(moving)), nil
}

func (s appointments) DeleteMany(_ context.Context, ids []string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if s.db.appointments.del(id) {
			n++
		}
	}
	return n, nil
}

type histories struct{ db *DB }

func (s histories) Create(_ context.Context, h *repo.AppointmentHistory) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.histories.put(h.ID, *h)
	return nil
}

func (s histories) ListByAppointment(_ context.Context, appointmentID string) ([]*repo.AppointmentHistory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.histories.where(func(x *repo.AppointmentHistory) bool { return x.AppointmentID == appointmentID }), nil
}

func (s histories) DeleteByAppointments(_ context.Context, appointmentIDs []string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, h := range s.db.histories.where(func(x *repo.AppointmentHistory) bool {
		return slices.Contains(appointmentIDs, x.AppointmentID)
	}) {
		s.db.histories.del(h.ID)
		n++
	}
	return n, nil
}

// ----- notifications & payments -----

type notifications struct{ db *DB }

func matchNotification(f repo.NotificationFilter) func(*repo.Notification) bool {
	return func(n *repo.Notification) bool {
		switch {
		case f.UserID != "" && n.UserID != f.UserID,
			f.RecipientType != "" && n.RecipientType != f.RecipientType,
			f.UnreadOnly && n.IsRead:
			return false
		}
		return true
	}
}

func (s notifications) Create(_ context.Context, n *repo.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.notes.put(n.ID, *n)
	return nil
}

func (s notifications) Get(_ context.Context, id string) (*repo.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.notes.get(id)
}

func (s notifications) List(_ context.Context, f repo.NotificationFilter) ([]*repo.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.notes.where(matchNotification(f))
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s notifications) Count(_ context.Context, f repo.NotificationFilter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.db.notes.where(matchNotification(f)))), nil
}

func (s notifications) Update(_ context.Context, n *repo.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.notes.rows[n.ID]; !ok {
		return repo.ErrNotFound
	}
	s.db.notes.put(n.ID, *n)
	return nil
}

func (s notifications) MarkAllRead(_ context.Context, f repo.NotificationFilter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	f.UnreadOnly = true
	var n int64
	for _, x := range s.db.notes.where(matchNotification(f)) {
		x.IsRead = true
		s.db.notes.put(x.ID, *x)
		n++
	}
	return n, nil
}

func (s notifications) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.notes.del(id) {
		return repo.ErrNotFound
	}
	return nil
}

type payments struct{ db *DB }

func (s payments) Create(_ context.Context, p *repo.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, err := s.db.payments.first(func(x *repo.Payment) bool { return x.OrderID == p.OrderID }); err == nil {
		return repo.ErrDuplicate
	}
	s.db.payments.put(p.ID, *p)
	return nil
}

func (s payments) GetByOrderID(_ context.Context, orderID string) (*repo.Payment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.payments.first(func(x *repo.Payment) bool { return x.OrderID == orderID })
}

func (s payments) LatestByAppointment(_ context.Context, appointmentID string) (*repo.Payment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rows := s.db.payments.where(func(x *repo.Payment) bool { return x.AppointmentID == appointmentID })
	if len(rows) == 0 {
		return nil, repo.ErrNotFound
	}
	latest := rows[0]
	for _, p := range rows[1:] {
		if !p.CreatedAt.Before(latest.CreatedAt) {
			latest = p
		}
	}
	return latest, nil
}

func (s payments) Update(_ context.Context, p *repo.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.payments.rows[p.ID]; !ok {
		return repo.ErrNotFound
	}
	s.db.payments.put(p.ID, *p)
	return nil
}
