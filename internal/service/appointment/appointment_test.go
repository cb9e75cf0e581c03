package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/booking"
	"github.com/medibook/medibook_backend/internal/service/notification"
	"github.com/medibook/medibook_backend/internal/service/servicetest"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/events"
	"github.com/medibook/medibook_backend/pkg/redis"
)

var day = time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db     *repo.Client
	bus    *events.Recorder
	mailer *servicetest.Mailer
	clock  *servicetest.Clock
	svc    Service

	patient  *repo.Patient
	pUser    *repo.User
	pActor   authorize.Actor
	doctor   *repo.Doctor
	dUser    *repo.User
	dActor   authorize.Actor
	admin    authorize.Actor
	otherDoc authorize.Actor
	otherPat authorize.Actor
}

func setup(t *testing.T, opts ...func(*booking.Policy)) *fixture {
	t.Helper()
	db := servicetest.NewDB()
	bus := &events.Recorder{}
	mailer := &servicetest.Mailer{}
	// three days before the test day, mid-morning
	clock := servicetest.NewClock(day.Add(-3*24*time.Hour + 10*time.Hour))

	policy := booking.DefaultPolicy()
	policy.Now = clock.Now
	policy.LockWait = 100 * time.Millisecond
	for _, o := range opts {
		o(&policy)
	}

	f := &fixture{db: db, bus: bus, mailer: mailer, clock: clock, admin: servicetest.AdminActor()}
	f.patient, f.pUser = servicetest.SeedPatient(t, db, "Pat Patient")
	f.doctor, f.dUser = servicetest.SeedDoctor(t, db, "Dr Doc")
	f.pActor = servicetest.Actor(t, f.pUser, authorize.RolePatient)
	f.dActor = servicetest.Actor(t, f.dUser, authorize.RoleDoctor)

	_, od := servicetest.SeedDoctor(t, db, "Dr Other")
	f.otherDoc = servicetest.Actor(t, od, authorize.RoleDoctor)
	var op *repo.User
	_, op = servicetest.SeedPatient(t, db, "Other Patient")
	f.otherPat = servicetest.Actor(t, op, authorize.RolePatient)

	f.svc = New(db, redis.NewLocalLocker(), notification.New(db, bus), bus,
		booking.Mail{Mailer: mailer, AppName: "MediBook"}, policy)
	return f
}

func (f *fixture) book(t *testing.T, date time.Time, shift repo.Shift) *repo.Appointment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), f.pActor, CreateRequest{
		PatientUserID: f.pUser.ID, DoctorID: f.doctor.ID, WorkDate: date, WorkShift: shift,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func (f *fixture) notificationsFor(t *testing.T, userID string) []*repo.Notification {
	t.Helper()
	ns, err := f.db.Notification.List(context.Background(), repo.NotificationFilter{UserID: userID})
	if err != nil {
		t.Fatal(err)
	}
	return ns
}

func TestCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := f.book(t, day.Add(9*time.Hour), repo.ShiftMorning)
	if a.Status != repo.StatusPending || !a.Active {
		t.Errorf("new appointment = %+v", a)
	}
	if !a.WorkDate.Equal(day) {
		t.Errorf("work_date = %v, want truncated %v", a.WorkDate, day)
	}

	hist, _ := f.db.AppointmentHistory.ListByAppointment(ctx, a.ID)
	if len(hist) != 1 || hist[0].Status != repo.StatusPending {
		t.Errorf("history = %+v, want one pending row", hist)
	}
	if n := len(f.notificationsFor(t, f.pUser.ID)); n != 1 {
		t.Errorf("patient notifications = %d, want 1", n)
	}
	dn := f.notificationsFor(t, f.dUser.ID)
	if len(dn) != 1 || dn[0].RecipientType != repo.RecipientDoctor {
		t.Errorf("doctor notifications = %+v", dn)
	}
	var ev events.AppointmentEvent
	if !f.bus.Decode(constants.SubjectAppointmentCreated, &ev) || ev.AppointmentID != a.ID || ev.DoctorUserID != f.dUser.ID {
		t.Errorf("created event = %+v", ev)
	}
}

func TestCreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f *fixture) authorize.Actor
		req     func(f *fixture) CreateRequest
		wantErr error
	}{
		{
			name:    "other patient cannot book for someone",
			actor:   func(f *fixture) authorize.Actor { return f.otherPat },
			req:     func(f *fixture) CreateRequest { return CreateRequest{f.pUser.ID, f.doctor.ID, day, repo.ShiftMorning} },
			wantErr: ErrForbidden,
		},
		{
			name:    "unknown doctor",
			actor:   func(f *fixture) authorize.Actor { return f.pActor },
			req:     func(f *fixture) CreateRequest { return CreateRequest{f.pUser.ID, repo.NewID(), day, repo.ShiftMorning} },
			wantErr: ErrDoctorNotFound,
		},
		{
			name:    "admin booking for non patient user",
			actor:   func(f *fixture) authorize.Actor { return f.admin },
			req:     func(f *fixture) CreateRequest { return CreateRequest{f.dUser.ID, f.doctor.ID, day, repo.ShiftMorning} },
			wantErr: ErrPatientNotFound,
		},
		{
			name:    "bad shift",
			actor:   func(f *fixture) authorize.Actor { return f.pActor },
			req:     func(f *fixture) CreateRequest { return CreateRequest{f.pUser.ID, f.doctor.ID, day, "night"} },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			_, err := f.svc.Create(context.Background(), tt.actor(f), tt.req(f))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlotCutoff(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		shift   repo.Shift
		wantErr error
	}{
		{"morning before 07:30", day.Add(7*time.Hour + 29*time.Minute), repo.ShiftMorning, nil},
		{"morning at 07:30", day.Add(7*time.Hour + 30*time.Minute), repo.ShiftMorning, ErrSlotStarted},
		{"afternoon at noon", day.Add(12 * time.Hour), repo.ShiftAfternoon, nil},
		{"afternoon after 13:30", day.Add(14 * time.Hour), repo.ShiftAfternoon, ErrSlotStarted},
		{"past date", day.Add(48 * time.Hour), repo.ShiftAfternoon, ErrSlotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.clock.Set(tt.now)
			_, err := f.svc.Create(context.Background(), f.pActor, CreateRequest{f.pUser.ID, f.doctor.ID, day, tt.shift})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuplicateActiveBookingRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.book(t, day, repo.ShiftMorning)

	_, err := f.svc.Create(ctx, f.pActor, CreateRequest{f.pUser.ID, f.doctor.ID, day, repo.ShiftMorning})
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Errorf("second booking err = %v, want ErrDuplicateBooking", err)
	}

	// the other shift of the same day is fine
	f.book(t, day, repo.ShiftAfternoon)
}

func TestConcurrentDuplicateBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, f.pActor, CreateRequest{f.pUser.ID, f.doctor.ID, day, repo.ShiftMorning})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateBooking), errors.Is(err, ErrBusy):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d bookings succeeded, want exactly 1", ok)
	}
}

func TestDailyLimit(t *testing.T) {
	// a patient holds at most one active booking per shift, so a cap of one
	// is what makes the daily check observable with two shifts a day
	f := setup(t, func(p *booking.Policy) { p.DailyLimit = 1 })
	ctx := context.Background()
	f.book(t, day, repo.ShiftMorning)

	d, _ := servicetest.SeedDoctor(t, f.db, "Dr Extra")
	_, err := f.svc.Create(ctx, f.pActor, CreateRequest{f.pUser.ID, d.ID, day, repo.ShiftAfternoon})
	if !errors.Is(err, ErrDailyLimit) {
		t.Fatalf("err = %v, want ErrDailyLimit", err)
	}

	count, _ := f.db.Appointment.Count(ctx, repo.AppointmentFilter{PatientID: f.patient.ID, WorkDate: &day, ActiveOnly: true})
	if count != 1 {
		t.Errorf("active appointments on the day = %d, want 1", count)
	}

	// canceled bookings free the day again
	mine, _ := f.svc.CurrentUserAppointments(ctx, f.pActor)
	if _, err := f.svc.Cancel(ctx, f.pActor, mine[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, f.pActor, CreateRequest{f.pUser.ID, d.ID, day, repo.ShiftAfternoon}); err != nil {
		t.Errorf("booking after cancel: %v", err)
	}
}

func TestCancellationLimit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		a := f.book(t, day, repo.ShiftMorning)
		if _, err := f.svc.Cancel(ctx, f.pActor, a.ID); err != nil {
			t.Fatalf("cancel %d: %v", i, err)
		}
	}

	_, err := f.svc.Create(ctx, f.pActor, CreateRequest{f.pUser.ID, f.doctor.ID, day, repo.ShiftMorning})
	if !errors.Is(err, ErrCancellationLimit) {
		t.Errorf("third booking err = %v, want ErrCancellationLimit", err)
	}
	// other slot unaffected
	f.book(t, day, repo.ShiftAfternoon)
}

func TestConfirm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, day, repo.ShiftMorning)
	before := len(f.notificationsFor(t, f.pUser.ID))
	doctorBefore := len(f.notificationsFor(t, f.dUser.ID))

	if _, err := f.svc.Confirm(ctx, f.otherDoc, a.ID, repo.StatusConfirmed); !errors.Is(err, ErrForbidden) {
		t.Errorf("other doctor err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Confirm(ctx, f.pActor, a.ID, repo.StatusConfirmed); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Confirm(ctx, f.dActor, a.ID, repo.StatusCompleted); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("status completed err = %v, want ErrInvalidStatus", err)
	}

	got, err := f.svc.Confirm(ctx, f.dActor, a.ID, repo.StatusConfirmed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != repo.StatusConfirmed {
		t.Errorf("status = %s", got.Status)
	}

	after := f.notificationsFor(t, f.pUser.ID)
	if len(after) != before+1 {
		t.Errorf("patient notifications %d -> %d, want exactly one new", before, len(after))
	}
	if after[0].RecipientType != repo.RecipientPatient || after[0].AppointmentID != a.ID {
		t.Errorf("new notification = %+v", after[0])
	}
	if n := len(f.notificationsFor(t, f.dUser.ID)); n != doctorBefore {
		t.Errorf("doctor got %d new notifications on confirm", n-doctorBefore)
	}

	if _, err := f.svc.Confirm(ctx, f.dActor, a.ID, repo.StatusConfirmed); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("re-confirm err = %v, want ErrInvalidStatus", err)
	}
}

func TestConfirmReject(t *testing.T) {
	f := setup(t)
	a := f.book(t, day, repo.ShiftMorning)

	got, err := f.svc.Confirm(context.Background(), f.dActor, a.ID, repo.StatusCanceled)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != repo.StatusCanceled || got.Active {
		t.Errorf("rejected appointment = %+v", got)
	}
	if len(f.bus.Subjects(constants.SubjectAppointmentCanceled)) != 1 {
		t.Error("expected a canceled event")
	}
}

func TestCancelWindow(t *testing.T) {
	tests := []struct {
		name    string
		before  time.Duration
		wantErr error
	}{
		{"48h ahead", 48 * time.Hour, nil},
		{"24h and a second ahead", 24*time.Hour + time.Second, nil},
		{"exactly 24h ahead", 24 * time.Hour, ErrCancellationWindowExpired},
		{"2h ahead", 2 * time.Hour, ErrCancellationWindowExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			a := f.book(t, day, repo.ShiftAfternoon)
			// the window is measured from work_date (00:00 UTC)
			f.clock.Set(day.Add(-tt.before))

			got, err := f.svc.Cancel(context.Background(), f.pActor, a.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Status != repo.StatusCanceled {
				t.Errorf("status = %s", got.Status)
			}
		})
	}
}

func TestCancelSideEffects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, day, repo.ShiftMorning)

	if _, err := f.svc.Cancel(ctx, f.otherPat, a.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other patient err = %v", err)
	}

	if _, err := f.svc.Cancel(ctx, f.pActor, a.ID); err != nil {
		t.Fatal(err)
	}
	if to := f.mailer.To(); len(to) != 1 || to[0] != f.dUser.Email {
		t.Errorf("cancel email went to %v, want doctor %s", to, f.dUser.Email)
	}
	dn := f.notificationsFor(t, f.dUser.ID)
	if len(dn) != 2 {
		t.Errorf("doctor notifications = %d, want booking + cancel", len(dn))
	}

	if _, err := f.svc.Cancel(ctx, f.pActor, a.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("second cancel err = %v, want ErrInvalidStatus", err)
	}
}

func TestCancelSurvivesMailFailure(t *testing.T) {
	f := setup(t)
	f.mailer.Err = servicetest.ErrMailDown
	a := f.book(t, day, repo.ShiftMorning)

	got, err := f.svc.Cancel(context.Background(), f.pActor, a.ID)
	if err != nil {
		t.Fatalf("cancel should not fail on email errors: %v", err)
	}
	stored, _ := f.db.Appointment.Get(context.Background(), a.ID)
	if got.Status != repo.StatusCanceled || stored.Status != repo.StatusCanceled {
		t.Error("cancellation must stick even when the email fails")
	}
}

func TestComplete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, day, repo.ShiftMorning)

	if _, err := f.svc.Complete(ctx, f.dActor, a.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("complete pending err = %v, want ErrInvalidStatus", err)
	}
	if _, err := f.svc.Confirm(ctx, f.dActor, a.ID, repo.StatusConfirmed); err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.Complete(ctx, f.dActor, a.ID)
	if err != nil || got.Status != repo.StatusCompleted {
		t.Fatalf("Complete = %+v, %v", got, err)
	}
	if _, err := f.svc.Cancel(ctx, f.pActor, a.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("cancel completed err = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, day, repo.ShiftMorning)
	next := day.Add(24 * time.Hour)

	got, err := f.svc.Update(ctx, f.dActor, a.ID, UpdateRequest{WorkDate: next, WorkShift: repo.ShiftAfternoon})
	if err != nil {
		t.Fatal(err)
	}
	if !got.WorkDate.Equal(next) || got.WorkShift != repo.ShiftAfternoon || got.Status != repo.StatusPending {
		t.Errorf("updated = %+v", got)
	}

	pn := f.notificationsFor(t, f.pUser.ID)
	if pn[0].NewDate == nil || !pn[0].NewDate.Equal(next) || pn[0].NewWorkShift != repo.ShiftAfternoon {
		t.Errorf("reschedule notification = %+v", pn[0])
	}
	if to := f.mailer.To(); len(to) != 1 || to[0] != f.pUser.Email {
		t.Errorf("reschedule email went to %v", to)
	}

	if _, err := f.svc.Update(ctx, f.pActor, a.ID, UpdateRequest{WorkDate: next, WorkShift: repo.ShiftMorning}); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient update err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Update(ctx, f.dActor, a.ID, UpdateRequest{WorkDate: next, WorkShift: repo.ShiftMorning, Status: "lost"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad status err = %v", err)
	}
}

func TestAdminUpdateRejectsCollision(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.book(t, day, repo.ShiftMorning)
	second := f.book(t, day, repo.ShiftAfternoon)

	if _, err := f.svc.AdminUpdate(ctx, f.dActor, second.ID, UpdateRequest{WorkDate: day, WorkShift: repo.ShiftMorning}); !errors.Is(err, ErrForbidden) {
		t.Errorf("doctor AdminUpdate err = %v, want ErrForbidden", err)
	}
	_, err := f.svc.AdminUpdate(ctx, f.admin, second.ID, UpdateRequest{WorkDate: day, WorkShift: repo.ShiftMorning})
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Errorf("collision err = %v, want ErrDuplicateBooking", err)
	}

	// moving onto its own slot is not a collision
	if _, err := f.svc.AdminUpdate(ctx, f.admin, first.ID, UpdateRequest{WorkDate: day, WorkShift: repo.ShiftMorning, Status: repo.StatusConfirmed}); err != nil {
		t.Errorf("self slot err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, day, repo.ShiftMorning)
	b := f.book(t, day, repo.ShiftAfternoon)
	if _, err := f.svc.Cancel(ctx, f.pActor, b.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.db.Appointment.Get(ctx, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("appointment still present: %v", err)
	}
	if h, _ := f.db.AppointmentHistory.ListByAppointment(ctx, a.ID); len(h) != 0 {
		t.Errorf("history rows left: %d", len(h))
	}
	if err := f.svc.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}

	n, err := f.svc.DeleteByStatus(ctx, repo.StatusCanceled)
	if err != nil || n != 1 {
		t.Errorf("DeleteByStatus = %d, %v; want 1", n, err)
	}
	if _, err := f.svc.DeleteByStatus(ctx, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad status err = %v", err)
	}
}

func TestQueriesAreScopedAndEnriched(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, day, repo.ShiftMorning)
	b := f.book(t, day.Add(24*time.Hour), repo.ShiftMorning)
	if _, err := f.svc.Cancel(ctx, f.pActor, b.ID); err != nil {
		t.Fatal(err)
	}

	t.Run("patient current", func(t *testing.T) {
		vs, err := f.svc.CurrentUserAppointments(ctx, f.pActor)
		if err != nil {
			t.Fatal(err)
		}
		if len(vs) != 1 || vs[0].ID != a.ID {
			t.Fatalf("got %d views", len(vs))
		}
		if vs[0].PatientName != "Pat Patient" || vs[0].DoctorName != "Dr Doc" || vs[0].SpecializationName == "" {
			t.Errorf("enrichment = %+v", vs[0])
		}
	})

	t.Run("doctor current is pending and confirmed", func(t *testing.T) {
		vs, _ := f.svc.CurrentUserAppointments(ctx, f.dActor)
		if len(vs) != 1 || vs[0].Status != repo.StatusPending {
			t.Errorf("doctor views = %d", len(vs))
		}
		other, _ := f.svc.CurrentUserAppointments(ctx, f.otherDoc)
		if len(other) != 0 {
			t.Errorf("other doctor sees %d", len(other))
		}
	})

	t.Run("admin sees all", func(t *testing.T) {
		vs, _ := f.svc.CurrentUserAppointments(ctx, f.admin)
		if len(vs) != 2 {
			t.Errorf("admin views = %d, want 2", len(vs))
		}
	})

	t.Run("upcoming skips canceled and past", func(t *testing.T) {
		f.clock.Set(day.Add(25 * time.Hour))
		defer f.clock.Set(day.Add(-3*24*time.Hour + 10*time.Hour))
		vs, _ := f.svc.Upcoming(ctx, f.admin)
		if len(vs) != 0 {
			t.Errorf("upcoming = %d, want 0", len(vs))
		}
	})

	t.Run("by status", func(t *testing.T) {
		vs, err := f.svc.ByStatus(ctx, f.pActor, repo.StatusCanceled)
		if err != nil || len(vs) != 1 || vs[0].ID != b.ID {
			t.Errorf("ByStatus = %d, %v", len(vs), err)
		}
	})

	t.Run("dashboard limit", func(t *testing.T) {
		vs, _ := f.svc.AdminDashboardUpcoming(ctx, 1)
		if len(vs) != 1 {
			t.Errorf("dashboard = %d", len(vs))
		}
	})

	t.Run("get by id ownership", func(t *testing.T) {
		if _, err := f.svc.GetByID(ctx, f.otherPat, a.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("other patient err = %v", err)
		}
		v, err := f.svc.GetByID(ctx, f.dActor, a.ID)
		if err != nil || v.DoctorUserID != f.dUser.ID {
			t.Errorf("doctor GetByID = %+v, %v", v, err)
		}
	})
}

// Patient books tomorrow morning, the doctor confirms, a late cancellation is
// refused and an early one goes through.
func TestScenarioConfirmThenCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slotStart := day.Add(7*time.Hour + 30*time.Minute)
	f.clock.Set(day.Add(-14 * time.Hour)) // the evening before

	a := f.book(t, day, repo.ShiftMorning)
	if _, err := f.svc.Confirm(ctx, f.dActor, a.ID, repo.StatusConfirmed); err != nil {
		t.Fatal(err)
	}

	f.clock.Set(slotStart.Add(-2 * time.Hour))
	if _, err := f.svc.Cancel(ctx, f.pActor, a.ID); !errors.Is(err, ErrCancellationWindowExpired) {
		t.Fatalf("late cancel err = %v, want ErrCancellationWindowExpired", err)
	}

	f.clock.Set(slotStart.Add(-48 * time.Hour))
	got, err := f.svc.Cancel(ctx, f.pActor, a.ID)
	if err != nil {
		t.Fatalf("early cancel: %v", err)
	}
	if got.Status != repo.StatusCanceled {
		t.Errorf("status = %s, want canceled", got.Status)
	}
}
