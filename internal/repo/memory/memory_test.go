package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
)

func TestActiveSlotUniqueness(t *testing.T) {
	ctx := context.Background()
	db := New()
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	first := &repo.Appointment{ID: repo.NewID(), PatientID: "p1", DoctorID: "d1", WorkDate: day, WorkShift: repo.ShiftMorning, Status: repo.StatusPending}
	if err := db.Appointment.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !first.Active {
		t.Fatal("pending appointment should be active")
	}

	dup := &repo.Appointment{ID: repo.NewID(), PatientID: "p1", DoctorID: "d2", WorkDate: day, WorkShift: repo.ShiftMorning, Status: repo.StatusPending}
	if err := db.Appointment.Create(ctx, dup); !errors.Is(err, repo.ErrDuplicate) {
		t.Fatalf("dup create err = %v, want ErrDuplicate", err)
	}

	first.Status = repo.StatusCanceled
	if err := db.Appointment.Update(ctx, first); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := db.Appointment.Create(ctx, dup); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}

	n, err := db.Appointment.Count(ctx, repo.AppointmentFilter{PatientID: "p1", WorkDate: &day, ActiveOnly: true})
	if err != nil || n != 1 {
		t.Fatalf("active count = %d, %v; want 1", n, err)
	}
}

func TestMoveSlotIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := New()
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	target := day.AddDate(0, 0, 2)
	at := day.Add(-72 * time.Hour)

	for _, a := range []*repo.Appointment{
		{ID: "free", PatientID: "p1", DoctorID: "d1", WorkDate: day, WorkShift: repo.ShiftMorning, Status: repo.StatusPending},
		{ID: "stuck", PatientID: "p2", DoctorID: "d1", WorkDate: day, WorkShift: repo.ShiftMorning, Status: repo.StatusConfirmed},
		{ID: "blocker", PatientID: "p2", DoctorID: "d2", WorkDate: target, WorkShift: repo.ShiftMorning, Status: repo.StatusPending},
	} {
		if err := db.Appointment.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.Appointment.MoveSlot(ctx, "d1", day, repo.ShiftMorning, target, repo.ShiftMorning, at)
	if !errors.Is(err, repo.ErrDuplicate) || n != 0 {
		t.Fatalf("MoveSlot = %d, %v; want 0, ErrDuplicate", n, err)
	}
	for _, id := range []string{"free", "stuck"} {
		if a, _ := db.Appointment.Get(ctx, id); !a.WorkDate.Equal(day) {
			t.Errorf("%s moved to %v", id, a.WorkDate)
		}
	}

	if _, err := db.Appointment.DeleteMany(ctx, []string{"blocker"}); err != nil {
		t.Fatal(err)
	}
	n, err = db.Appointment.MoveSlot(ctx, "d1", day, repo.ShiftMorning, target, repo.ShiftMorning, at)
	if err != nil || n != 2 {
		t.Fatalf("MoveSlot = %d, %v; want 2", n, err)
	}
	if a, _ := db.Appointment.Get(ctx, "free"); !a.WorkDate.Equal(target) || !a.UpdatedAt.Equal(at) {
		t.Errorf("moved appointment = %+v", a)
	}
}

func TestScheduleListOrder(t *testing.T) {
	ctx := context.Background()
	db := New()
	d1 := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	d0 := d1.AddDate(0, 0, -1)

	for _, sc := range []*repo.Schedule{
		{ID: "a", DoctorID: "doc", WorkDate: d1, WorkShift: repo.ShiftAfternoon},
		{ID: "b", DoctorID: "doc", WorkDate: d1, WorkShift: repo.ShiftMorning},
		{ID: "c", DoctorID: "doc", WorkDate: d0, WorkShift: repo.ShiftAfternoon},
		{ID: "d", DoctorID: "other", WorkDate: d0, WorkShift: repo.ShiftMorning},
	} {
		if err := db.Schedule.Create(ctx, sc); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.Schedule.List(ctx, repo.ScheduleFilter{DoctorID: "doc"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("row %d = %s, want %s", i, got[i].ID, id)
		}
	}

	if err := db.Schedule.Create(ctx, &repo.Schedule{ID: "e", DoctorID: "doc", WorkDate: d1, WorkShift: repo.ShiftMorning}); !errors.Is(err, repo.ErrDuplicate) {
		t.Fatalf("duplicate slot err = %v", err)
	}
}

func TestReturnedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	db := New()
	if err := db.User.Create(ctx, &repo.User{ID: "u1", Email: "a@b.c", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	u, _ := db.User.Get(ctx, "u1")
	u.Name = "changed"
	again, _ := db.User.Get(ctx, "u1")
	if again.Name != "A" {
		t.Fatalf("store mutated through returned pointer: %q", again.Name)
	}
}
