package doctor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/account"
	"github.com/medibook/medibook_backend/internal/service/servicetest"
	"github.com/medibook/medibook_backend/internal/service/user"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

func newService(t *testing.T) (Service, *repo.Client, *repo.Specialization) {
	t.Helper()
	db := servicetest.NewDB()
	h := password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32, MinLength: 8})
	spec := servicetest.SeedSpecialization(t, db, "Cardiology")
	return New(db, h, user.New(db, h)), db, spec
}

func createReq(spec *repo.Specialization, email string) CreateRequest {
	return CreateRequest{
		Name: "Dr Hoa", Email: email, Password: "doctor-pass", Phone: "0901234567",
		SpecializationID: spec.ID, Description: "Heart things", Price: 250000,
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, db, spec := newService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, createReq(spec, "hoa@clinic.vn"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "Dr Hoa" || v.SpecializationName != "Cardiology" || v.Price != 250000 {
		t.Errorf("view = %+v", v)
	}
	if _, err := db.UserRole.GetByUser(ctx, v.UserID); err != nil {
		t.Errorf("user role missing: %v", err)
	}

	got, err := svc.Get(ctx, v.ID)
	if err != nil || got.Email != "hoa@clinic.vn" {
		t.Errorf("Get = %+v, %v", got, err)
	}

	if _, err := svc.Create(ctx, createReq(spec, "hoa@clinic.vn")); !errors.Is(err, account.ErrEmailTaken) {
		t.Errorf("duplicate email err = %v", err)
	}
	bad := createReq(spec, "x@clinic.vn")
	bad.SpecializationID = repo.NewID()
	if _, err := svc.Create(ctx, bad); !errors.Is(err, ErrSpecializationNotFound) {
		t.Errorf("unknown specialization err = %v", err)
	}
	bad = createReq(spec, "y@clinic.vn")
	bad.Price = -1
	if _, err := svc.Create(ctx, bad); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price err = %v", err)
	}
}

func TestListFiltersBySpecialization(t *testing.T) {
	svc, db, spec := newService(t)
	ctx := context.Background()
	other := servicetest.SeedSpecialization(t, db, "Dermatology")

	if _, err := svc.Create(ctx, createReq(spec, "a@clinic.vn")); err != nil {
		t.Fatal(err)
	}
	req := createReq(other, "b@clinic.vn")
	req.Name = "Dr Binh"
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatal(err)
	}

	all, _ := svc.List(ctx, ListRequest{})
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}
	derm, _ := svc.List(ctx, ListRequest{SpecializationID: other.ID})
	if len(derm) != 1 || derm[0].Name != "Dr Binh" || derm[0].SpecializationName != "Dermatology" {
		t.Errorf("filtered = %+v", derm)
	}
}

func TestUpdate(t *testing.T) {
	svc, db, spec := newService(t)
	ctx := context.Background()
	v, _ := svc.Create(ctx, createReq(spec, "hoa@clinic.vn"))
	other := servicetest.SeedSpecialization(t, db, "Neurology")

	name, price := "Dr Hoa Le", int64(400000)
	got, err := svc.Update(ctx, v.ID, UpdateRequest{Name: &name, Price: &price, SpecializationID: &other.ID})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name || got.Price != price || got.SpecializationName != "Neurology" {
		t.Errorf("updated = %+v", got)
	}

	neg := int64(-5)
	if _, err := svc.Update(ctx, v.ID, UpdateRequest{Price: &neg}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price err = %v", err)
	}
	blank := " "
	if _, err := svc.Update(ctx, v.ID, UpdateRequest{Name: &blank}); !errors.Is(err, user.ErrInvalidDisplayName) {
		t.Errorf("blank name err = %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	svc, db, spec := newService(t)
	ctx := context.Background()
	v, _ := svc.Create(ctx, createReq(spec, "hoa@clinic.vn"))
	if err := db.Schedule.Create(ctx, &repo.Schedule{
		ID: repo.NewID(), DoctorID: v.ID, WorkDate: repo.DayStart(time.Now().Add(72 * time.Hour)), WorkShift: repo.ShiftMorning,
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, v.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.User.Get(ctx, v.UserID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("orphan user left: %v", err)
	}
	if _, err := db.UserRole.GetByUser(ctx, v.UserID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("orphan user role left: %v", err)
	}
	if left, _ := db.Schedule.List(ctx, repo.ScheduleFilter{DoctorID: v.ID}); len(left) != 0 {
		t.Errorf("%d schedules left", len(left))
	}
	if err := svc.Delete(ctx, v.ID); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
