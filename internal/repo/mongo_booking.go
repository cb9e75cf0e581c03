package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// work_shift sorts descending so "morning" comes before "afternoon".
var slotSort = bson.D{{Key: "work_date", Value: 1}, {Key: "work_shift", Value: -1}}

type mongoSchedules struct{ coll[Schedule] }

func (s *mongoSchedules) Create(ctx context.Context, sc *Schedule) error { return s.insert(ctx, sc) }

func (s *mongoSchedules) Get(ctx context.Context, id string) (*Schedule, error) {
	return s.byID(ctx, id)
}

func (s *mongoSchedules) List(ctx context.Context, f ScheduleFilter) ([]*Schedule, error) {
	filter := bson.M{}
	if f.DoctorID != "" {
		filter["doctor_id"] = f.DoctorID
	}
	if f.From != nil {
		filter["work_date"] = bson.M{"$gte": *f.From}
	}
	return s.find(ctx, filter, options.Find().SetSort(slotSort))
}

func (s *mongoSchedules) Update(ctx context.Context, sc *Schedule) error {
	return s.replace(ctx, sc.ID, sc)
}

func (s *mongoSchedules) Delete(ctx context.Context, id string) error { return s.deleteByID(ctx, id) }

func (s *mongoSchedules) DeleteByDoctor(ctx context.Context, doctorID string) (int64, error) {
	return s.deleteMany(ctx, bson.M{"doctor_id": doctorID})
}

type mongoAppointments struct{ coll[Appointment] }

func appointmentFilter(f AppointmentFilter) bson.M {
	m := bson.M{}
	if f.PatientID != "" {
		m["patient_id"] = f.PatientID
	}
	if f.DoctorID != "" {
		m["doctor_id"] = f.DoctorID
	}
	if len(f.Statuses) > 0 {
		m["status"] = bson.M{"$in": f.Statuses}
	}
	if f.ActiveOnly {
		m["active"] = true
	}
	switch {
	case f.WorkDate != nil:
		m["work_date"] = *f.WorkDate
	case f.From != nil:
		m["work_date"] = bson.M{"$gte": *f.From}
	}
	if f.WorkShift != "" {
		m["work_shift"] = f.WorkShift
	}
	if f.ExcludeID != "" {
		m["_id"] = bson.M{"$ne": f.ExcludeID}
	}
	return m
}

func (s *mongoAppointments) Create(ctx context.Context, a *Appointment) error {
	a.SyncActive()
	return s.insert(ctx, a)
}

func (s *mongoAppointments) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.byID(ctx, id)
}

func (s *mongoAppointments) List(ctx context.Context, f AppointmentFilter) ([]*Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "work_date", Value: 1}, {Key: "created_at", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return s.find(ctx, appointmentFilter(f), opts)
}

func (s *mongoAppointments) Count(ctx context.Context, f AppointmentFilter) (int64, error) {
	return s.count(ctx, appointmentFilter(f))
}

func (s *mongoAppointments) Update(ctx context.Context, a *Appointment) error {
	a.SyncActive()
	return s.replace(ctx, a.ID, a)
}

func (s *mongoAppointments) MoveSlot(ctx context.Context, doctorID string, oldDate time.Time, oldShift Shift, newDate time.Time, newShift Shift, at time.Time) (int64, error) {
	filter := bson.M{"doctor_id": doctorID, "work_date": oldDate, "work_shift": oldShift}
	update := bson.M{"$set": bson.M{
		"work_date":  newDate,
		"work_shift": newShift,
		"updated_at": at.UTC(),
	}}
	res, err := s.c.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, mapErr("move appointments", err)
	}
	return res.ModifiedCount, nil
}

func (s *mongoAppointments) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.deleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

type mongoHistories struct{ coll[AppointmentHistory] }

func (s *mongoHistories) Create(ctx context.Context, h *AppointmentHistory) error {
	return s.insert(ctx, h)
}

func (s *mongoHistories) ListByAppointment(ctx context.Context, appointmentID string) ([]*AppointmentHistory, error) {
	return s.find(ctx, bson.M{"appointment_id": appointmentID},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (s *mongoHistories) DeleteByAppointments(ctx context.Context, appointmentIDs []string) (int64, error) {
	if len(appointmentIDs) == 0 {
		return 0, nil
	}
	return s.deleteMany(ctx, bson.M{"appointment_id": bson.M{"$in": appointmentIDs}})
}
