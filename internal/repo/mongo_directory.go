package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoDoctors struct{ coll[Doctor] }

func (s *mongoDoctors) Create(ctx context.Context, d *Doctor) error { return s.insert(ctx, d) }

func (s *mongoDoctors) Get(ctx context.Context, id string) (*Doctor, error) { return s.byID(ctx, id) }

func (s *mongoDoctors) GetByUser(ctx context.Context, userID string) (*Doctor, error) {
	return s.findOne(ctx, bson.M{"user_id": userID})
}

func (s *mongoDoctors) GetMany(ctx context.Context, ids []string) ([]*Doctor, error) {
	return s.byIDs(ctx, ids)
}

func (s *mongoDoctors) List(ctx context.Context, f DoctorFilter) ([]*Doctor, error) {
	filter := bson.M{}
	if f.SpecializationID != "" {
		filter["specialization_id"] = f.SpecializationID
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (s *mongoDoctors) CountBySpecialization(ctx context.Context, specializationID string) (int64, error) {
	return s.count(ctx, bson.M{"specialization_id": specializationID})
}

func (s *mongoDoctors) Update(ctx context.Context, d *Doctor) error { return s.replace(ctx, d.ID, d) }

func (s *mongoDoctors) Delete(ctx context.Context, id string) error { return s.deleteByID(ctx, id) }

type mongoPatients struct{ coll[Patient] }

func (s *mongoPatients) Create(ctx context.Context, p *Patient) error { return s.insert(ctx, p) }

func (s *mongoPatients) Get(ctx context.Context, id string) (*Patient, error) { return s.byID(ctx, id) }

func (s *mongoPatients) GetByUser(ctx context.Context, userID string) (*Patient, error) {
	return s.findOne(ctx, bson.M{"user_id": userID})
}

func (s *mongoPatients) GetMany(ctx context.Context, ids []string) ([]*Patient, error) {
	return s.byIDs(ctx, ids)
}

func (s *mongoPatients) List(ctx context.Context) ([]*Patient, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (s *mongoPatients) Update(ctx context.Context, p *Patient) error { return s.replace(ctx, p.ID, p) }

func (s *mongoPatients) Delete(ctx context.Context, id string) error { return s.deleteByID(ctx, id) }

type mongoSpecializations struct{ coll[Specialization] }

func (s *mongoSpecializations) Create(ctx context.Context, sp *Specialization) error {
	return s.insert(ctx, sp)
}

func (s *mongoSpecializations) Get(ctx context.Context, id string) (*Specialization, error) {
	return s.byID(ctx, id)
}

func (s *mongoSpecializations) GetMany(ctx context.Context, ids []string) ([]*Specialization, error) {
	return s.byIDs(ctx, ids)
}

func (s *mongoSpecializations) List(ctx context.Context) ([]*Specialization, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *mongoSpecializations) Update(ctx context.Context, sp *Specialization) error {
	return s.replace(ctx, sp.ID, sp)
}

func (s *mongoSpecializations) Delete(ctx context.Context, id string) error {
	return s.deleteByID(ctx, id)
}
