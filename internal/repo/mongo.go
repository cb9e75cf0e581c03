package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	CollUsers                = "users"
	CollRoles                = "roles"
	CollUserRoles            = "user_roles"
	CollDoctors              = "doctors"
	CollPatients             = "patients"
	CollSpecializations      = "specializations"
	CollSchedules            = "schedules"
	CollAppointments         = "appointments"
	CollAppointmentHistories = "appointment_histories"
	CollNotifications        = "notifications"
	CollPayments             = "payments"
)

// NewMongo wires every store to its collection in db.
func NewMongo(db *mongo.Database) *Client {
	return &Client{
		User:               &mongoUsers{coll[User]{db.Collection(CollUsers)}},
		Role:               &mongoRoles{coll[Role]{db.Collection(CollRoles)}},
		UserRole:           &mongoUserRoles{coll[UserRole]{db.Collection(CollUserRoles)}},
		Doctor:             &mongoDoctors{coll[Doctor]{db.Collection(CollDoctors)}},
		Patient:            &mongoPatients{coll[Patient]{db.Collection(CollPatients)}},
		Specialization:     &mongoSpecializations{coll[Specialization]{db.Collection(CollSpecializations)}},
		Schedule:           &mongoSchedules{coll[Schedule]{db.Collection(CollSchedules)}},
		Appointment:        &mongoAppointments{coll[Appointment]{db.Collection(CollAppointments)}},
		AppointmentHistory: &mongoHistories{coll[AppointmentHistory]{db.Collection(CollAppointmentHistories)}},
		Notification:       &mongoNotifications{coll[Notification]{db.Collection(CollNotifications)}},
		Payment:            &mongoPayments{coll[Payment]{db.Collection(CollPayments)}},
	}
}

func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// coll is a typed wrapper over a collection whose documents use a string _id.
type coll[T any] struct {
	c *mongo.Collection
}

func (c coll[T]) insert(ctx context.Context, doc *T) error {
	_, err := c.c.InsertOne(ctx, doc)
	return mapErr("insert "+c.c.Name(), err)
}

func (c coll[T]) findOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var out T
	if err := c.c.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		return nil, mapErr("find "+c.c.Name(), err)
	}
	return &out, nil
}

func (c coll[T]) byID(ctx context.Context, id string) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

func (c coll[T]) find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cur, err := c.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr("find "+c.c.Name(), err)
	}
	var out []*T
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr("decode "+c.c.Name(), err)
	}
	return out, nil
}

func (c coll[T]) byIDs(ctx context.Context, ids []string) ([]*T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return c.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (c coll[T]) replace(ctx context.Context, id string, doc *T) error {
	res, err := c.c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapErr("replace "+c.c.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c coll[T]) deleteByID(ctx context.Context, id string) error {
	res, err := c.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete "+c.c.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c coll[T]) deleteMany(ctx context.Context, filter any) (int64, error) {
	res, err := c.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, mapErr("delete "+c.c.Name(), err)
	}
	return res.DeletedCount, nil
}

func (c coll[T]) count(ctx context.Context, filter any) (int64, error) {
	n, err := c.c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapErr("count "+c.c.Name(), err)
	}
	return n, nil
}
