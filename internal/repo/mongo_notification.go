package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoNotifications struct{ coll[Notification] }

func notificationFilter(f NotificationFilter) bson.M {
	m := bson.M{}
	if f.UserID != "" {
		m["user_id"] = f.UserID
	}
	if f.RecipientType != "" {
		m["recipient_type"] = f.RecipientType
	}
	if f.UnreadOnly {
		m["is_read"] = false
	}
	return m
}

func (s *mongoNotifications) Create(ctx context.Context, n *Notification) error {
	return s.insert(ctx, n)
}

func (s *mongoNotifications) Get(ctx context.Context, id string) (*Notification, error) {
	return s.byID(ctx, id)
}

func (s *mongoNotifications) List(ctx context.Context, f NotificationFilter) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return s.find(ctx, notificationFilter(f), opts)
}

func (s *mongoNotifications) Count(ctx context.Context, f NotificationFilter) (int64, error) {
	return s.count(ctx, notificationFilter(f))
}

func (s *mongoNotifications) Update(ctx context.Context, n *Notification) error {
	return s.replace(ctx, n.ID, n)
}

func (s *mongoNotifications) MarkAllRead(ctx context.Context, f NotificationFilter) (int64, error) {
	filter := notificationFilter(f)
	filter["is_read"] = false
	res, err := s.c.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, mapErr("mark notifications read", err)
	}
	return res.ModifiedCount, nil
}

func (s *mongoNotifications) Delete(ctx context.Context, id string) error {
	return s.deleteByID(ctx, id)
}

type mongoPayments struct{ coll[Payment] }

func (s *mongoPayments) Create(ctx context.Context, p *Payment) error { return s.insert(ctx, p) }

func (s *mongoPayments) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	return s.findOne(ctx, bson.M{"order_id": orderID})
}

func (s *mongoPayments) LatestByAppointment(ctx context.Context, appointmentID string) (*Payment, error) {
	return s.findOne(ctx, bson.M{"appointment_id": appointmentID},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (s *mongoPayments) Update(ctx context.Context, p *Payment) error { return s.replace(ctx, p.ID, p) }
