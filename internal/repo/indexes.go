package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func keys(fields ...string) bson.D {
	d := bson.D{}
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: 1})
	}
	return d
}

func unique(fields ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys(fields...), Options: options.Index().SetUnique(true)}
}

func plain(fields ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys(fields...)}
}

// Indexes lists every index the stores rely on, per collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollUsers:           {unique("email")},
		CollRoles:           {unique("name")},
		CollUserRoles:       {unique("user_id")},
		CollDoctors:         {unique("user_id"), plain("specialization_id")},
		CollPatients:        {unique("user_id")},
		CollSpecializations: {unique("name")},
		CollSchedules:       {unique("doctor_id", "work_date", "work_shift")},
		CollAppointments: {
			// one live booking per patient and slot; canceled rows are outside the index
			{
				Keys: keys("patient_id", "work_date", "work_shift"),
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"active": true}).
					SetName("uniq_active_patient_slot"),
			},
			plain("doctor_id", "work_date", "work_shift"),
			plain("status"),
		},
		CollAppointmentHistories: {plain("appointment_id")},
		CollNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "recipient_type", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollPayments: {
			unique("order_id"),
			{Keys: bson.D{{Key: "appointment_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}

// EnsureIndexes creates missing indexes. Existing ones are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range Indexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
