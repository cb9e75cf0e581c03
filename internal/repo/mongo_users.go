package repo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoUsers struct{ coll[User] }

func (s *mongoUsers) Create(ctx context.Context, u *User) error { return s.insert(ctx, u) }

func (s *mongoUsers) Get(ctx context.Context, id string) (*User, error) { return s.byID(ctx, id) }

func (s *mongoUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *mongoUsers) GetMany(ctx context.Context, ids []string) ([]*User, error) {
	return s.byIDs(ctx, ids)
}

func (s *mongoUsers) Update(ctx context.Context, u *User) error { return s.replace(ctx, u.ID, u) }

func (s *mongoUsers) Delete(ctx context.Context, id string) error { return s.deleteByID(ctx, id) }

type mongoRoles struct{ coll[Role] }

func (s *mongoRoles) Ensure(ctx context.Context, name string) (*Role, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{"_id": NewID(), "name": name}}

	var out Role
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"name": name}, update, opts).Decode(&out); err != nil {
		return nil, mapErr("ensure role", err)
	}
	return &out, nil
}

func (s *mongoRoles) Get(ctx context.Context, id string) (*Role, error) { return s.byID(ctx, id) }

func (s *mongoRoles) GetByName(ctx context.Context, name string) (*Role, error) {
	return s.findOne(ctx, bson.M{"name": name})
}

type mongoUserRoles struct{ coll[UserRole] }

func (s *mongoUserRoles) Create(ctx context.Context, ur *UserRole) error { return s.insert(ctx, ur) }

func (s *mongoUserRoles) GetByUser(ctx context.Context, userID string) (*UserRole, error) {
	return s.findOne(ctx, bson.M{"user_id": userID})
}

func (s *mongoUserRoles) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.deleteMany(ctx, bson.M{"user_id": userID})
	return err
}
