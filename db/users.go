package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitshare/errs"
	"fitshare/models"
)

func (m *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	// array fields must exist for $addToSet/$push to work later
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Collections == nil {
		u.Collections = []primitive.ObjectID{}
	}

	_, err := m.users.InsertOne(ctx, u)
	return storeErr(err, "user not found", "inserting user")
}

func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := m.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, storeErr(err, "user not found", "finding user")
	}
	return &user, nil
}

func (m *Mongo) ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if token == "" {
		return nil, errs.NotFound("invalid token")
	}

	var user models.User
	err := m.users.FindOneAndUpdate(ctx,
		bson.M{"verificationToken": token},
		bson.M{
			"$set":   bson.M{"verified": true},
			"$unset": bson.M{"verificationToken": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, storeErr(err, "invalid token", "verifying user")
	}
	return &user, nil
}

func (m *Mongo) ListUsersExcept(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cursor, err := m.users.Find(ctx, bson.M{"_id": bson.M{"$ne": id}})
	if err != nil {
		return nil, storeErr(err, "", "listing users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, storeErr(err, "", "decoding users")
	}
	return users, nil
}

func (m *Mongo) UserSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cursor, err := m.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "profilePicture": 1}),
	)
	if err != nil {
		return nil, storeErr(err, "", "finding users")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var s models.UserSummary
		if err := cursor.Decode(&s); err != nil {
			return nil, storeErr(err, "", "decoding user summary")
		}
		out[s.ID] = s
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr(err, "", "iterating users")
	}
	return out, nil
}

func (m *Mongo) AddFollower(ctx context.Context, target, follower primitive.ObjectID) (bool, error) {
	return m.updateUser(ctx, target, bson.M{"$addToSet": bson.M{"followers": follower}}, "adding follower")
}

func (m *Mongo) RemoveFollower(ctx context.Context, target, follower primitive.ObjectID) error {
	_, err := m.updateUser(ctx, target, bson.M{"$pull": bson.M{"followers": follower}}, "removing follower")
	return err
}

func (m *Mongo) AppendUserCollection(ctx context.Context, user, collection primitive.ObjectID) error {
	_, err := m.updateUser(ctx, user, bson.M{"$addToSet": bson.M{"collections": collection}}, "linking collection")
	return err
}

// updateUser applies update to one user and reports whether it modified the
// document.
func (m *Mongo) updateUser(ctx context.Context, id primitive.ObjectID, update bson.M, op string) (bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	res, err := m.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, storeErr(err, "user not found", op)
	}
	if res.MatchedCount == 0 {
		return false, errs.NotFound("user not found")
	}
	return res.ModifiedCount > 0, nil
}
