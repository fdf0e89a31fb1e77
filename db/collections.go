package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitshare/errs"
	"fitshare/models"
)

func (m *Mongo) CreateCollection(ctx context.Context, c *models.Collection) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Posts == nil {
		c.Posts = []primitive.ObjectID{}
	}

	_, err := m.collections.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return errs.AlreadyExists("a collection with this name already exists").WithCause(err)
	}
	return storeErr(err, "collection not found", "inserting collection")
}

func (m *Mongo) CollectionByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var c models.Collection
	if err := m.collections.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, storeErr(err, "collection not found", "finding collection")
	}
	return &c, nil
}

func (m *Mongo) FindCollections(ctx context.Context, f CollectionFilter) ([]models.Collection, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"owner": f.Owner}
	if f.IsPublic != nil {
		filter["isPublic"] = *f.IsPublic
	}

	cursor, err := m.collections.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "", "finding collections")
	}
	defer cursor.Close(ctx)

	out := []models.Collection{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, storeErr(err, "", "decoding collections")
	}
	return out, nil
}

func (m *Mongo) AddPostToNamedCollection(ctx context.Context, owner primitive.ObjectID, name string, post primitive.ObjectID) (primitive.ObjectID, bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	newID := primitive.NewObjectID()
	filter := bson.M{"owner": owner, "name": name}
	update := bson.M{
		"$addToSet": bson.M{"posts": post},
		"$setOnInsert": bson.M{
			"_id":       newID,
			"isPublic":  false,
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var c models.Collection
	err := m.collections.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		// lost an insert race on (owner, name); the winner's document exists now
		err = m.collections.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	}
	if err != nil {
		return primitive.NilObjectID, false, storeErr(err, "collection not found", "adding post to collection")
	}
	return c.ID, c.ID == newID, nil
}

func (m *Mongo) SetCollectionPublic(ctx context.Context, id primitive.ObjectID, isPublic bool) (*models.Collection, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var c models.Collection
	err := m.collections.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, storeErr(err, "collection not found", "updating collection")
	}
	return &c, nil
}
