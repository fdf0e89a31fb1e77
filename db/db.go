package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"fitshare/errs"
)

const (
	usersCollection       = "users"
	postsCollection       = "posts"
	catalogCollection     = "catalog_items"
	collectionsCollection = "collections"
)

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	Client      *mongo.Client
	users       *mongo.Collection
	posts       *mongo.Collection
	catalog     *mongo.Collection
	collections *mongo.Collection
	timeout     time.Duration
}

var _ Store = (*Mongo)(nil)

// Connect opens a client, pings the primary and binds the collections of dbName.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	clientOptions := options.Client().ApplyURI(uri).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return newMongo(client, dbName, timeout), nil
}

func newMongo(client *mongo.Client, dbName string, timeout time.Duration) *Mongo {
	database := client.Database(dbName)
	return &Mongo{
		Client:      client,
		users:       database.Collection(usersCollection),
		posts:       database.Collection(postsCollection),
		catalog:     database.Collection(catalogCollection),
		collections: database.Collection(collectionsCollection),
		timeout:     timeout,
	}
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the uniqueness invariants rely on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	indexes := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{m.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verificationToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		}},
		{m.posts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{m.collections, []mongo.IndexModel{
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{m.catalog, []mongo.IndexModel{
			{Keys: bson.D{{Key: "category", Value: 1}}},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateMany(ctx, idx.models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// storeErr maps driver errors onto errs kinds.
func storeErr(err error, notFound, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errs.NotFound(notFound)
	case mongo.IsDuplicateKeyError(err):
		return errs.AlreadyExists(op + ": duplicate key").WithCause(err)
	default:
		return errs.Internal(op).WithCause(err)
	}
}
