// Package db is the entity access layer over the document store.
package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitshare/models"
)

// PostFilter narrows ListPosts. A zero User lists every post.
type PostFilter struct {
	User primitive.ObjectID
}

// CollectionFilter narrows FindCollections. IsPublic nil means either.
type CollectionFilter struct {
	Owner    primitive.ObjectID
	IsPublic *bool
}

// Store is the entity access contract. Lookups by id that miss return an
// errs NOT_FOUND error; unique-index violations return ALREADY_EXISTS.
// Nothing is ever deleted.
type Store interface {
	EnsureIndexes(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// ConsumeVerificationToken marks the owner of token verified and clears
	// the token in one update.
	ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error)
	ListUsersExcept(ctx context.Context, id primitive.ObjectID) ([]models.User, error)
	UserSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
	// AddFollower reports whether follower was newly added.
	AddFollower(ctx context.Context, target, follower primitive.ObjectID) (bool, error)
	RemoveFollower(ctx context.Context, target, follower primitive.ObjectID) error
	AppendUserCollection(ctx context.Context, user, collection primitive.ObjectID) error

	CreatePost(ctx context.Context, p *models.Post) error
	PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error)
	// AddLike and RemoveLike return the post after the update and whether
	// the like set changed.
	AddLike(ctx context.Context, post, user primitive.ObjectID) (*models.Post, bool, error)
	RemoveLike(ctx context.Context, post, user primitive.ObjectID) (*models.Post, bool, error)
	// PostSummaries returns the projection of every existing post in ids,
	// newest first. Missing ids are skipped.
	PostSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PostSummary, error)

	// CatalogItems lists one category, or all when category is empty.
	CatalogItems(ctx context.Context, category models.Category) ([]models.CatalogItem, error)

	CreateCollection(ctx context.Context, c *models.Collection) error
	CollectionByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error)
	FindCollections(ctx context.Context, f CollectionFilter) ([]models.Collection, error)
	// AddPostToNamedCollection adds post to owner's collection called name,
	// creating it when absent. It reports the collection id and whether it
	// was created by this call.
	AddPostToNamedCollection(ctx context.Context, owner primitive.ObjectID, name string, post primitive.ObjectID) (primitive.ObjectID, bool, error)
	SetCollectionPublic(ctx context.Context, id primitive.ObjectID, isPublic bool) (*models.Collection, error)
}
