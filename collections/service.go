// Package collections organises posts into named, per-user collections.
//
// A user owns at most one collection per name; the store enforces this with
// a unique index so concurrent creates cannot produce duplicates. Expanded
// views list member posts newest first regardless of insertion order.
package collections

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitshare/db"
	"fitshare/errs"
	"fitshare/models"
	"fitshare/utils"
)

type CreateRequest struct {
	UserID         string `json:"userId"`
	CollectionName string `json:"collectionName"`
	PostID         string `json:"postId,omitempty"`
}

type AddPostRequest struct {
	UserID         string `json:"userId"`
	CollectionName string `json:"collectionName"`
	PostID         string `json:"postId"`
}

type Service struct {
	store db.Store
	log   *slog.Logger
}

func NewService(store db.Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// ForOwner returns the owner's collections, optionally filtered by
// visibility, each with its posts expanded. A missing user and an empty
// result are both NOT_FOUND; details.reason tells them apart.
func (s *Service) ForOwner(ctx context.Context, ownerID string, isPublic *bool) ([]models.CollectionView, error) {
	owner, err := utils.ParseObjectID(ownerID, "userId")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UserByID(ctx, owner); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("User not found").WithDetails(utils.M{"reason": "user_not_found"})
		}
		return nil, err
	}

	found, err := s.store.FindCollections(ctx, db.CollectionFilter{Owner: owner, IsPublic: isPublic})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, errs.NotFound("No collections found for the user").WithDetails(utils.M{"reason": "no_collections"})
	}

	var ids []primitive.ObjectID
	for _, c := range found {
		ids = append(ids, c.Posts...)
	}
	summaries, err := s.store.PostSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CollectionView, len(found))
	for i, c := range found {
		views[i] = models.CollectionView{
			ID:        c.ID,
			Name:      c.Name,
			Owner:     c.Owner,
			IsPublic:  c.IsPublic,
			Posts:     members(summaries, c.Posts),
			CreatedAt: c.CreatedAt,
		}
	}
	return views, nil
}

// Detail returns one collection with its posts expanded.
func (s *Service) Detail(ctx context.Context, collectionID string) (*models.CollectionDetail, error) {
	c, posts, err := s.expand(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return &models.CollectionDetail{ID: c.ID, Name: c.Name, IsPublic: c.IsPublic, Posts: posts}, nil
}

// Posts returns only the expanded posts of a collection.
func (s *Service) Posts(ctx context.Context, collectionID string) ([]models.PostSummary, error) {
	_, posts, err := s.expand(ctx, collectionID)
	return posts, err
}

func (s *Service) expand(ctx context.Context, collectionID string) (*models.Collection, []models.PostSummary, error) {
	id, err := utils.ParseObjectID(collectionID, "collectionId")
	if err != nil {
		return nil, nil, err
	}
	c, err := s.store.CollectionByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.store.PostSummaries(ctx, c.Posts)
	if err != nil {
		return nil, nil, err
	}
	return c, posts, nil
}

// AddPost puts a post into the owner's collection of that name, creating
// the collection on first use and making sure the owner lists it. Adding a
// member again changes nothing.
func (s *Service) AddPost(ctx context.Context, req AddPostRequest) error {
	if strings.TrimSpace(req.PostID) == "" {
		return errs.ValidationWithDetails("postId is required", utils.M{"postId": "is required"})
	}
	name := strings.TrimSpace(req.CollectionName)
	if name == "" {
		return errs.ValidationWithDetails("collectionName is required", utils.M{"collectionName": "is required"})
	}
	owner, err := utils.ParseObjectID(req.UserID, "userId")
	if err != nil {
		return err
	}
	post, err := utils.ParseObjectID(req.PostID, "postId")
	if err != nil {
		return err
	}

	if _, err := s.store.UserByID(ctx, owner); err != nil {
		return err
	}
	if _, err := s.store.PostByID(ctx, post); err != nil {
		return err
	}

	id, created, err := s.store.AddPostToNamedCollection(ctx, owner, name, post)
	if err != nil {
		return err
	}
	// linking is a set add, so an existing collection left unlinked by a
	// failed Create is repaired here
	if err := s.store.AppendUserCollection(ctx, owner, id); err != nil {
		return err
	}
	if created {
		s.log.Info("collection created", "collection_id", id.Hex(), "user_id", owner.Hex())
	}
	return nil
}

// Create makes a new empty collection, or one seeded with PostID. A name the
// owner already uses is a CONFLICT.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Collection, error) {
	name := strings.TrimSpace(req.CollectionName)
	if name == "" {
		return nil, errs.ValidationWithDetails("collectionName is required", utils.M{"collectionName": "is required"})
	}
	owner, err := utils.ParseObjectID(req.UserID, "userId")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UserByID(ctx, owner); err != nil {
		return nil, err
	}

	posts := []primitive.ObjectID{}
	if strings.TrimSpace(req.PostID) != "" {
		post, err := utils.ParseObjectID(req.PostID, "postId")
		if err != nil {
			return nil, err
		}
		if _, err := s.store.PostByID(ctx, post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	c := &models.Collection{Name: name, Owner: owner, Posts: posts}
	if err := s.store.CreateCollection(ctx, c); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, errs.Conflict("a collection with this name already exists")
		}
		return nil, err
	}
	if err := s.store.AppendUserCollection(ctx, owner, c.ID); err != nil {
		s.log.Error("collection created but not linked to owner",
			"collection_id", c.ID.Hex(), "user_id", owner.Hex(), "error", err)
		return nil, err
	}
	s.log.Info("collection created", "collection_id", c.ID.Hex(), "user_id", owner.Hex())
	return c, nil
}

// SetPublic updates a collection's visibility. isPublic must be supplied.
func (s *Service) SetPublic(ctx context.Context, collectionID string, isPublic *bool) (*models.Collection, error) {
	id, err := utils.ParseObjectID(collectionID, "collectionId")
	if err != nil {
		return nil, err
	}
	if isPublic == nil {
		return nil, errs.ValidationWithDetails("isPublic is required", utils.M{"isPublic": "must be a boolean"})
	}
	return s.store.SetCollectionPublic(ctx, id, *isPublic)
}

// members filters summaries, already newest first, down to ids.
func members(summaries []models.PostSummary, ids []primitive.ObjectID) []models.PostSummary {
	want := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]models.PostSummary, 0, len(ids))
	for _, p := range summaries {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
