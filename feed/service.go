// Package feed handles outfit posts and likes.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitshare/db"
	"fitshare/errs"
	"fitshare/models"
	"fitshare/utils"
)

// ActivityPublisher delivers activity events to a user's stream.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, userID string, ev models.ActivityEvent) error
}

type Product struct {
	Image string `json:"image"`
}

type CreatePostRequest struct {
	UserID      string    `json:"userId"`
	Products    []Product `json:"products"`
	OutfitName  string    `json:"outfitName"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
}

type Service struct {
	store  db.Store
	events ActivityPublisher
	log    *slog.Logger
}

func NewService(store db.Store, events ActivityPublisher, log *slog.Logger) *Service {
	return &Service{store: store, events: events, log: log}
}

// CreatePost stores a post for an existing user. Images come from the
// products in order, skipping blanks; tags are de-duplicated.
func (s *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	owner, err := utils.ParseObjectID(req.UserID, "userId")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UserByID(ctx, owner); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ValidationWithDetails("user does not exist", map[string]string{"userId": "must reference an existing user"})
		}
		return nil, err
	}

	images := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		if img := strings.TrimSpace(p.Image); img != "" {
			images = append(images, img)
		}
	}

	post := &models.Post{
		User:        owner,
		OutfitName:  strings.TrimSpace(req.OutfitName),
		Description: req.Description,
		Tags:        dedupe(req.Tags),
		Images:      images,
		Content:     req.Content,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.log.Info("post created", "post_id", post.ID.Hex(), "user_id", owner.Hex())
	return post, nil
}

// ListPosts returns every post newest first with its author expanded.
func (s *Service) ListPosts(ctx context.Context) ([]models.PostWithAuthor, error) {
	posts, err := s.store.ListPosts(ctx, db.PostFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]struct{}, len(posts))
	owners := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.User]; !ok {
			seen[p.User] = struct{}{}
			owners = append(owners, p.User)
		}
	}
	authors, err := s.store.UserSummaries(ctx, owners)
	if err != nil {
		return nil, err
	}

	out := make([]models.PostWithAuthor, len(posts))
	for i, p := range posts {
		author, ok := authors[p.User]
		if !ok {
			author = models.UserSummary{ID: p.User}
		}
		out[i] = models.PostWithAuthor{Post: p, User: author}
	}
	return out, nil
}

// ListUserPosts returns userID's posts newest first.
func (s *Service) ListUserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	id, err := utils.ParseObjectID(userID, "userId")
	if err != nil {
		return nil, err
	}
	return s.store.ListPosts(ctx, db.PostFilter{User: id})
}

// Like adds userID to the post's likes. Liking twice leaves a single entry.
func (s *Service) Like(ctx context.Context, postID, userID string) (*models.PostWithAuthor, error) {
	return s.updateLike(ctx, postID, userID, true)
}

// Unlike removes userID from the post's likes.
func (s *Service) Unlike(ctx context.Context, postID, userID string) (*models.PostWithAuthor, error) {
	return s.updateLike(ctx, postID, userID, false)
}

func (s *Service) updateLike(ctx context.Context, rawPost, rawUser string, add bool) (*models.PostWithAuthor, error) {
	postID, err := utils.ParseObjectID(rawPost, "postId")
	if err != nil {
		return nil, err
	}
	userID, err := utils.ParseObjectID(rawUser, "userId")
	if err != nil {
		return nil, err
	}

	var (
		post    *models.Post
		changed bool
	)
	if add {
		post, changed, err = s.store.AddLike(ctx, postID, userID)
	} else {
		post, changed, err = s.store.RemoveLike(ctx, postID, userID)
	}
	if err != nil {
		return nil, err
	}

	if add && changed && post.User != userID {
		ev := models.ActivityEvent{
			Type:      models.EventLike,
			ActorID:   userID.Hex(),
			TargetID:  post.User.Hex(),
			EntityID:  post.ID.Hex(),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.events.PublishActivity(ctx, post.User.Hex(), ev); err != nil {
			s.log.Warn("publishing like activity failed", "post_id", post.ID.Hex(), "error", err)
		}
	}

	author := models.UserSummary{ID: post.User}
	if authors, err := s.store.UserSummaries(ctx, []primitive.ObjectID{post.User}); err != nil {
		return nil, err
	} else if a, ok := authors[post.User]; ok {
		author = models.UserSummary{ID: a.ID, Name: a.Name}
	}
	return &models.PostWithAuthor{Post: *post, User: author}, nil
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
