// Package profile serves user profiles and the follower graph.
package profile

import (
	"context"
	"log/slog"
	"slices"
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

type Service struct {
	store  db.Store
	events ActivityPublisher
	log    *slog.Logger
}

func NewService(store db.Store, events ActivityPublisher, log *slog.Logger) *Service {
	return &Service{store: store, events: events, log: log}
}

// ListUsers returns every user except userID.
func (s *Service) ListUsers(ctx context.Context, userID string) ([]models.User, error) {
	id, err := utils.ParseObjectID(userID, "userId")
	if err != nil {
		return nil, err
	}
	return s.store.ListUsersExcept(ctx, id)
}

func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, err := utils.ParseObjectID(userID, "userId")
	if err != nil {
		return nil, err
	}
	return s.store.UserByID(ctx, id)
}

// FollowedBy reports whether viewerID is among u's followers.
func FollowedBy(u *models.User, viewerID string) bool {
	viewer, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		return false
	}
	return slices.Contains(u.Followers, viewer)
}

// Follow adds follower to target's followers. Both users must exist.
// Following twice is a no-op and publishes no second event.
func (s *Service) Follow(ctx context.Context, follower, target string) error {
	followerID, targetID, err := parsePair(follower, "currentUserId", target, "selectedUserId")
	if err != nil {
		return err
	}
	if _, err := s.store.UserByID(ctx, followerID); err != nil {
		return err
	}
	added, err := s.store.AddFollower(ctx, targetID, followerID)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	ev := models.ActivityEvent{
		Type:      models.EventFollow,
		ActorID:   followerID.Hex(),
		TargetID:  targetID.Hex(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishActivity(ctx, targetID.Hex(), ev); err != nil {
		s.log.Warn("publishing follow activity failed", "target", targetID.Hex(), "error", err)
	}
	return nil
}

// Unfollow removes follower from target's followers. Both users must exist;
// removing a non-follower is a no-op.
func (s *Service) Unfollow(ctx context.Context, follower, target string) error {
	followerID, targetID, err := parsePair(follower, "loggedInUserId", target, "targetUserId")
	if err != nil {
		return err
	}
	if _, err := s.store.UserByID(ctx, followerID); err != nil {
		return err
	}
	return s.store.RemoveFollower(ctx, targetID, followerID)
}

func parsePair(a, aField, b, bField string) (primitive.ObjectID, primitive.ObjectID, error) {
	aID, err := utils.ParseObjectID(a, aField)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	bID, err := utils.ParseObjectID(b, bField)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	if aID == bID {
		return primitive.NilObjectID, primitive.NilObjectID, errs.Validation("users cannot follow themselves")
	}
	return aID, bID, nil
}
