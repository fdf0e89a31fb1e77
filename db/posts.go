package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitshare/models"
)

var (
	newestFirst       = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	postSummaryFields = bson.M{"outfitName": 1, "description": 1, "images": 1, "tags": 1, "createdAt": 1}
)

func (m *Mongo) CreatePost(ctx context.Context, p *models.Post) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	_, err := m.posts.InsertOne(ctx, p)
	return storeErr(err, "post not found", "inserting post")
}

func (m *Mongo) PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var post models.Post
	if err := m.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, storeErr(err, "post not found", "finding post")
	}
	return &post, nil
}

func (m *Mongo) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if !f.User.IsZero() {
		filter["user"] = f.User
	}

	cursor, err := m.posts.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, storeErr(err, "", "listing posts")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, storeErr(err, "", "decoding posts")
	}
	return posts, nil
}

func (m *Mongo) AddLike(ctx context.Context, post, user primitive.ObjectID) (*models.Post, bool, error) {
	return m.updateLikes(ctx, post, user, true)
}

func (m *Mongo) RemoveLike(ctx context.Context, post, user primitive.ObjectID) (*models.Post, bool, error) {
	return m.updateLikes(ctx, post, user, false)
}

// updateLikes applies the set operation and rebuilds the post's new state
// from the pre-image, so callers learn whether membership changed.
func (m *Mongo) updateLikes(ctx context.Context, postID, user primitive.ObjectID, add bool) (*models.Post, bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$pull": bson.M{"likes": user}}
	if add {
		update = bson.M{"$addToSet": bson.M{"likes": user}}
	}

	var before models.Post
	err := m.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return nil, false, storeErr(err, "post not found", "updating likes")
	}

	likes, changed := UpdateSet(before.Likes, user, add)
	after := before
	after.Likes = likes
	return &after, changed, nil
}

// UpdateSet returns set with id added or removed and whether it changed.
func UpdateSet(set []primitive.ObjectID, id primitive.ObjectID, add bool) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(set)+1)
	found := false
	for _, existing := range set {
		if existing == id {
			found = true
			if !add {
				continue
			}
		}
		out = append(out, existing)
	}
	if add && !found {
		out = append(out, id)
	}
	return out, add != found
}

func (m *Mongo) PostSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PostSummary, error) {
	if len(ids) == 0 {
		return []models.PostSummary{}, nil
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cursor, err := m.posts.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(postSummaryFields).SetSort(newestFirst),
	)
	if err != nil {
		return nil, storeErr(err, "", "finding posts")
	}
	defer cursor.Close(ctx)

	summaries := []models.PostSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, storeErr(err, "", "decoding posts")
	}
	return summaries, nil
}
