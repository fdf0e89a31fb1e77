package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User        primitive.ObjectID   `json:"user" bson:"user"`
	OutfitName  string               `json:"outfitName" bson:"outfitName"`
	Description string               `json:"description" bson:"description"`
	Tags        []string             `json:"tags" bson:"tags"`
	Images      []string             `json:"images" bson:"images"`
	Likes       []primitive.ObjectID `json:"likes" bson:"likes"`
	Content     string               `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
}

// PostWithAuthor is a post with its owner expanded. The outer User field
// shadows Post.User when encoded.
type PostWithAuthor struct {
	Post
	User UserSummary `json:"user"`
}

// PostSummary is the projection used when expanding collection posts.
type PostSummary struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	OutfitName  string             `json:"outfitName" bson:"outfitName"`
	Description string             `json:"description" bson:"description"`
	Images      []string           `json:"images" bson:"images"`
	Tags        []string           `json:"tags" bson:"tags"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// Summary projects p to the collection view.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:          p.ID,
		OutfitName:  p.OutfitName,
		Description: p.Description,
		Images:      p.Images,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
	}
}
