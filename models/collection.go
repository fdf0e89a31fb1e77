package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Collection struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	Owner     primitive.ObjectID   `json:"owner" bson:"owner"`
	IsPublic  bool                 `json:"isPublic" bson:"isPublic"`
	Posts     []primitive.ObjectID `json:"posts" bson:"posts"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
}

// CollectionView is a collection with its posts expanded, newest first.
type CollectionView struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Owner     primitive.ObjectID `json:"owner"`
	IsPublic  bool               `json:"isPublic"`
	Posts     []PostSummary      `json:"posts"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CollectionDetail is the single-collection projection.
type CollectionDetail struct {
	ID       primitive.ObjectID `json:"_id"`
	Name     string             `json:"name"`
	IsPublic bool               `json:"isPublic"`
	Posts    []PostSummary      `json:"posts"`
}
