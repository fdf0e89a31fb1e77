package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name              string               `json:"name" bson:"name"`
	Email             string               `json:"email" bson:"email"`
	PasswordHash      string               `json:"-" bson:"password"`
	Verified          bool                 `json:"verified" bson:"verified"`
	VerificationToken string               `json:"-" bson:"verificationToken,omitempty"`
	ProfilePicture    string               `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Bio               string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Followers         []primitive.ObjectID `json:"followers" bson:"followers"`
	Collections       []primitive.ObjectID `json:"collections" bson:"collections"`
	CreatedAt         time.Time            `json:"createdAt" bson:"createdAt"`
}

// UserSummary is the reduced author view attached to posts.
type UserSummary struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Name           string             `json:"name" bson:"name"`
	ProfilePicture string             `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
}

// Summary projects u to its author view.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, ProfilePicture: u.ProfilePicture}
}
