package models

import "time"

// Activity event kinds.
const (
	EventFollow = "follow"
	EventLike   = "like"
)

// ActivityEvent is published to a user's activity channel.
type ActivityEvent struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actorId"`
	TargetID  string    `json:"targetId"`
	EntityID  string    `json:"entityId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// VerificationMail is the job queued for the mail worker on registration.
type VerificationMail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Link  string `json:"link"`
}
