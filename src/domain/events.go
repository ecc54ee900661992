package domain

import "time"

// Event kinds published to the social events topic. The notifications
// consumer fans these out into per-user notification rows.
const (
	EventFriendRequestSent     = "friend_request.sent"
	EventFriendRequestAccepted = "friend_request.accepted"
	EventPostCreated           = "post.created"
	EventPostLiked             = "post.liked"
	EventMessageSent           = "message.sent"
)

// SocialEvent is the payload of every message on the social events topic.
// SubjectUserID is the user the event happened to; it is also the Kafka
// partition key so one user's events stay ordered.
type SocialEvent struct {
	Kind          string    `json:"kind"`
	ActorID       int64     `json:"actor_id"`
	SubjectUserID int64     `json:"subject_user_id"`
	ResourceID    int64     `json:"resource_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
