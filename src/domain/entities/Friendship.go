package entities

import "time"

// Friendship is one direction of the symmetric is-friend-of relation.
// Rows exist only as the derived effect of an accepted FriendRequest and are
// always written as a reciprocal pair inside the same transaction.
type Friendship struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	FriendID   int64     `json:"friend_id"`
	IsAccepted bool      `json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
}
