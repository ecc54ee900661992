package entities

import "time"

// FollowEdge is the directed "subscribe to content" relation.
// Unique on (FollowerID, FolloweeID); no approval step.
type FollowEdge struct {
	ID         int64     `json:"id"`
	FollowerID int64     `json:"follower_id"`
	FolloweeID int64     `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
