package entities

import "time"

// PostLike is the canonical likes representation: one row per (post, user),
// unique on the pair. Counts are derived, so the set can never drift.
type PostLike struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
