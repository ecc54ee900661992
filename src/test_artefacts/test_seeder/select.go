package test_seeder

import (
	"context"

	"socialgraph/src/domain/entities"
)

// SelectFriendshipsBetween returns every friendship row touching the pair,
// in either direction.
func (ts TestSeeder) SelectFriendshipsBetween(ctx context.Context, userID, otherID int64) ([]entities.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, is_accepted, created_at
		FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		ORDER BY user_id`

	rows, err := ts.pool.Query(ctx, query, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friendships []entities.Friendship
	for rows.Next() {
		var friendship entities.Friendship
		err := rows.Scan(
			&friendship.ID,
			&friendship.UserID,
			&friendship.FriendID,
			&friendship.IsAccepted,
			&friendship.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, friendship)
	}

	return friendships, rows.Err()
}

func (ts TestSeeder) SelectFriendRequest(ctx context.Context, id int64) (entities.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friend_requests WHERE id = $1`

	var request entities.FriendRequest
	err := ts.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	return request, err
}

func (ts TestSeeder) CountFollowEdges(ctx context.Context, followerID, followeeID int64) (int64, error) {
	var count int64
	err := ts.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM follow_edges WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	).Scan(&count)
	return count, err
}

func (ts TestSeeder) CountRowsFor(ctx context.Context, table string, column string, userID int64) (int64, error) {
	var count int64
	err := ts.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE "+column+" = $1",
		userID,
	).Scan(&count)
	return count, err
}
