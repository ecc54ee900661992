package repositories

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RelationshipQueryRepository is the read side of the relationship graph:
// follow edges, friendships and friend requests.
type RelationshipQueryRepository struct {
	pool *pgxpool.Pool
}

func NewRelationshipQueryRepository(pool *pgxpool.Pool) *RelationshipQueryRepository {
	return &RelationshipQueryRepository{pool: pool}
}

func (rqr *RelationshipQueryRepository) FriendIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT friend_id FROM friendships WHERE user_id = $1 AND is_accepted ORDER BY friend_id`

	ids, err := rqr.queryIDs(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("RelationshipQueryRepository.FriendIDsOf - query failed: %w", err)
	}
	return ids, nil
}

func (rqr *RelationshipQueryRepository) FollowingIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT followee_id FROM follow_edges WHERE follower_id = $1 ORDER BY followee_id`

	ids, err := rqr.queryIDs(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("RelationshipQueryRepository.FollowingIDsOf - query failed: %w", err)
	}
	return ids, nil
}

func (rqr *RelationshipQueryRepository) FollowerIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT follower_id FROM follow_edges WHERE followee_id = $1 ORDER BY follower_id`

	ids, err := rqr.queryIDs(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("RelationshipQueryRepository.FollowerIDsOf - query failed: %w", err)
	}
	return ids, nil
}

func (rqr *RelationshipQueryRepository) FollowersCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := rqr.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM follow_edges WHERE followee_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("RelationshipQueryRepository.FollowersCount - query failed: %w", err)
	}
	return count, nil
}

func (rqr *RelationshipQueryRepository) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := rqr.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2 AND is_accepted)`,
		userID, otherID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("RelationshipQueryRepository.IsFriend - query failed: %w", err)
	}
	return exists, nil
}

func (rqr *RelationshipQueryRepository) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := rqr.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follow_edges WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("RelationshipQueryRepository.IsFollowing - query failed: %w", err)
	}
	return exists, nil
}

func (rqr *RelationshipQueryRepository) GetFriendRequest(ctx context.Context, id int64) (*entities.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friend_requests WHERE id = $1`

	var request entities.FriendRequest
	err := rqr.pool.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.SenderID, &request.ReceiverID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("RelationshipQueryRepository.GetFriendRequest - query failed: %w", err)
	}

	return &request, nil
}

// PendingRequestsFor returns the receiver's pending requests joined with
// the sender's username. This join is the single code path producing
// FriendRequestView; nothing else serializes requests.
func (rqr *RelationshipQueryRepository) PendingRequestsFor(ctx context.Context, receiverID int64) ([]domain.FriendRequestView, error) {
	query := `
		SELECT fr.id, fr.sender_id, fr.receiver_id, u.username, fr.status, fr.created_at
		FROM friend_requests fr
		JOIN users u ON u.id = fr.sender_id
		WHERE fr.receiver_id = $1 AND fr.status = 'pending'
		ORDER BY fr.created_at DESC`

	rows, err := rqr.pool.Query(ctx, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("RelationshipQueryRepository.PendingRequestsFor - query failed: %w", err)
	}
	defer rows.Close()

	var views []domain.FriendRequestView
	for rows.Next() {
		var view domain.FriendRequestView
		if err := rows.Scan(
			&view.ID, &view.SenderID, &view.ReceiverID,
			&view.SenderUsername, &view.Status, &view.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("RelationshipQueryRepository.PendingRequestsFor - scan failed: %w", err)
		}
		views = append(views, view)
	}

	return views, rows.Err()
}

// HasOpenRequestBetween reports whether a pending or accepted request
// exists in either direction. Rejected requests only block re-sending in
// the same direction, which the unique constraint already enforces.
func (rqr *RelationshipQueryRepository) HasOpenRequestBetween(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := rqr.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
			  AND status IN ('pending', 'accepted')
		)`, userID, otherID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("RelationshipQueryRepository.HasOpenRequestBetween - query failed: %w", err)
	}
	return exists, nil
}

func (rqr *RelationshipQueryRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := rqr.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
