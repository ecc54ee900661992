package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RelationshipWriteRepository owns every mutation of the relationship
// graph. All multi-row effects (friendship pairs, cascades) happen inside
// one transaction; the cache is invalidated after commit, off the request
// path.
type RelationshipWriteRepository struct {
	logger     *slog.Logger
	writePool  *pgxpool.Pool
	cachedRepo *CachedRelationshipRepository
}

func NewRelationshipWriteRepository(
	logger *slog.Logger,
	writePool *pgxpool.Pool,
	cachedRepo *CachedRelationshipRepository,
) *RelationshipWriteRepository {
	return &RelationshipWriteRepository{
		logger:     logger,
		writePool:  writePool,
		cachedRepo: cachedRepo,
	}
}

// Follow creates the directed edge. A second identical follow is a no-op
// success; the unique constraint absorbs concurrent duplicates.
func (r *RelationshipWriteRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.writePool.Exec(ctx, `
		INSERT INTO follow_edges (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("RelationshipWriteRepository.Follow - insert failed: %w", err)
	}

	r.invalidate(followerID, followeeID)
	return nil
}

// Unfollow deletes the edge if present; absent is a no-op, not an error.
func (r *RelationshipWriteRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.writePool.Exec(ctx,
		`DELETE FROM follow_edges WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("RelationshipWriteRepository.Unfollow - delete failed: %w", err)
	}

	r.invalidate(followerID, followeeID)
	return nil
}

// CreateFriendRequest inserts the pending request. A unique violation
// means the same ordered pair already has a request and is reported as
// domain.ErrConflict, the expected outcome of the duplicate-request race.
func (r *RelationshipWriteRepository) CreateFriendRequest(ctx context.Context, senderID, receiverID int64) (*entities.FriendRequest, error) {
	query := `
		INSERT INTO friend_requests (sender_id, receiver_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, sender_id, receiver_id, status, created_at, updated_at`

	var request entities.FriendRequest
	err := r.writePool.QueryRow(ctx, query, senderID, receiverID).Scan(
		&request.ID, &request.SenderID, &request.ReceiverID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("RelationshipWriteRepository.CreateFriendRequest - insert failed: %w", err)
	}

	return &request, nil
}

// AcceptRequest flips the status and materializes the two reciprocal
// friendship rows in one transaction. The status flip is a compare-and-set
// on status = 'pending', so of two concurrent accepts exactly one commits;
// the other observes zero affected rows and gets ErrInvalidState. A crash
// anywhere before commit leaves the request pending and no friendship
// rows — acceptance is observably atomic. The friendship insert tolerates
// rows that already exist: crossed pending requests (one per direction,
// which the one-directional unique index cannot prevent) must both be
// acceptable without wedging the second one on friendships_pair_unique.
func (r *RelationshipWriteRepository) AcceptRequest(ctx context.Context, requestID int64) (*entities.FriendRequest, error) {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("RelationshipWriteRepository.AcceptRequest - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var request entities.FriendRequest
	err = tx.QueryRow(ctx, `
		UPDATE friend_requests
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		requestID,
	).Scan(
		&request.ID, &request.SenderID, &request.ReceiverID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, r.resolveMissedUpdate(ctx, requestID)
		}
		return nil, fmt.Errorf("RelationshipWriteRepository.AcceptRequest - status update failed: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, is_accepted)
		VALUES ($1, $2, TRUE), ($2, $1, TRUE)
		ON CONFLICT (user_id, friend_id) DO NOTHING`,
		request.SenderID, request.ReceiverID,
	)
	if err != nil {
		return nil, fmt.Errorf("RelationshipWriteRepository.AcceptRequest - friendship insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("RelationshipWriteRepository.AcceptRequest - commit failed: %w", err)
	}

	r.invalidate(request.SenderID, request.ReceiverID)
	return &request, nil
}

// RejectRequest is the same compare-and-set without side effects.
func (r *RelationshipWriteRepository) RejectRequest(ctx context.Context, requestID int64) (*entities.FriendRequest, error) {
	var request entities.FriendRequest
	err := r.writePool.QueryRow(ctx, `
		UPDATE friend_requests
		SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		requestID,
	).Scan(
		&request.ID, &request.SenderID, &request.ReceiverID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, r.resolveMissedUpdate(ctx, requestID)
		}
		return nil, fmt.Errorf("RelationshipWriteRepository.RejectRequest - status update failed: %w", err)
	}

	return &request, nil
}

// resolveMissedUpdate distinguishes "request gone" from "request already
// resolved" when the CAS matched nothing.
func (r *RelationshipWriteRepository) resolveMissedUpdate(ctx context.Context, requestID int64) error {
	var status string
	err := r.writePool.QueryRow(ctx,
		`SELECT status FROM friend_requests WHERE id = $1`, requestID,
	).Scan(&status)
	if err != nil {
		if postgres.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("RelationshipWriteRepository - status lookup failed: %w", err)
	}
	return domain.ErrInvalidState
}

func (r *RelationshipWriteRepository) invalidate(userIDs ...int64) {
	if r.cachedRepo == nil {
		return
	}

	go func() {
		if err := r.cachedRepo.InvalidateByUserIDs(context.Background(), userIDs); err != nil {
			r.logger.Warn("Failed to invalidate relationship cache", "error", err, "user_ids", userIDs)
		}
	}()
}
