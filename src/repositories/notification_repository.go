package repositories

import (
	"context"
	"fmt"

	"socialgraph/src/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// InsertBatch bulk-loads notification rows via COPY; the notifications
// consumer hands over whole Kafka batches at once.
func (nr *NotificationRepository) InsertBatch(ctx context.Context, notifications []entities.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, []interface{}{n.UserID, n.Kind, n.ActorID, n.SubjectID, n.CreatedAt})
	}

	_, err := nr.pool.CopyFrom(
		ctx,
		pgx.Identifier{"notifications"},
		[]string{"user_id", "kind", "actor_id", "subject_id", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("NotificationRepository.InsertBatch - copy failed: %w", err)
	}

	return nil
}

func (nr *NotificationRepository) ListFor(ctx context.Context, userID int64, limit int) ([]entities.Notification, error) {
	query := `
		SELECT id, user_id, kind, actor_id, subject_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := nr.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("NotificationRepository.ListFor - query failed: %w", err)
	}
	defer rows.Close()

	notifications := make([]entities.Notification, 0)
	for rows.Next() {
		var n entities.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Kind, &n.ActorID, &n.SubjectID, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("NotificationRepository.ListFor - scan failed: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (nr *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := nr.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID,
	)
	if err != nil {
		return fmt.Errorf("NotificationRepository.MarkAllRead - update failed: %w", err)
	}
	return nil
}
