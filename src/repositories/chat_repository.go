package repositories

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// normalizePair orders the two user ids so the unordered chat pair has one
// canonical storage form. Lookups never query both orderings.
func normalizePair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// GetOrCreate returns the chat between the two users, lazily creating it
// on first contact. The upsert keeps concurrent first messages from
// racing into two chats.
func (cr *ChatRepository) GetOrCreate(ctx context.Context, userA, userB int64) (*entities.Chat, error) {
	user1, user2 := normalizePair(userA, userB)

	query := `
		INSERT INTO chats (user1_id, user2_id)
		VALUES ($1, $2)
		ON CONFLICT (user1_id, user2_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, user1_id, user2_id, created_at, updated_at`

	var chat entities.Chat
	err := cr.pool.QueryRow(ctx, query, user1, user2).Scan(
		&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ChatRepository.GetOrCreate - upsert failed: %w", err)
	}

	return &chat, nil
}

func (cr *ChatRepository) GetByID(ctx context.Context, id int64) (*entities.Chat, error) {
	query := `SELECT id, user1_id, user2_id, created_at, updated_at FROM chats WHERE id = $1`

	var chat entities.Chat
	err := cr.pool.QueryRow(ctx, query, id).Scan(
		&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ChatRepository.GetByID - query failed: %w", err)
	}

	return &chat, nil
}

func (cr *ChatRepository) GetBetween(ctx context.Context, userA, userB int64) (*entities.Chat, error) {
	user1, user2 := normalizePair(userA, userB)

	query := `SELECT id, user1_id, user2_id, created_at, updated_at FROM chats WHERE user1_id = $1 AND user2_id = $2`

	var chat entities.Chat
	err := cr.pool.QueryRow(ctx, query, user1, user2).Scan(
		&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ChatRepository.GetBetween - query failed: %w", err)
	}

	return &chat, nil
}

func (cr *ChatRepository) ListFor(ctx context.Context, userID int64) ([]entities.Chat, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at, updated_at
		FROM chats
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY updated_at DESC`

	rows, err := cr.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ChatRepository.ListFor - query failed: %w", err)
	}
	defer rows.Close()

	chats := make([]entities.Chat, 0)
	for rows.Next() {
		var chat entities.Chat
		if err := rows.Scan(
			&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ChatRepository.ListFor - scan failed: %w", err)
		}
		chats = append(chats, chat)
	}

	return chats, rows.Err()
}

// CreateMessage appends the message and touches the chat inside one
// transaction so the chat list ordering follows the latest message.
func (cr *ChatRepository) CreateMessage(ctx context.Context, message *entities.Message) error {
	tx, err := cr.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ChatRepository.CreateMessage - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		message.ChatID, message.SenderID, message.Content,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ChatRepository.CreateMessage - insert failed: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, message.ChatID); err != nil {
		return fmt.Errorf("ChatRepository.CreateMessage - chat touch failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (cr *ChatRepository) ListMessages(ctx context.Context, chatID int64, beforeID int64, limit int) ([]entities.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, content, created_at, updated_at
		FROM messages
		WHERE chat_id = $1
		  AND ($2 = 0 OR id < $2)
		ORDER BY id DESC
		LIMIT $3`

	rows, err := cr.pool.Query(ctx, query, chatID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("ChatRepository.ListMessages - query failed: %w", err)
	}
	defer rows.Close()

	messages := make([]entities.Message, 0, limit)
	for rows.Next() {
		var message entities.Message
		if err := rows.Scan(
			&message.ID, &message.ChatID, &message.SenderID,
			&message.Content, &message.CreatedAt, &message.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ChatRepository.ListMessages - scan failed: %w", err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
