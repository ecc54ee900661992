package repositories

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, bio, location, created_at, updated_at`

func (ur *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, bio, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := ur.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Location,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("UserRepository.Create - insert failed: %w", err)
	}

	return nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := ur.scanUser(ur.pool.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("UserRepository.GetByID - query failed: %w", err)
	}

	return user, nil
}

func (ur *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := ur.scanUser(ur.pool.QueryRow(ctx, query, username))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("UserRepository.GetByUsername - query failed: %w", err)
	}

	return user, nil
}

func (ur *UserRepository) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*entities.User, error) {
	query := `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			bio        = COALESCE($4, bio),
			location   = COALESCE($5, location),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := ur.scanUser(ur.pool.QueryRow(ctx, query,
		id,
		postgres.NewNullString(update.FirstName),
		postgres.NewNullString(update.LastName),
		postgres.NewNullString(update.Bio),
		postgres.NewNullString(update.Location),
	))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("UserRepository.UpdateProfile - update failed: %w", err)
	}

	return user, nil
}

// Search matches the term against username, names and email, the same
// filter surface the API exposes on /users/search.
func (ur *UserRepository) Search(ctx context.Context, term string, limit int) ([]entities.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE '%' || $1 || '%'
		   OR first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT $2`

	rows, err := ur.pool.Query(ctx, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.Search - query failed: %w", err)
	}
	defer rows.Close()

	var users []entities.User
	for rows.Next() {
		var user entities.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.FirstName, &user.LastName, &user.Bio, &user.Location,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("UserRepository.Search - scan failed: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// DeleteCascade removes a user and everything hanging off it inside one
// transaction. The schema deliberately has no ON DELETE CASCADE, so every
// dependent table is listed here, children before parents.
func (ur *UserRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := ur.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("UserRepository.DeleteCascade - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cleanup := []string{
		`DELETE FROM notifications WHERE user_id = $1 OR actor_id = $1`,
		`DELETE FROM messages WHERE sender_id = $1
			OR chat_id IN (SELECT id FROM chats WHERE user1_id = $1 OR user2_id = $1)`,
		`DELETE FROM chats WHERE user1_id = $1 OR user2_id = $1`,
		`DELETE FROM post_likes WHERE user_id = $1
			OR post_id IN (SELECT id FROM posts WHERE author_id = $1)`,
		`DELETE FROM comments WHERE author_id = $1
			OR post_id IN (SELECT id FROM posts WHERE author_id = $1)`,
		`DELETE FROM posts WHERE author_id = $1`,
		`DELETE FROM friendships WHERE user_id = $1 OR friend_id = $1`,
		`DELETE FROM friend_requests WHERE sender_id = $1 OR receiver_id = $1`,
		`DELETE FROM follow_edges WHERE follower_id = $1 OR followee_id = $1`,
	}

	for _, query := range cleanup {
		if _, err := tx.Exec(ctx, query, id); err != nil {
			return fmt.Errorf("UserRepository.DeleteCascade - cleanup failed: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("UserRepository.DeleteCascade - user delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (ur *UserRepository) scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Bio, &user.Location,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
