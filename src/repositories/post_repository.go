package repositories

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (pr *PostRepository) Create(ctx context.Context, post *entities.Post) error {
	query := `
		INSERT INTO posts (author_id, caption, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := pr.pool.QueryRow(ctx, query, post.AuthorID, post.Caption, post.ImageURL).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("PostRepository.Create - insert failed: %w", err)
	}

	return nil
}

func (pr *PostRepository) GetByID(ctx context.Context, id int64) (*entities.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	var post entities.Post
	err := pr.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.AuthorID, &post.Caption, &post.ImageURL,
		&post.LikeCount, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("PostRepository.GetByID - query failed: %w", err)
	}

	return &post, nil
}

func (pr *PostRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]entities.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`

	rows, err := pr.pool.Query(ctx, query, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("PostRepository.ListByAuthor - query failed: %w", err)
	}
	defer rows.Close()

	posts := make([]entities.Post, 0)
	for rows.Next() {
		var post entities.Post
		if err := rows.Scan(
			&post.ID, &post.AuthorID, &post.Caption, &post.ImageURL,
			&post.LikeCount, &post.CreatedAt, &post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("PostRepository.ListByAuthor - scan failed: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (pr *PostRepository) UpdateCaption(ctx context.Context, id int64, caption string) (*entities.Post, error) {
	query := `
		UPDATE posts SET caption = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, author_id, caption, image_url,
			(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id),
			created_at, updated_at`

	var post entities.Post
	err := pr.pool.QueryRow(ctx, query, id, caption).Scan(
		&post.ID, &post.AuthorID, &post.Caption, &post.ImageURL,
		&post.LikeCount, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("PostRepository.UpdateCaption - update failed: %w", err)
	}

	return &post, nil
}

// Delete removes the post and its dependents (likes, comments) in one
// transaction; the schema has no ON DELETE CASCADE.
func (pr *PostRepository) Delete(ctx context.Context, id int64) error {
	tx, err := pr.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("PostRepository.Delete - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("PostRepository.Delete - likes cleanup failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("PostRepository.Delete - comments cleanup failed: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("PostRepository.Delete - post delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (pr *PostRepository) CreateComment(ctx context.Context, comment *entities.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := pr.pool.QueryRow(ctx, query, comment.PostID, comment.AuthorID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("PostRepository.CreateComment - insert failed: %w", err)
	}

	return nil
}

func (pr *PostRepository) GetComment(ctx context.Context, id int64) (*entities.Comment, error) {
	query := `SELECT id, post_id, author_id, content, created_at, updated_at FROM comments WHERE id = $1`

	var comment entities.Comment
	err := pr.pool.QueryRow(ctx, query, id).Scan(
		&comment.ID, &comment.PostID, &comment.AuthorID,
		&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("PostRepository.GetComment - query failed: %w", err)
	}

	return &comment, nil
}

func (pr *PostRepository) ListComments(ctx context.Context, postID int64, limit int) ([]entities.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	rows, err := pr.pool.Query(ctx, query, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("PostRepository.ListComments - query failed: %w", err)
	}
	defer rows.Close()

	comments := make([]entities.Comment, 0)
	for rows.Next() {
		var comment entities.Comment
		if err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID,
			&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("PostRepository.ListComments - scan failed: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

func (pr *PostRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := pr.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("PostRepository.DeleteComment - delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Like inserts the (post, user) row; a duplicate like surfaces the unique
// constraint and is reported as domain.ErrConflict.
func (pr *PostRepository) Like(ctx context.Context, postID, userID int64) error {
	_, err := pr.pool.Exec(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`,
		postID, userID,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("PostRepository.Like - insert failed: %w", err)
	}
	return nil
}

// Unlike is idempotent: deleting an absent like is a no-op.
func (pr *PostRepository) Unlike(ctx context.Context, postID, userID int64) error {
	_, err := pr.pool.Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("PostRepository.Unlike - delete failed: %w", err)
	}
	return nil
}
