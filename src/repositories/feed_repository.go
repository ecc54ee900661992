package repositories

import (
	"context"
	"fmt"
	"time"

	"socialgraph/src/domain/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedRepository struct {
	pool *pgxpool.Pool
}

func NewFeedRepository(pool *pgxpool.Pool) *FeedRepository {
	return &FeedRepository{pool: pool}
}

const postColumns = `
	p.id, p.author_id, p.caption, p.image_url,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
	p.created_at, p.updated_at`

// PostsByAuthors returns up to limit posts authored by any of authorIDs,
// newest first. Keyset pagination on (created_at, id): when before is
// non-zero only strictly older rows qualify, so a page restart never skips
// or repeats posts even while new ones are being written.
func (fr *FeedRepository) PostsByAuthors(ctx context.Context, authorIDs []int64, beforeCreatedAt time.Time, beforeID int64, limit int) ([]entities.Post, error) {
	if len(authorIDs) == 0 {
		return []entities.Post{}, nil
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.author_id = ANY($1)
		  AND ($2::timestamptz IS NULL OR (p.created_at, p.id) < ($2, $3))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4`

	var cursorTime any
	if !beforeCreatedAt.IsZero() {
		cursorTime = beforeCreatedAt
	}

	rows, err := fr.pool.Query(ctx, query, authorIDs, cursorTime, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("FeedRepository.PostsByAuthors - query failed: %w", err)
	}
	defer rows.Close()

	posts := make([]entities.Post, 0, limit)
	for rows.Next() {
		var post entities.Post
		if err := rows.Scan(
			&post.ID, &post.AuthorID, &post.Caption, &post.ImageURL,
			&post.LikeCount, &post.CreatedAt, &post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("FeedRepository.PostsByAuthors - scan failed: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
