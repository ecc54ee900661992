package test_seeder

import (
	"context"
	"fmt"

	"socialgraph/src/domain/entities"
)

// InsertUser inserts a user row for testing, filling in the generated id.
func (ts TestSeeder) InsertUser(ctx context.Context, user *entities.User) {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, bio, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`

	err := ts.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Location,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertUser failed: %v", err))
	}
}

func (ts TestSeeder) InsertFollowEdge(ctx context.Context, followerID, followeeID int64) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO follow_edges (follower_id, followee_id) VALUES ($1, $2)`,
		followerID, followeeID,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertFollowEdge failed: %v", err))
	}
}

func (ts TestSeeder) InsertFriendRequest(ctx context.Context, request *entities.FriendRequest) {
	query := `
		INSERT INTO friend_requests (sender_id, receiver_id, status)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`

	err := ts.pool.QueryRow(ctx, query,
		request.SenderID,
		request.ReceiverID,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertFriendRequest failed: %v", err))
	}
}

// InsertFriendshipPair inserts the two reciprocal rows directly, bypassing
// the accept flow.
func (ts TestSeeder) InsertFriendshipPair(ctx context.Context, userID, friendID int64) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO friendships (user_id, friend_id, is_accepted) VALUES ($1, $2, TRUE), ($2, $1, TRUE)`,
		userID, friendID,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertFriendshipPair failed: %v", err))
	}
}

func (ts TestSeeder) InsertPost(ctx context.Context, post *entities.Post) {
	query := `
		INSERT INTO posts (author_id, caption, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		post.AuthorID,
		post.Caption,
		post.ImageURL,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertPost failed: %v", err))
	}
}

func (ts TestSeeder) InsertPostLike(ctx context.Context, postID, userID int64) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`,
		postID, userID,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertPostLike failed: %v", err))
	}
}

func (ts TestSeeder) InsertChat(ctx context.Context, chat *entities.Chat) {
	query := `
		INSERT INTO chats (user1_id, user2_id)
		VALUES (LEAST($1::bigint, $2::bigint), GREATEST($1::bigint, $2::bigint))
		RETURNING id, user1_id, user2_id, created_at, updated_at`

	err := ts.pool.QueryRow(ctx, query, chat.User1ID, chat.User2ID).Scan(
		&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertChat failed: %v", err))
	}
}

func (ts TestSeeder) InsertMessage(ctx context.Context, message *entities.Message) {
	query := `
		INSERT INTO messages (chat_id, sender_id, content)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`

	err := ts.pool.QueryRow(ctx, query,
		message.ChatID,
		message.SenderID,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertMessage failed: %v", err))
	}
}

func (ts TestSeeder) InsertNotification(ctx context.Context, notification *entities.Notification) {
	query := `
		INSERT INTO notifications (user_id, kind, actor_id, subject_id, read)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	err := ts.pool.QueryRow(ctx, query,
		notification.UserID,
		notification.Kind,
		notification.ActorID,
		notification.SubjectID,
		notification.Read,
	).Scan(&notification.ID, &notification.CreatedAt)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertNotification failed: %v", err))
	}
}
