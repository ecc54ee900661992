package posts

import (
	"context"
	"fmt"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/repositories"
	"socialgraph/src/services/access"
	"socialgraph/src/services/events"
)

// PostService covers the owned-content surface: posts, comments and
// likes. Author and liker fields are always forced to the acting
// identity; client-supplied owner fields are never trusted.
type PostService struct {
	postRepo  *repositories.PostRepository
	gate      *access.AccessService
	publisher *events.SocialEventPublisher
}

func NewPostService(
	postRepo *repositories.PostRepository,
	gate *access.AccessService,
	publisher *events.SocialEventPublisher,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		gate:      gate,
		publisher: publisher,
	}
}

func (s *PostService) Create(ctx context.Context, actor domain.Identity, caption, imageURL string) (*entities.Post, error) {
	if caption == "" {
		return nil, fmt.Errorf("caption is required: %w", domain.ErrInvalidOperation)
	}

	post := &entities.Post{
		AuthorID: actor.UserID, // forced, regardless of payload
		Caption:  caption,
		ImageURL: imageURL,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.publisher.PublishAsync(domain.SocialEvent{
		Kind:          domain.EventPostCreated,
		ActorID:       actor.UserID,
		SubjectUserID: actor.UserID,
		ResourceID:    post.ID,
		OccurredAt:    time.Now().UTC(),
	})

	return post, nil
}

func (s *PostService) Get(ctx context.Context, actor domain.Identity, postID int64) (*entities.Post, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapAuthenticated, 0); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) ListByAuthor(ctx context.Context, actor domain.Identity, authorID int64, limit int) ([]entities.Post, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapAuthenticated, 0); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.postRepo.ListByAuthor(ctx, authorID, limit)
}

// UpdateCaption is owner-only.
func (s *PostService) UpdateCaption(ctx context.Context, actor domain.Identity, postID int64, caption string) (*entities.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.UserID {
		return nil, fmt.Errorf("only the author can edit a post: %w", domain.ErrForbidden)
	}

	return s.postRepo.UpdateCaption(ctx, postID, caption)
}

// Delete is owner-only and removes likes and comments with the post.
func (s *PostService) Delete(ctx context.Context, actor domain.Identity, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.UserID {
		return fmt.Errorf("only the author can delete a post: %w", domain.ErrForbidden)
	}

	return s.postRepo.Delete(ctx, postID)
}

// Like is friend-gated on the post's author. Liking twice is a Conflict.
func (s *PostService) Like(ctx context.Context, actor domain.Identity, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, post.AuthorID); err != nil {
		return err
	}

	if err := s.postRepo.Like(ctx, postID, actor.UserID); err != nil {
		return err
	}

	s.publisher.PublishAsync(domain.SocialEvent{
		Kind:          domain.EventPostLiked,
		ActorID:       actor.UserID,
		SubjectUserID: post.AuthorID,
		ResourceID:    post.ID,
		OccurredAt:    time.Now().UTC(),
	})

	return nil
}

// Unlike mirrors Like but is idempotent.
func (s *PostService) Unlike(ctx context.Context, actor domain.Identity, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, post.AuthorID); err != nil {
		return err
	}

	return s.postRepo.Unlike(ctx, postID, actor.UserID)
}

// Comment creation is authenticated-only; the author field is forced.
func (s *PostService) Comment(ctx context.Context, actor domain.Identity, postID int64, content string) (*entities.Comment, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapAuthenticated, 0); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("comment content is required: %w", domain.ErrInvalidOperation)
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &entities.Comment{
		PostID:   postID,
		AuthorID: actor.UserID, // forced
		Content:  content,
	}

	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *PostService) ListComments(ctx context.Context, actor domain.Identity, postID int64, limit int) ([]entities.Comment, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapAuthenticated, 0); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.postRepo.ListComments(ctx, postID, limit)
}

// DeleteComment is owner-only (the comment's author).
func (s *PostService) DeleteComment(ctx context.Context, actor domain.Identity, commentID int64) error {
	comment, err := s.postRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.UserID {
		return fmt.Errorf("only the author can delete a comment: %w", domain.ErrForbidden)
	}

	return s.postRepo.DeleteComment(ctx, commentID)
}
