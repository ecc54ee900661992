package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/repositories"
	"socialgraph/src/services/access"
	"socialgraph/src/services/events"
)

// ChatService handles direct messaging. Chats are created lazily on first
// message; every operation is friend-gated through the visibility gate and
// the sender is always the acting identity.
type ChatService struct {
	userRepo  *repositories.UserRepository
	chatRepo  *repositories.ChatRepository
	gate      *access.AccessService
	publisher *events.SocialEventPublisher
}

func NewChatService(
	userRepo *repositories.UserRepository,
	chatRepo *repositories.ChatRepository,
	gate *access.AccessService,
	publisher *events.SocialEventPublisher,
) *ChatService {
	return &ChatService{
		userRepo:  userRepo,
		chatRepo:  chatRepo,
		gate:      gate,
		publisher: publisher,
	}
}

// SendMessage delivers a direct message to otherUserID, creating the chat
// on first contact.
func (s *ChatService) SendMessage(ctx context.Context, actor domain.Identity, otherUserID int64, content string) (*entities.Message, error) {
	if actor.UserID == otherUserID {
		return nil, fmt.Errorf("cannot message yourself: %w", domain.ErrInvalidOperation)
	}
	if content == "" {
		return nil, fmt.Errorf("message content is required: %w", domain.ErrInvalidOperation)
	}

	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, otherUserID); err != nil {
		return nil, err
	}

	chatRecord, err := s.chatRepo.GetOrCreate(ctx, actor.UserID, otherUserID)
	if err != nil {
		return nil, err
	}

	message := &entities.Message{
		ChatID:   chatRecord.ID,
		SenderID: actor.UserID, // forced
		Content:  content,
	}

	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	s.publisher.PublishAsync(domain.SocialEvent{
		Kind:          domain.EventMessageSent,
		ActorID:       actor.UserID,
		SubjectUserID: otherUserID,
		ResourceID:    message.ID,
		OccurredAt:    time.Now().UTC(),
	})

	return message, nil
}

// ListMessages pages through the conversation with otherUserID, newest
// first. No chat yet means an empty page.
func (s *ChatService) ListMessages(ctx context.Context, actor domain.Identity, otherUserID int64, beforeID int64, limit int) ([]entities.Message, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, otherUserID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	chatRecord, err := s.chatRepo.GetBetween(ctx, actor.UserID, otherUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []entities.Message{}, nil
		}
		return nil, err
	}

	return s.chatRepo.ListMessages(ctx, chatRecord.ID, beforeID, limit)
}

// ListChats returns the actor's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, actor domain.Identity) ([]entities.Chat, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapAuthenticated, 0); err != nil {
		return nil, err
	}
	return s.chatRepo.ListFor(ctx, actor.UserID)
}
