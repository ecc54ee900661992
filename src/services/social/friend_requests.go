package social

import (
	"context"
	"fmt"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

// SendRequest starts the friendship handshake. Duplicates are checked in
// both directions so a crossed pair (A→B pending while B→A pends) cannot
// arise; the unique constraint on (sender, receiver) backs the same-pair
// race, so a constraint violation here is an expected Conflict.
func (s *SocialService) SendRequest(ctx context.Context, actor domain.Identity, receiverID int64) (*entities.FriendRequest, error) {
	if actor.UserID == receiverID {
		return nil, fmt.Errorf("cannot send a friend request to yourself: %w", domain.ErrInvalidOperation)
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	open, err := s.queryRepo.HasOpenRequestBetween(ctx, actor.UserID, receiverID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("a friend request between these users already exists: %w", domain.ErrConflict)
	}

	request, err := s.writeRepo.CreateFriendRequest(ctx, actor.UserID, receiverID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishAsync(domain.SocialEvent{
		Kind:          domain.EventFriendRequestSent,
		ActorID:       actor.UserID,
		SubjectUserID: receiverID,
		ResourceID:    request.ID,
		OccurredAt:    time.Now().UTC(),
	})

	return request, nil
}

// Accept resolves a pending request and materializes the friendship pair.
// Only the receiver may accept; anyone else gets Unauthorized and the
// request stays pending. The pair insert and the status flip commit
// together — see RelationshipWriteRepository.AcceptRequest.
func (s *SocialService) Accept(ctx context.Context, actor domain.Identity, requestID int64) (*entities.FriendRequest, error) {
	request, err := s.queryRepo.GetFriendRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ReceiverID != actor.UserID {
		return nil, fmt.Errorf("only the receiver can accept a friend request: %w", domain.ErrUnauthorized)
	}

	accepted, err := s.writeRepo.AcceptRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishAsync(domain.SocialEvent{
		Kind:          domain.EventFriendRequestAccepted,
		ActorID:       actor.UserID,
		SubjectUserID: accepted.SenderID,
		ResourceID:    accepted.ID,
		OccurredAt:    time.Now().UTC(),
	})

	return accepted, nil
}

// Reject is the terminal no-side-effect transition. Same guards as Accept.
func (s *SocialService) Reject(ctx context.Context, actor domain.Identity, requestID int64) (*entities.FriendRequest, error) {
	request, err := s.queryRepo.GetFriendRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ReceiverID != actor.UserID {
		return nil, fmt.Errorf("only the receiver can reject a friend request: %w", domain.ErrUnauthorized)
	}

	return s.writeRepo.RejectRequest(ctx, requestID)
}

// PendingRequests lists the requests waiting on the actor.
func (s *SocialService) PendingRequests(ctx context.Context, actor domain.Identity) ([]domain.FriendRequestView, error) {
	return s.queryRepo.PendingRequestsFor(ctx, actor.UserID)
}
