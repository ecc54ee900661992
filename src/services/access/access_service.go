package access

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
)

// FriendshipChecker is the one graph question the gate needs.
type FriendshipChecker interface {
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
}

// AccessService is the visibility gate consulted before every read or
// write on friend-restricted resources (likes, follower counts, friend
// listings, chats, messages).
type AccessService struct {
	friendships FriendshipChecker
}

func NewAccessService(friendships FriendshipChecker) *AccessService {
	return &AccessService{friendships: friendships}
}

// CanAccess returns nil when requester may touch a resource owned by
// ownerID under the given capability, domain.ErrForbidden (or
// ErrUnauthorized for missing identity) otherwise.
func (s *AccessService) CanAccess(ctx context.Context, requester domain.Identity, capability domain.Capability, ownerID int64) error {
	if requester.UserID == 0 {
		return domain.ErrUnauthorized
	}

	switch capability {
	case domain.CapAuthenticated:
		return nil

	case domain.CapOwnerOrFriend:
		if requester.UserID == ownerID {
			return nil
		}

		isFriend, err := s.friendships.IsFriend(ctx, requester.UserID, ownerID)
		if err != nil {
			return fmt.Errorf("AccessService.CanAccess - friendship check failed: %w", err)
		}
		if !isFriend {
			return domain.ErrForbidden
		}
		return nil

	default:
		return fmt.Errorf("unknown capability %q: %w", capability, domain.ErrForbidden)
	}
}
