package social

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/repositories"
	"socialgraph/src/services/access"
	"socialgraph/src/services/events"
)

// SocialService owns the relationship graph: follow edges, friendships and
// the friend-request state machine. Every operation takes the acting
// identity explicitly; friend-restricted listings consult the visibility
// gate before touching the graph.
type SocialService struct {
	userRepo   *repositories.UserRepository
	queryRepo  *repositories.RelationshipQueryRepository
	cachedRepo *repositories.CachedRelationshipRepository
	writeRepo  *repositories.RelationshipWriteRepository
	gate       *access.AccessService
	publisher  *events.SocialEventPublisher
}

func NewSocialService(
	userRepo *repositories.UserRepository,
	queryRepo *repositories.RelationshipQueryRepository,
	cachedRepo *repositories.CachedRelationshipRepository,
	writeRepo *repositories.RelationshipWriteRepository,
	gate *access.AccessService,
	publisher *events.SocialEventPublisher,
) *SocialService {
	return &SocialService{
		userRepo:   userRepo,
		queryRepo:  queryRepo,
		cachedRepo: cachedRepo,
		writeRepo:  writeRepo,
		gate:       gate,
		publisher:  publisher,
	}
}

// Follow creates the directed edge actor -> followee. Following yourself
// is rejected; following twice is a no-op success.
func (s *SocialService) Follow(ctx context.Context, actor domain.Identity, followeeID int64) error {
	if actor.UserID == followeeID {
		return fmt.Errorf("cannot follow yourself: %w", domain.ErrInvalidOperation)
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	return s.writeRepo.Follow(ctx, actor.UserID, followeeID)
}

func (s *SocialService) Unfollow(ctx context.Context, actor domain.Identity, followeeID int64) error {
	return s.writeRepo.Unfollow(ctx, actor.UserID, followeeID)
}

// FriendsOf lists the accepted friendships of userID, served through the
// cache. Restricted to userID and their friends.
func (s *SocialService) FriendsOf(ctx context.Context, actor domain.Identity, userID int64) ([]int64, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, userID); err != nil {
		return nil, err
	}
	return s.cachedRepo.FriendIDsOf(ctx, userID)
}

func (s *SocialService) FollowingOf(ctx context.Context, actor domain.Identity, userID int64) ([]int64, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, userID); err != nil {
		return nil, err
	}
	return s.cachedRepo.FollowingIDsOf(ctx, userID)
}

// FollowersOf is the reverse edge listing; it is not cached because the
// follower set of a popular user is too large to keep hot usefully.
func (s *SocialService) FollowersOf(ctx context.Context, actor domain.Identity, userID int64) ([]int64, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, userID); err != nil {
		return nil, err
	}
	return s.queryRepo.FollowerIDsOf(ctx, userID)
}

func (s *SocialService) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.queryRepo.IsFriend(ctx, userID, otherID)
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.queryRepo.IsFollowing(ctx, followerID, followeeID)
}

func (s *SocialService) FollowersCount(ctx context.Context, actor domain.Identity, userID int64) (int64, error) {
	if err := s.gate.CanAccess(ctx, actor, domain.CapOwnerOrFriend, userID); err != nil {
		return 0, err
	}
	return s.cachedRepo.FollowersCount(ctx, userID)
}
