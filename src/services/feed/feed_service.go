package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AuthorSource yields the graph memberships the feed is derived from.
type AuthorSource interface {
	FriendIDsOf(ctx context.Context, userID int64) ([]int64, error)
	FollowingIDsOf(ctx context.Context, userID int64) ([]int64, error)
}

// PostSource selects posts by author set with keyset pagination.
type PostSource interface {
	PostsByAuthors(ctx context.Context, authorIDs []int64, beforeCreatedAt time.Time, beforeID int64, limit int) ([]entities.Post, error)
}

// FeedService derives a user's news feed from the relationship graph:
// posts authored by anyone in friends ∪ following, newest first.
type FeedService struct {
	authors AuthorSource
	posts   PostSource
}

func NewFeedService(authors AuthorSource, posts PostSource) *FeedService {
	return &FeedService{authors: authors, posts: posts}
}

// ComposeFeed returns one page of the viewer's feed. An author who is both
// a friend and followed contributes each post once; an empty candidate set
// yields an empty page, not an error.
func (s *FeedService) ComposeFeed(ctx context.Context, viewer domain.Identity, pageToken string, limit int) (*domain.FeedPage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var beforeCreatedAt time.Time
	var beforeID int64
	if pageToken != "" {
		var err error
		beforeCreatedAt, beforeID, err = decodeCursor(pageToken)
		if err != nil {
			return nil, err
		}
	}

	friends, err := s.authors.FriendIDsOf(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("FeedService.ComposeFeed - friends lookup failed: %w", err)
	}

	following, err := s.authors.FollowingIDsOf(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("FeedService.ComposeFeed - following lookup failed: %w", err)
	}

	candidates := unionIDs(friends, following)
	if len(candidates) == 0 {
		return &domain.FeedPage{Posts: []entities.Post{}}, nil
	}

	// Fetch one extra row to learn whether another page exists.
	posts, err := s.posts.PostsByAuthors(ctx, candidates, beforeCreatedAt, beforeID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("FeedService.ComposeFeed - post selection failed: %w", err)
	}

	page := &domain.FeedPage{Posts: posts}
	if len(posts) > limit {
		page.Posts = posts[:limit]
		last := page.Posts[limit-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}

	return page, nil
}

// unionIDs merges the two id sets without duplicates, sorted for stable
// query plans.
func unionIDs(a, b []int64) []int64 {
	seen := make(map[int64]bool, len(a)+len(b))
	union := make([]int64, 0, len(a)+len(b))

	for _, ids := range [][]int64{a, b} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				union = append(union, id)
			}
		}
	}

	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
	return union
}
