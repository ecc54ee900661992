package feed_test

import (
	"context"
	"errors"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/services/feed"
	"socialgraph/src/test_artefacts/stubs"
)

// fakeGraph serves fixed friend/following id sets.
type fakeGraph struct {
	friends   map[int64][]int64
	following map[int64][]int64
}

func (g *fakeGraph) FriendIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	return g.friends[userID], nil
}

func (g *fakeGraph) FollowingIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	return g.following[userID], nil
}

// fakePosts applies the same keyset semantics as the SQL implementation
// over an in-memory slice.
type fakePosts struct {
	posts       []entities.Post
	lastAuthors []int64
}

func (p *fakePosts) PostsByAuthors(ctx context.Context, authorIDs []int64, beforeCreatedAt time.Time, beforeID int64, limit int) ([]entities.Post, error) {
	p.lastAuthors = authorIDs

	authorSet := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		authorSet[id] = true
	}

	var selected []entities.Post
	for _, post := range p.posts {
		if !authorSet[post.AuthorID] {
			continue
		}
		if !beforeCreatedAt.IsZero() {
			if post.CreatedAt.After(beforeCreatedAt) {
				continue
			}
			if post.CreatedAt.Equal(beforeCreatedAt) && post.ID >= beforeID {
				continue
			}
		}
		selected = append(selected, post)
	}

	sort.Slice(selected, func(i, j int) bool {
		if !selected[i].CreatedAt.Equal(selected[j].CreatedAt) {
			return selected[i].CreatedAt.After(selected[j].CreatedAt)
		}
		return selected[i].ID > selected[j].ID
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected, nil
}

var _ = Describe("ComposeFeed", func() {
	var (
		graph       *fakeGraph
		postSource  *fakePosts
		feedService *feed.FeedService
		ctx         context.Context
		viewer      domain.Identity
	)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		ctx = context.Background()
		viewer = domain.Identity{UserID: 1}
		graph = &fakeGraph{
			friends:   map[int64][]int64{},
			following: map[int64][]int64{},
		}
		postSource = &fakePosts{}
		feedService = feed.NewFeedService(graph, postSource)
	})

	Context("when the candidate set is empty", func() {
		It("returns an empty page, not an error", func() {
			// ACT
			page, err := feedService.ComposeFeed(ctx, viewer, "", 10)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Posts).To(BeEmpty())
			Expect(page.NextCursor).To(BeEmpty())
		})
	})

	Context("when an author is both a friend and followed", func() {
		It("deduplicates the author so each post appears once", func() {
			// ARRANGE
			graph.friends[1] = []int64{2, 3}
			graph.following[1] = []int64{3, 4}
			postSource.posts = []entities.Post{
				stubs.NewPostStub().WithID(10).WithAuthorID(3).WithCreatedAt(base).Get(),
			}

			// ACT
			page, err := feedService.ComposeFeed(ctx, viewer, "", 10)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Posts).To(HaveLen(1))
			Expect(postSource.lastAuthors).To(Equal([]int64{2, 3, 4}))
		})
	})

	Context("when paginating", func() {
		BeforeEach(func() {
			graph.following[1] = []int64{2}
			for i := int64(1); i <= 5; i++ {
				postSource.posts = append(postSource.posts,
					stubs.NewPostStub().
						WithID(i).
						WithAuthorID(2).
						WithCreatedAt(base.Add(time.Duration(i)*time.Minute)).
						Get(),
				)
			}
		})

		It("walks every post exactly once across pages", func() {
			// ACT
			first, err := feedService.ComposeFeed(ctx, viewer, "", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Posts).To(HaveLen(2))
			Expect(first.NextCursor).NotTo(BeEmpty())

			second, err := feedService.ComposeFeed(ctx, viewer, first.NextCursor, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Posts).To(HaveLen(2))
			Expect(second.NextCursor).NotTo(BeEmpty())

			third, err := feedService.ComposeFeed(ctx, viewer, second.NextCursor, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(third.Posts).To(HaveLen(1))
			Expect(third.NextCursor).To(BeEmpty())

			// ASSERT: newest first, no repeats, no gaps.
			var ids []int64
			for _, page := range [][]entities.Post{first.Posts, second.Posts, third.Posts} {
				for _, post := range page {
					ids = append(ids, post.ID)
				}
			}
			Expect(ids).To(Equal([]int64{5, 4, 3, 2, 1}))
		})

		It("rejects a malformed cursor", func() {
			// ACT
			_, err := feedService.ComposeFeed(ctx, viewer, "not-a-cursor", 2)

			// ASSERT
			Expect(errors.Is(err, domain.ErrInvalidCursor)).To(BeTrue())
		})
	})

	Context("when posts share a timestamp", func() {
		It("breaks ties by id without losing posts", func() {
			// ARRANGE
			graph.following[1] = []int64{2}
			for i := int64(1); i <= 3; i++ {
				postSource.posts = append(postSource.posts,
					stubs.NewPostStub().WithID(i).WithAuthorID(2).WithCreatedAt(base).Get(),
				)
			}

			// ACT
			first, err := feedService.ComposeFeed(ctx, viewer, "", 2)
			Expect(err).NotTo(HaveOccurred())

			second, err := feedService.ComposeFeed(ctx, viewer, first.NextCursor, 2)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			var ids []int64
			for _, post := range append(first.Posts, second.Posts...) {
				ids = append(ids, post.ID)
			}
			Expect(ids).To(Equal([]int64{3, 2, 1}))
		})
	})
})
