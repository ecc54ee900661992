package social_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/helper/env"
	"socialgraph/src/infra/postgres"
	"socialgraph/src/repositories"
	"socialgraph/src/services/access"
	"socialgraph/src/services/feed"
	"socialgraph/src/services/social"
	"socialgraph/src/test_artefacts/comparer"
	"socialgraph/src/test_artefacts/stubs"
	"socialgraph/src/test_artefacts/test_seeder"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ = Describe("FriendRequests", func() {
	var (
		pool          *pgxpool.Pool
		testSeeder    test_seeder.TestSeeder
		socialService *social.SocialService
		feedService   *feed.FeedService
		alice         entities.User
		bob           entities.User
		ctx           context.Context
		err           error
	)

	dbHost := env.MustGetString("TEST_DB_HOST")
	dbPort := env.GetString("TEST_DB_PORT", "5432")
	dbname := env.MustGetString("TEST_DB_NAME")
	dbUser := env.MustGetString("TEST_DB_USER")
	dbPassword := env.MustGetString("TEST_DB_PASSWORD")
	maxConnections := env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 25)

	BeforeEach(func() {
		ctx = context.Background()

		pool, err = postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
		if err != nil {
			panic(err)
		}

		userRepository := repositories.NewUserRepository(pool)
		queryRepository := repositories.NewRelationshipQueryRepository(pool)
		cachedRepository := repositories.NewCachedRelationshipRepository(nil, queryRepository, nil)
		writeRepository := repositories.NewRelationshipWriteRepository(nil, pool, cachedRepository)
		gate := access.NewAccessService(queryRepository)
		socialService = social.NewSocialService(userRepository, queryRepository, cachedRepository, writeRepository, gate, nil)
		feedService = feed.NewFeedService(cachedRepository, repositories.NewFeedRepository(pool))

		testSeeder = test_seeder.New(pool)
		testSeeder.TruncateTables(ctx)

		alice = stubs.NewUserStub().Get()
		bob = stubs.NewUserStub().Get()
		testSeeder.InsertUser(ctx, &alice)
		testSeeder.InsertUser(ctx, &bob)
	})

	AfterEach(func() {
		if pool != nil {
			pool.Close()
		}
	})

	Context("when sending a friend request", func() {
		When("no request exists between the pair", func() {
			It("creates a pending request", func() {
				// ACT
				request, err := socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(request.SenderID).To(Equal(alice.ID))
				Expect(request.ReceiverID).To(Equal(bob.ID))
				Expect(request.Status).To(Equal(entities.FriendRequestPending))

				// No friendship rows yet.
				friendships, err := testSeeder.SelectFriendshipsBetween(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendships).To(BeEmpty())
			})
		})

		When("sending to yourself", func() {
			It("rejects the operation", func() {
				// ACT
				_, err := socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, alice.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrInvalidOperation)).To(BeTrue())
			})
		})

		When("a pending request already exists in the same direction", func() {
			It("returns a conflict", func() {
				// ARRANGE
				_, err := socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				_, err = socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrConflict)).To(BeTrue())
			})
		})

		When("a pending request already exists in the opposite direction", func() {
			It("returns a conflict instead of creating a crossed pair", func() {
				// ARRANGE
				_, err := socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				_, err = socialService.SendRequest(ctx, domain.Identity{UserID: bob.ID}, alice.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrConflict)).To(BeTrue())
			})
		})

		When("a previous request was rejected", func() {
			It("allows the other user to try from their side", func() {
				// ARRANGE
				rejected := stubs.NewFriendRequestStub().
					WithSenderID(alice.ID).
					WithReceiverID(bob.ID).
					WithStatus(entities.FriendRequestRejected).
					Get()
				testSeeder.InsertFriendRequest(ctx, &rejected)

				// ACT
				request, err := socialService.SendRequest(ctx, domain.Identity{UserID: bob.ID}, alice.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(request.Status).To(Equal(entities.FriendRequestPending))
			})
		})
	})

	Context("when accepting a friend request", func() {
		var request *entities.FriendRequest

		BeforeEach(func() {
			request, err = socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		When("the receiver accepts", func() {
			It("materializes exactly two reciprocal friendship rows", func() {
				// ACT
				accepted, err := socialService.Accept(ctx, domain.Identity{UserID: bob.ID}, request.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(accepted.Status).To(Equal(entities.FriendRequestAccepted))

				// The returned request matches what was stored.
				stored, err := testSeeder.SelectFriendRequest(ctx, request.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(cmp.Diff(*accepted, stored, comparer.TimeWithinTolerance(1000))).To(BeEmpty())

				friendships, err := testSeeder.SelectFriendshipsBetween(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendships).To(HaveLen(2))
				Expect(friendships[0].UserID).To(Equal(friendships[1].FriendID))
				Expect(friendships[0].FriendID).To(Equal(friendships[1].UserID))

				isFriend, err := socialService.IsFriend(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(isFriend).To(BeTrue())
			})
		})

		When("someone other than the receiver accepts", func() {
			It("is unauthorized and the request stays pending", func() {
				// ACT
				_, err := socialService.Accept(ctx, domain.Identity{UserID: alice.ID}, request.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrUnauthorized)).To(BeTrue())

				stored, err := testSeeder.SelectFriendRequest(ctx, request.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.Status).To(Equal(entities.FriendRequestPending))
			})
		})

		When("accepting twice", func() {
			It("fails the second accept with an invalid state", func() {
				// ARRANGE
				_, err := socialService.Accept(ctx, domain.Identity{UserID: bob.ID}, request.ID)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				_, err = socialService.Accept(ctx, domain.Identity{UserID: bob.ID}, request.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrInvalidState)).To(BeTrue())

				// Still exactly one reciprocal pair.
				friendships, selectErr := testSeeder.SelectFriendshipsBetween(ctx, alice.ID, bob.ID)
				Expect(selectErr).NotTo(HaveOccurred())
				Expect(friendships).To(HaveLen(2))
			})
		})

		When("the request does not exist", func() {
			It("returns not found", func() {
				// ACT
				_, err := socialService.Accept(ctx, domain.Identity{UserID: bob.ID}, 999999)

				// ASSERT
				Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
			})
		})

		When("crossed pending requests exist in both directions", func() {
			It("lets both sides accept and keeps one reciprocal pair", func() {
				// ARRANGE: a concurrent send can slip past the duplicate
				// check and leave a second pending request in the opposite
				// direction, so seed it straight into the table.
				crossed := stubs.NewFriendRequestStub().
					WithSenderID(bob.ID).
					WithReceiverID(alice.ID).
					WithStatus(entities.FriendRequestPending).
					Get()
				testSeeder.InsertFriendRequest(ctx, &crossed)

				_, err := socialService.Accept(ctx, domain.Identity{UserID: bob.ID}, request.ID)
				Expect(err).NotTo(HaveOccurred())

				// ACT: accepting the crossed request finds the friendship
				// rows already in place.
				accepted, err := socialService.Accept(ctx, domain.Identity{UserID: alice.ID}, crossed.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(accepted.Status).To(Equal(entities.FriendRequestAccepted))

				stored, err := testSeeder.SelectFriendRequest(ctx, crossed.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.Status).To(Equal(entities.FriendRequestAccepted))

				friendships, err := testSeeder.SelectFriendshipsBetween(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendships).To(HaveLen(2))
			})
		})
	})

	Context("when rejecting a friend request", func() {
		var request *entities.FriendRequest

		BeforeEach(func() {
			request, err = socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		When("the receiver rejects", func() {
			It("resolves the request without creating friendship rows", func() {
				// ACT
				rejected, err := socialService.Reject(ctx, domain.Identity{UserID: bob.ID}, request.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(rejected.Status).To(Equal(entities.FriendRequestRejected))

				friendships, err := testSeeder.SelectFriendshipsBetween(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(friendships).To(BeEmpty())
			})
		})

		When("someone other than the receiver rejects", func() {
			It("is unauthorized", func() {
				// ACT
				_, err := socialService.Reject(ctx, domain.Identity{UserID: alice.ID}, request.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrUnauthorized)).To(BeTrue())
			})
		})
	})

	Context("when listing pending requests", func() {
		It("serves the receiver's view with the sender username", func() {
			// ARRANGE
			request, err := socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			pending, err := socialService.PendingRequests(ctx, domain.Identity{UserID: bob.ID})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal(request.ID))
			Expect(pending[0].SenderUsername).To(Equal(alice.Username))
			Expect(pending[0].Status).To(Equal(entities.FriendRequestPending))
		})
	})

	Context("request to accept to feed, end to end", func() {
		It("makes the new friend's posts visible in the feed", func() {
			// ARRANGE: bob authored a post before the friendship existed.
			post := stubs.NewPostStub().
				WithAuthorID(bob.ID).
				WithCreatedAt(time.Now().UTC().Add(-time.Hour)).
				Get()
			testSeeder.InsertPost(ctx, &post)

			emptyPage, err := feedService.ComposeFeed(ctx, domain.Identity{UserID: alice.ID}, "", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(emptyPage.Posts).To(BeEmpty())

			request, err := socialService.SendRequest(ctx, domain.Identity{UserID: alice.ID}, bob.ID)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = socialService.Accept(ctx, domain.Identity{UserID: bob.ID}, request.ID)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT: both sides list each other as friends.
			aliceFriends, err := socialService.FriendsOf(ctx, domain.Identity{UserID: alice.ID}, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(aliceFriends).To(Equal([]int64{bob.ID}))

			bobFriends, err := socialService.FriendsOf(ctx, domain.Identity{UserID: bob.ID}, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(bobFriends).To(Equal([]int64{alice.ID}))

			// And the post shows up in alice's feed exactly once.
			page, err := feedService.ComposeFeed(ctx, domain.Identity{UserID: alice.ID}, "", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Posts).To(HaveLen(1))
			Expect(page.Posts[0].ID).To(Equal(post.ID))
			Expect(page.NextCursor).To(BeEmpty())
		})
	})
})
