package social_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/helper/env"
	"socialgraph/src/infra/postgres"
	"socialgraph/src/repositories"
	"socialgraph/src/services/access"
	"socialgraph/src/services/social"
	"socialgraph/src/test_artefacts/stubs"
	"socialgraph/src/test_artefacts/test_seeder"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ = Describe("Follow", func() {
	var (
		pool          *pgxpool.Pool
		testSeeder    test_seeder.TestSeeder
		socialService *social.SocialService
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
		// nil redis: the cached repository falls through to the query
		// repository, so these tests need no cluster.
		cachedRepository := repositories.NewCachedRelationshipRepository(nil, queryRepository, nil)
		writeRepository := repositories.NewRelationshipWriteRepository(nil, pool, cachedRepository)
		gate := access.NewAccessService(queryRepository)
		socialService = social.NewSocialService(userRepository, queryRepository, cachedRepository, writeRepository, gate, nil)

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

	Context("when following another user", func() {
		When("the followee exists and is someone else", func() {
			It("creates exactly one directed edge", func() {
				// ACT
				err := socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())

				count, err := testSeeder.CountFollowEdges(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(int64(1)))

				// The reverse direction does not exist.
				reverse, err := testSeeder.CountFollowEdges(ctx, bob.ID, alice.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(reverse).To(BeZero())
			})
		})

		When("following the same user twice", func() {
			It("succeeds both times and keeps a single edge", func() {
				// ARRANGE
				Expect(socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)).To(Succeed())

				// ACT
				err := socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())

				count, err := testSeeder.CountFollowEdges(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(int64(1)))
			})
		})

		When("following yourself", func() {
			It("rejects the operation", func() {
				// ACT
				err := socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, alice.ID)

				// ASSERT
				Expect(errors.Is(err, domain.ErrInvalidOperation)).To(BeTrue())
			})
		})

		When("the followee does not exist", func() {
			It("returns not found", func() {
				// ACT
				err := socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, 999999)

				// ASSERT
				Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
			})
		})
	})

	Context("when unfollowing", func() {
		When("an edge exists", func() {
			It("removes it and reports not-following afterwards", func() {
				// ARRANGE
				Expect(socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)).To(Succeed())

				// ACT
				err := socialService.Unfollow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())

				following, err := socialService.IsFollowing(ctx, alice.ID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(following).To(BeFalse())
			})
		})

		When("no edge exists", func() {
			It("is a no-op success", func() {
				// ACT
				err := socialService.Unfollow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Context("when listing the graph", func() {
		It("serves following ids and follower counts", func() {
			// ARRANGE
			carol := stubs.NewUserStub().Get()
			testSeeder.InsertUser(ctx, &carol)

			Expect(socialService.Follow(ctx, domain.Identity{UserID: alice.ID}, bob.ID)).To(Succeed())
			Expect(socialService.Follow(ctx, domain.Identity{UserID: carol.ID}, bob.ID)).To(Succeed())

			// ACT
			following, err := socialService.FollowingOf(ctx, domain.Identity{UserID: alice.ID}, alice.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(following).To(Equal([]int64{bob.ID}))

			count, err := socialService.FollowersCount(ctx, domain.Identity{UserID: bob.ID}, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})

		It("forbids follower counts of strangers", func() {
			// ACT
			_, err := socialService.FollowersCount(ctx, domain.Identity{UserID: alice.ID}, bob.ID)

			// ASSERT
			Expect(errors.Is(err, domain.ErrForbidden)).To(BeTrue())
		})
	})
})
