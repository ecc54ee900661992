package identity_test

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
	"socialgraph/src/infra/security"
	"socialgraph/src/repositories"
	"socialgraph/src/services/identity"
	"socialgraph/src/test_artefacts/stubs"
	"socialgraph/src/test_artefacts/test_seeder"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ = Describe("IdentityService", func() {
	var (
		pool            *pgxpool.Pool
		testSeeder      test_seeder.TestSeeder
		identityService *identity.IdentityService
		ctx             context.Context
		err             error
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
		// Low-cost argon2 parameters keep the suite fast.
		hasher := security.NewArgon2Hasher(&security.Argon2Params{
			Memory:      8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		})
		tokens, err := security.NewJWTProvider("integration-test-secret-0123456789abcdef", 15*time.Minute, 24*time.Hour)
		if err != nil {
			panic(err)
		}

		identityService = identity.NewIdentityService(userRepository, cachedRepository, hasher, tokens)

		testSeeder = test_seeder.New(pool)
		testSeeder.TruncateTables(ctx)
	})

	AfterEach(func() {
		if pool != nil {
			pool.Close()
		}
	})

	register := func(username string) *entities.User {
		user, err := identityService.Register(ctx, identity.RegisterInput{
			Username: username,
			Email:    username + "@example.com",
			Password: "correct horse battery",
		})
		Expect(err).NotTo(HaveOccurred())
		return user
	}

	Context("when registering", func() {
		It("stores the user with a hashed password", func() {
			// ACT
			user := register("alice")

			// ASSERT
			Expect(user.ID).NotTo(BeZero())
			Expect(user.PasswordHash).NotTo(BeEmpty())
			Expect(user.PasswordHash).NotTo(ContainSubstring("correct horse battery"))
		})

		It("rejects short passwords", func() {
			// ACT
			_, err := identityService.Register(ctx, identity.RegisterInput{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "short",
			})

			// ASSERT
			Expect(errors.Is(err, domain.ErrInvalidOperation)).To(BeTrue())
		})

		It("rejects a duplicate username with a conflict", func() {
			// ARRANGE
			register("alice")

			// ACT
			_, err := identityService.Register(ctx, identity.RegisterInput{
				Username: "alice",
				Email:    "other@example.com",
				Password: "correct horse battery",
			})

			// ASSERT
			Expect(errors.Is(err, domain.ErrConflict)).To(BeTrue())
		})
	})

	Context("when authenticating", func() {
		BeforeEach(func() {
			register("alice")
		})

		It("issues a token pair for valid credentials", func() {
			// ACT
			pair, err := identityService.Authenticate(ctx, "alice", "correct horse battery")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.AccessToken).NotTo(BeEmpty())
			Expect(pair.RefreshToken).NotTo(BeEmpty())

			actor, err := identityService.IdentityFromToken(pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(actor.Username).To(Equal("alice"))
		})

		It("rejects a wrong password", func() {
			// ACT
			_, err := identityService.Authenticate(ctx, "alice", "wrong password!")

			// ASSERT
			Expect(errors.Is(err, domain.ErrUnauthorized)).To(BeTrue())
		})

		It("rejects an unknown user with the same error as a wrong password", func() {
			// ACT
			_, err := identityService.Authenticate(ctx, "nobody", "correct horse battery")

			// ASSERT
			Expect(errors.Is(err, domain.ErrUnauthorized)).To(BeTrue())
		})

		It("refuses the refresh token as an access token", func() {
			// ARRANGE
			pair, err := identityService.Authenticate(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = identityService.IdentityFromToken(pair.RefreshToken)

			// ASSERT
			Expect(errors.Is(err, domain.ErrUnauthorized)).To(BeTrue())
		})
	})

	Context("when refreshing tokens", func() {
		It("exchanges a refresh token for a fresh pair", func() {
			// ARRANGE
			register("alice")
			pair, err := identityService.Authenticate(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			fresh, err := identityService.Refresh(ctx, pair.RefreshToken)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.AccessToken).NotTo(BeEmpty())
		})

		It("revokes refresh tokens of deleted accounts", func() {
			// ARRANGE
			user := register("alice")
			pair, err := identityService.Authenticate(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())

			Expect(identityService.DeleteSelf(ctx, domain.Identity{UserID: user.ID})).To(Succeed())

			// ACT
			_, err = identityService.Refresh(ctx, pair.RefreshToken)

			// ASSERT
			Expect(errors.Is(err, domain.ErrUnauthorized)).To(BeTrue())
		})
	})

	Context("when updating the profile", func() {
		It("changes only the provided fields", func() {
			// ARRANGE
			user := register("alice")
			bio := "gopher"

			// ACT
			updated, err := identityService.UpdateSelf(ctx, domain.Identity{UserID: user.ID}, domain.ProfileUpdate{Bio: &bio})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Bio).To(Equal("gopher"))
			Expect(updated.Username).To(Equal(user.Username))
			Expect(updated.Email).To(Equal(user.Email))
		})
	})

	Context("when deleting an account", func() {
		It("removes the user and every dependent row in one pass", func() {
			// ARRANGE
			alice := register("alice")
			bob := register("bob")

			testSeeder.InsertFollowEdge(ctx, alice.ID, bob.ID)
			testSeeder.InsertFriendshipPair(ctx, alice.ID, bob.ID)

			post := stubs.NewPostStub().WithAuthorID(alice.ID).WithCreatedAt(time.Now().UTC()).Get()
			testSeeder.InsertPost(ctx, &post)
			testSeeder.InsertPostLike(ctx, post.ID, bob.ID)

			// ACT
			err := identityService.DeleteSelf(ctx, domain.Identity{UserID: alice.ID})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			_, err = identityService.GetSelf(ctx, domain.Identity{UserID: alice.ID})
			Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())

			for table, column := range map[string]string{
				"posts":        "author_id",
				"follow_edges": "follower_id",
				"friendships":  "user_id",
			} {
				count, err := testSeeder.CountRowsFor(ctx, table, column, alice.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(BeZero(), "expected no %s rows", table)
			}

			// Bob's like went away with the post.
			likes, err := testSeeder.CountRowsFor(ctx, "post_likes", "user_id", bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(likes).To(BeZero())

			// Bob himself is untouched.
			_, err = identityService.GetSelf(ctx, domain.Identity{UserID: bob.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("deleting twice reports not found", func() {
			// ARRANGE
			alice := register("alice")
			Expect(identityService.DeleteSelf(ctx, domain.Identity{UserID: alice.ID})).To(Succeed())

			// ACT
			err := identityService.DeleteSelf(ctx, domain.Identity{UserID: alice.ID})

			// ASSERT
			Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
		})
	})
})
