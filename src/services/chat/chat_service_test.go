package chat_test

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
	"socialgraph/src/services/chat"
	"socialgraph/src/test_artefacts/stubs"
	"socialgraph/src/test_artefacts/test_seeder"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ = Describe("ChatService", func() {
	var (
		pool        *pgxpool.Pool
		testSeeder  test_seeder.TestSeeder
		chatService *chat.ChatService
		alice       entities.User
		bob         entities.User
		stranger    entities.User
		ctx         context.Context
		err         error
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
		chatRepository := repositories.NewChatRepository(pool)
		gate := access.NewAccessService(queryRepository)
		chatService = chat.NewChatService(userRepository, chatRepository, gate, nil)

		testSeeder = test_seeder.New(pool)
		testSeeder.TruncateTables(ctx)

		alice = stubs.NewUserStub().Get()
		bob = stubs.NewUserStub().Get()
		stranger = stubs.NewUserStub().Get()
		testSeeder.InsertUser(ctx, &alice)
		testSeeder.InsertUser(ctx, &bob)
		testSeeder.InsertUser(ctx, &stranger)
		testSeeder.InsertFriendshipPair(ctx, alice.ID, bob.ID)
	})

	AfterEach(func() {
		if pool != nil {
			pool.Close()
		}
	})

	Context("when sending the first message", func() {
		It("lazily creates the chat with a normalized pair", func() {
			// ACT
			message, err := chatService.SendMessage(ctx, domain.Identity{UserID: bob.ID}, alice.ID, "hey")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(message.SenderID).To(Equal(bob.ID))

			chats, err := chatService.ListChats(ctx, domain.Identity{UserID: alice.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(chats).To(HaveLen(1))
			Expect(chats[0].User1ID).To(BeNumerically("<", chats[0].User2ID))
			Expect(chats[0].HasParticipant(alice.ID)).To(BeTrue())
			Expect(chats[0].HasParticipant(bob.ID)).To(BeTrue())
		})

		It("reuses the chat regardless of who writes first", func() {
			// ARRANGE
			_, err := chatService.SendMessage(ctx, domain.Identity{UserID: alice.ID}, bob.ID, "hi bob")
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = chatService.SendMessage(ctx, domain.Identity{UserID: bob.ID}, alice.ID, "hi alice")
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			chats, err := chatService.ListChats(ctx, domain.Identity{UserID: alice.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(chats).To(HaveLen(1))

			messages, err := chatService.ListMessages(ctx, domain.Identity{UserID: alice.ID}, bob.ID, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(2))
		})
	})

	Context("when the pair is not friends", func() {
		It("forbids sending", func() {
			// ACT
			_, err := chatService.SendMessage(ctx, domain.Identity{UserID: stranger.ID}, alice.ID, "let me in")

			// ASSERT
			Expect(errors.Is(err, domain.ErrForbidden)).To(BeTrue())
		})
	})

	Context("when messaging yourself", func() {
		It("rejects the operation", func() {
			// ACT
			_, err := chatService.SendMessage(ctx, domain.Identity{UserID: alice.ID}, alice.ID, "note to self")

			// ASSERT
			Expect(errors.Is(err, domain.ErrInvalidOperation)).To(BeTrue())
		})
	})

	Context("when listing messages", func() {
		It("returns an empty list when no chat exists yet", func() {
			// ACT
			messages, err := chatService.ListMessages(ctx, domain.Identity{UserID: alice.ID}, bob.ID, 0, 10)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(BeEmpty())
		})

		It("pages newest first behind before_id", func() {
			// ARRANGE
			for _, content := range []string{"one", "two", "three"} {
				_, err := chatService.SendMessage(ctx, domain.Identity{UserID: alice.ID}, bob.ID, content)
				Expect(err).NotTo(HaveOccurred())
			}

			// ACT
			firstPage, err := chatService.ListMessages(ctx, domain.Identity{UserID: bob.ID}, alice.ID, 0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(firstPage).To(HaveLen(2))
			Expect(firstPage[0].Content).To(Equal("three"))

			secondPage, err := chatService.ListMessages(ctx, domain.Identity{UserID: bob.ID}, alice.ID, firstPage[1].ID, 2)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(secondPage).To(HaveLen(1))
			Expect(secondPage[0].Content).To(Equal("one"))
		})
	})
})
