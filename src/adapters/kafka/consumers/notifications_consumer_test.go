package consumers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/helper/env"
	"socialgraph/src/infra/kafka"
	"socialgraph/src/infra/postgres"
	"socialgraph/src/repositories"
	"socialgraph/src/test_artefacts/stubs"
	"socialgraph/src/test_artefacts/test_seeder"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ = Describe("NotificationsConsumer", func() {
	var (
		pool       *pgxpool.Pool
		testSeeder test_seeder.TestSeeder
		consumer   *NotificationsConsumer
		alice      entities.User
		bob        entities.User
		ctx        context.Context
		err        error
	)

	dbHost := env.MustGetString("TEST_DB_HOST")
	dbPort := env.GetString("TEST_DB_PORT", "5432")
	dbname := env.MustGetString("TEST_DB_NAME")
	dbUser := env.MustGetString("TEST_DB_USER")
	dbPassword := env.MustGetString("TEST_DB_PASSWORD")
	maxConnections := env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 25)

	eventMessage := func(event domain.SocialEvent) kafka.Message {
		value, marshalErr := json.Marshal(event)
		Expect(marshalErr).NotTo(HaveOccurred())
		return kafka.Message{Key: event.Kind, Value: value}
	}

	BeforeEach(func() {
		ctx = context.Background()

		pool, err = postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
		if err != nil {
			panic(err)
		}

		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
		consumer = NewNotificationsConsumer(logger, repositories.NewNotificationRepository(pool))

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

	Context("when a batch contains an unparseable message", func() {
		It("skips it and still materializes the rest", func() {
			// ARRANGE
			batch := []kafka.Message{
				{Key: "garbage", Value: []byte("{not json")},
				eventMessage(domain.SocialEvent{
					Kind:          domain.EventPostLiked,
					ActorID:       bob.ID,
					SubjectUserID: alice.ID,
					ResourceID:    42,
					OccurredAt:    time.Now().UTC(),
				}),
			}

			// ACT: a returned error would mark nothing and redeliver the
			// same bad payload forever.
			err := consumer.handleMessages(ctx, batch)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			count, err := testSeeder.CountRowsFor(ctx, "notifications", "user_id", alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Context("when the actor is the subject", func() {
		It("produces no notification", func() {
			// ARRANGE
			batch := []kafka.Message{
				eventMessage(domain.SocialEvent{
					Kind:          domain.EventPostCreated,
					ActorID:       alice.ID,
					SubjectUserID: alice.ID,
					OccurredAt:    time.Now().UTC(),
				}),
			}

			// ACT
			err := consumer.handleMessages(ctx, batch)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			count, err := testSeeder.CountRowsFor(ctx, "notifications", "user_id", alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})
})
