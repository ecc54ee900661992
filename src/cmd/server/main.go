package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"socialgraph/src/adapters/http"
	"socialgraph/src/helper/env"
	"socialgraph/src/infra/kafka"
	"socialgraph/src/infra/postgres"
	"socialgraph/src/infra/redis"
	"socialgraph/src/infra/security"
	"socialgraph/src/repositories"
	"socialgraph/src/services/access"
	"socialgraph/src/services/chat"
	"socialgraph/src/services/events"
	"socialgraph/src/services/feed"
	"socialgraph/src/services/identity"
	"socialgraph/src/services/notifications"
	"socialgraph/src/services/posts"
	"socialgraph/src/services/social"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newSQLClient,
			newRedisClient,
			newKafkaClient,
			newJWTProvider,
			newArgon2Hasher,
			newUserRepository,
			newRelationshipQueryRepository,
			newCachedRelationshipRepository,
			newRelationshipWriteRepository,
			newFeedRepository,
			newPostRepository,
			newChatRepository,
			newNotificationRepository,
			newSocialEventPublisher,
			newAccessService,
			newIdentityService,
			newSocialService,
			newFeedService,
			newPostService,
			newChatService,
			newNotificationService,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func newRedisClient() *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTL := env.GetDuration("REDIS_DEFAULT_TTL", 120*time.Second)

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.GetString("KAFKA_API_GROUP_ID", "socialgraph-api")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

func newJWTProvider() (*security.JWTProvider, error) {
	secret := env.MustGetString("JWT_SECRET")
	accessTTL := env.GetDuration("JWT_ACCESS_TTL", 15*time.Minute)
	refreshTTL := env.GetDuration("JWT_REFRESH_TTL", 7*24*time.Hour)

	return security.NewJWTProvider(secret, accessTTL, refreshTTL)
}

func newArgon2Hasher() *security.Argon2Hasher {
	return security.NewArgon2Hasher(security.DefaultParams)
}

func newUserRepository(pool *pgxpool.Pool) *repositories.UserRepository {
	return repositories.NewUserRepository(pool)
}

func newRelationshipQueryRepository(pool *pgxpool.Pool) *repositories.RelationshipQueryRepository {
	return repositories.NewRelationshipQueryRepository(pool)
}

func newCachedRelationshipRepository(
	logger *slog.Logger,
	queryRepo *repositories.RelationshipQueryRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedRelationshipRepository {
	return repositories.NewCachedRelationshipRepository(logger, queryRepo, redisClient)
}

func newRelationshipWriteRepository(
	logger *slog.Logger,
	pool *pgxpool.Pool,
	cachedRepo *repositories.CachedRelationshipRepository,
) *repositories.RelationshipWriteRepository {
	return repositories.NewRelationshipWriteRepository(logger, pool, cachedRepo)
}

func newFeedRepository(pool *pgxpool.Pool) *repositories.FeedRepository {
	return repositories.NewFeedRepository(pool)
}

func newPostRepository(pool *pgxpool.Pool) *repositories.PostRepository {
	return repositories.NewPostRepository(pool)
}

func newChatRepository(pool *pgxpool.Pool) *repositories.ChatRepository {
	return repositories.NewChatRepository(pool)
}

func newNotificationRepository(pool *pgxpool.Pool) *repositories.NotificationRepository {
	return repositories.NewNotificationRepository(pool)
}

func newSocialEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.SocialEventPublisher {
	topic := env.GetString("KAFKA_SOCIAL_EVENTS_TOPIC", "social-events")
	return events.NewSocialEventPublisher(logger, kafkaClient, topic)
}

func newAccessService(queryRepo *repositories.RelationshipQueryRepository) *access.AccessService {
	return access.NewAccessService(queryRepo)
}

func newIdentityService(
	userRepo *repositories.UserRepository,
	cachedRepo *repositories.CachedRelationshipRepository,
	hasher *security.Argon2Hasher,
	tokens *security.JWTProvider,
) *identity.IdentityService {
	return identity.NewIdentityService(userRepo, cachedRepo, hasher, tokens)
}

func newSocialService(
	userRepo *repositories.UserRepository,
	queryRepo *repositories.RelationshipQueryRepository,
	cachedRepo *repositories.CachedRelationshipRepository,
	writeRepo *repositories.RelationshipWriteRepository,
	gate *access.AccessService,
	publisher *events.SocialEventPublisher,
) *social.SocialService {
	return social.NewSocialService(userRepo, queryRepo, cachedRepo, writeRepo, gate, publisher)
}

func newFeedService(
	cachedRepo *repositories.CachedRelationshipRepository,
	feedRepo *repositories.FeedRepository,
) *feed.FeedService {
	return feed.NewFeedService(cachedRepo, feedRepo)
}

func newPostService(
	postRepo *repositories.PostRepository,
	gate *access.AccessService,
	publisher *events.SocialEventPublisher,
) *posts.PostService {
	return posts.NewPostService(postRepo, gate, publisher)
}

func newChatService(
	userRepo *repositories.UserRepository,
	chatRepo *repositories.ChatRepository,
	gate *access.AccessService,
	publisher *events.SocialEventPublisher,
) *chat.ChatService {
	return chat.NewChatService(userRepo, chatRepo, gate, publisher)
}

func newNotificationService(notificationRepo *repositories.NotificationRepository) *notifications.NotificationService {
	return notifications.NewNotificationService(notificationRepo)
}

func newServer(
	logger *slog.Logger,
	identityService *identity.IdentityService,
	socialService *social.SocialService,
	feedService *feed.FeedService,
	postService *posts.PostService,
	chatService *chat.ChatService,
	notificationService *notifications.NotificationService,
) *http.Server {
	port := env.GetInt("SERVER_PORT", 8888)

	return http.NewServer(
		logger,
		port,
		identityService,
		socialService,
		feedService,
		postService,
		chatService,
		notificationService,
	)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *http.Server, kafkaClient *kafka.KafkaClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != nethttp.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			log.Println("Shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}

			if err := kafkaClient.Close(); err != nil {
				log.Printf("Failed to close Kafka client: %v", err)
			}

			log.Println("Server exited gracefully")
			return nil
		},
	})
}
