package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/kafka"
	"socialgraph/src/repositories"
)

// NotificationsConsumer materializes social events into per-user
// notification rows. Self-directed events (the actor is the subject, e.g.
// your own post.created) produce no notification.
type NotificationsConsumer struct {
	logger           *slog.Logger
	notificationRepo *repositories.NotificationRepository
}

func NewNotificationsConsumer(
	logger *slog.Logger,
	notificationRepo *repositories.NotificationRepository,
) *NotificationsConsumer {
	return &NotificationsConsumer{
		logger:           logger,
		notificationRepo: notificationRepo,
	}
}

func (c *NotificationsConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting notifications consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.handleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

func (c *NotificationsConsumer) handleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Info("Processing messages batch", "count", len(messages))

	notifications := make([]entities.Notification, 0, len(messages))

	for _, msg := range messages {
		var event domain.SocialEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Redelivery cannot repair a malformed payload; failing here
			// would park the partition behind it.
			c.logger.Error("Skipping unparseable event",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			continue
		}

		if event.Kind == "" || event.SubjectUserID == 0 {
			c.logger.Warn("Skipping event with missing fields",
				"key", msg.Key,
				"kind", event.Kind,
				"subjectUserID", event.SubjectUserID)
			continue
		}

		if event.SubjectUserID == event.ActorID {
			continue
		}

		notifications = append(notifications, entities.Notification{
			UserID:    event.SubjectUserID,
			Kind:      event.Kind,
			ActorID:   event.ActorID,
			SubjectID: event.ResourceID,
			CreatedAt: event.OccurredAt,
		})
	}

	if len(notifications) == 0 {
		return nil
	}

	if err := c.notificationRepo.InsertBatch(ctx, notifications); err != nil {
		c.logger.Error("Failed to insert notifications",
			"error", err,
			"count", len(notifications))
		return fmt.Errorf("failed to insert notifications batch: %w", err)
	}

	c.logger.Info("Successfully processed messages batch",
		"messages", len(messages),
		"notifications", len(notifications))

	return nil
}
