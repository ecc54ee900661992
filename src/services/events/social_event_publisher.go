package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"socialgraph/src/domain"
	"socialgraph/src/infra/kafka"

	"github.com/google/uuid"
)

// SocialEventPublisher pushes social events (friend requests, likes,
// messages, new posts) to the events topic. Events are best-effort: they
// are published after the storage commit and a publish failure never
// fails the request that produced it.
type SocialEventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewSocialEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	topic string,
) *SocialEventPublisher {
	return &SocialEventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

// Publish sends a batch of events, keyed by subject user so one user's
// notifications stay ordered.
func (p *SocialEventPublisher) Publish(events ...domain.SocialEvent) error {
	if p == nil || p.kafkaClient == nil || len(events) == 0 {
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal social event", "error", err, "kind", event.Kind)
			continue
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:   strconv.FormatInt(event.SubjectUserID, 10),
			Value: eventBytes,
			Headers: map[string]string{
				"event_type":     event.Kind,
				"source_service": "socialgraph-api",
				"schema_version": "v1",
				"event_id":       uuid.NewString(),
			},
		})
	}

	if err := p.kafkaClient.Producer(kafkaMessages, p.topic); err != nil {
		return fmt.Errorf("failed to publish social events to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published social events", "topic", p.topic, "count", len(kafkaMessages))
	return nil
}

// PublishAsync fires Publish on a goroutine and only logs failures. This
// is what the request path uses.
func (p *SocialEventPublisher) PublishAsync(events ...domain.SocialEvent) {
	if p == nil || p.kafkaClient == nil || len(events) == 0 {
		return
	}

	go func() {
		if err := p.Publish(events...); err != nil {
			p.logger.Warn("Social event publish failed", "error", err)
		}
	}()
}
