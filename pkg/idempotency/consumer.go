package idempotency

import (
	"context"
	"log/slog"
	"time"

	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
)

// DefaultRetentionPeriod is how long processed message IDs are retained
const DefaultRetentionPeriod = 24 * time.Hour

// EventHandler mirrors kafka.EventHandler so consumers can wrap handlers
// without importing the kafka package here.
type EventHandler func(ctx context.Context, event *cloudevents.WMSCloudEvent) error

// ConsumerConfig holds configuration for consumer message deduplication
type ConsumerConfig struct {
	ServiceName     string
	Topic           string
	ConsumerGroup   string
	Repository      MessageRepository
	RetentionPeriod time.Duration
}

// DefaultConsumerConfig returns a consumer deduplication configuration
// with the default retention period.
func DefaultConsumerConfig(serviceName, topic, consumerGroup string, repository MessageRepository) *ConsumerConfig {
	return &ConsumerConfig{
		ServiceName:     serviceName,
		Topic:           topic,
		ConsumerGroup:   consumerGroup,
		Repository:      repository,
		RetentionPeriod: DefaultRetentionPeriod,
	}
}

// DeduplicatingHandler wraps an event handler so each CloudEvent ID is
// processed at most once per topic and consumer group. Handler errors are
// not recorded, leaving the message eligible for redelivery.
func DeduplicatingHandler(config *ConsumerConfig, handler EventHandler) EventHandler {
	return func(ctx context.Context, event *cloudevents.WMSCloudEvent) error {
		processed, err := config.Repository.IsProcessed(ctx, event.ID, config.Topic, config.ConsumerGroup)
		if err != nil {
			slog.Error("Failed to check if message is processed",
				"error", err,
				"messageId", event.ID,
				"topic", config.Topic,
				"eventType", event.Type,
				"service", config.ServiceName,
			)
			return err
		}

		if processed {
			slog.Info("Duplicate message skipped",
				"messageId", event.ID,
				"topic", config.Topic,
				"eventType", event.Type,
				"service", config.ServiceName,
			)
			return nil
		}

		if err := handler(ctx, event); err != nil {
			return err
		}

		msg := &ProcessedMessage{
			MessageID:     event.ID,
			Topic:         config.Topic,
			EventType:     event.Type,
			ConsumerGroup: config.ConsumerGroup,
			ServiceID:     config.ServiceName,
			ProcessedAt:   time.Now().UTC(),
			ExpiresAt:     time.Now().UTC().Add(config.RetentionPeriod),
			CorrelationID: event.CorrelationID,
		}

		if err := config.Repository.MarkProcessed(ctx, msg); err != nil {
			if err == ErrMessageAlreadyProcessed {
				// Lost a race with a concurrent consumer; the message
				// was handled, so this is success.
				slog.Warn("Message was processed concurrently",
					"messageId", event.ID,
					"topic", config.Topic,
					"eventType", event.Type,
					"service", config.ServiceName,
				)
				return nil
			}

			slog.Error("Failed to mark message as processed",
				"error", err,
				"messageId", event.ID,
				"topic", config.Topic,
				"eventType", event.Type,
				"service", config.ServiceName,
			)
			return err
		}

		return nil
	}
}
