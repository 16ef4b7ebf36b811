// Package idempotency provides exactly-once processing support for Kafka
// consumers by recording processed CloudEvent IDs in MongoDB.
package idempotency

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProcessedMessage records a CloudEvent that has been handled by a
// consumer group, keyed by message ID, topic and group.
type ProcessedMessage struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	MessageID     string             `bson:"messageId"`
	Topic         string             `bson:"topic"`
	EventType     string             `bson:"eventType"`
	ConsumerGroup string             `bson:"consumerGroup"`
	ServiceID     string             `bson:"serviceId"`

	ProcessedAt time.Time `bson:"processedAt"`
	ExpiresAt   time.Time `bson:"expiresAt"`

	CorrelationID string `bson:"correlationId,omitempty"`
}
