package idempotency

import (
	"context"
	"time"
)

// MessageRepository stores processed message records for Kafka consumers.
// Implementations must make MarkProcessed atomic so that two consumers
// racing on the same message see exactly one success.
type MessageRepository interface {
	// MarkProcessed records a message as processed. Returns
	// ErrMessageAlreadyProcessed when the message was recorded before.
	MarkProcessed(ctx context.Context, msg *ProcessedMessage) error

	// IsProcessed reports whether a message has been processed
	IsProcessed(ctx context.Context, messageID, topic, consumerGroup string) (bool, error)

	// Clean removes records that expired before the given time and
	// returns the number deleted.
	Clean(ctx context.Context, before time.Time) (int64, error)

	// EnsureIndexes creates the required indexes. Called on startup.
	EnsureIndexes(ctx context.Context) error
}
