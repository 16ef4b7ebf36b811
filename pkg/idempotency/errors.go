package idempotency

import "errors"

var (
	// ErrMessageAlreadyProcessed indicates that a message with the same
	// ID was already recorded for this topic and consumer group.
	ErrMessageAlreadyProcessed = errors.New("message has already been processed")

	// ErrStorageFailure indicates that the deduplication storage is unavailable
	ErrStorageFailure = errors.New("deduplication storage is temporarily unavailable")
)
