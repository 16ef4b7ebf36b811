package outbox

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	wmstesting "github.com/wms-platform/inventory-lifecycle/pkg/testing"
)

type fakeRepository struct {
	mu      sync.Mutex
	polls   int
	deletes int
}

func (f *fakeRepository) Save(ctx context.Context, event *OutboxEvent) error { return nil }

func (f *fakeRepository) SaveAll(ctx context.Context, events []*OutboxEvent) error { return nil }

func (f *fakeRepository) MarkPublished(ctx context.Context, eventID string) error { return nil }

func (f *fakeRepository) DeletePublished(ctx context.Context, olderThan int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeRepository) FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return nil, nil
}

func (f *fakeRepository) IncrementRetry(ctx context.Context, eventID, errorMsg string) error {
	return nil
}

func (f *fakeRepository) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *fakeRepository) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

func quietLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "outbox-test",
		Output:      io.Discard,
	})
}

func TestPublisherPollsRepositoryUntilStopped(t *testing.T) {
	repo := &fakeRepository{}
	publisher := NewPublisher(repo, nil, quietLogger(), nil, &PublisherConfig{
		PollInterval: 5 * time.Millisecond,
		BatchSize:    10,
	})

	require.NoError(t, publisher.Start(context.Background()))
	assert.True(t, publisher.IsRunning())
	assert.Error(t, publisher.Start(context.Background()), "second start must be rejected")

	wmstesting.AssertEventually(t, func() bool {
		return repo.pollCount() >= 2
	}, 2*time.Second, "publisher never polled the outbox")

	require.NoError(t, publisher.Stop())
	assert.False(t, publisher.IsRunning())
	assert.Error(t, publisher.Stop(), "second stop must be rejected")

	assert.Equal(t, map[string]int{"published": 0, "failed": 0}, publisher.Stats())
}

func TestPublisherCleansUpPublishedEvents(t *testing.T) {
	repo := &fakeRepository{}
	publisher := NewPublisher(repo, nil, quietLogger(), nil, &PublisherConfig{
		PollInterval:    5 * time.Millisecond,
		BatchSize:       10,
		CleanupInterval: 5 * time.Millisecond,
		Retention:       time.Hour,
	})

	require.NoError(t, publisher.Start(context.Background()))
	defer publisher.Stop()

	wmstesting.AssertEventually(t, func() bool {
		return repo.deleteCount() >= 1
	}, 2*time.Second, "publisher never ran the retention cleanup")
}

func TestPublisherStopsOnContextCancel(t *testing.T) {
	repo := &fakeRepository{}
	publisher := NewPublisher(repo, nil, quietLogger(), nil, &PublisherConfig{
		PollInterval: 5 * time.Millisecond,
		BatchSize:    10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, publisher.Start(ctx))
	cancel()

	select {
	case <-publisher.stoppedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop after context cancellation")
	}
}
