package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wms-platform/inventory-lifecycle/pkg/kafka"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/metrics"
)

// Publisher publishes events from the outbox to Kafka
type Publisher struct {
	repo            Repository
	producer        *kafka.InstrumentedProducer
	logger          *logging.Logger
	metrics         *metrics.Metrics
	interval        time.Duration
	batchSize       int
	cleanupInterval time.Duration
	retention       time.Duration
	mu              sync.Mutex
	running         bool
	stopCh          chan struct{}
	stoppedCh       chan struct{}
	publishedCnt    int
	failedCnt       int
}

// PublisherConfig holds configuration for the outbox publisher
type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int

	// CleanupInterval controls how often published events older than
	// Retention are deleted. Zero disables cleanup.
	CleanupInterval time.Duration
	Retention       time.Duration
}

// DefaultPublisherConfig returns default configuration
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		PollInterval:    1 * time.Second,
		BatchSize:       100,
		CleanupInterval: 1 * time.Hour,
		Retention:       24 * time.Hour,
	}
}

// NewPublisher creates a new outbox publisher
func NewPublisher(
	repo Repository,
	producer *kafka.InstrumentedProducer,
	logger *logging.Logger,
	metrics *metrics.Metrics,
	config *PublisherConfig,
) *Publisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	return &Publisher{
		repo:            repo,
		producer:        producer,
		logger:          logger,
		metrics:         metrics,
		interval:        config.PollInterval,
		batchSize:       config.BatchSize,
		cleanupInterval: config.CleanupInterval,
		retention:       config.Retention,
		stopCh:          make(chan struct{}),
		stoppedCh:       make(chan struct{}),
	}
}

// Start starts the outbox publisher
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher already running")
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info("Starting outbox publisher", "interval", p.interval, "batchSize", p.batchSize)

	go p.run(ctx)
	return nil
}

// Stop stops the outbox publisher
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher not running")
	}
	p.mu.Unlock()

	p.logger.Info("Stopping outbox publisher")
	close(p.stopCh)
	<-p.stoppedCh

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Outbox publisher stopped", "published", p.publishedCnt, "failed", p.failedCnt)
	return nil
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.stoppedCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var cleanupCh <-chan time.Time
	if p.cleanupInterval > 0 {
		cleanup := time.NewTicker(p.cleanupInterval)
		defer cleanup.Stop()
		cleanupCh = cleanup.C
	}

	for {
		select {
		case <-ticker.C:
			p.processEvents(ctx)
		case <-cleanupCh:
			p.cleanupPublished(ctx)
		case <-p.stopCh:
			p.logger.Info("Publisher received stop signal")
			return
		case <-ctx.Done():
			p.logger.Info("Publisher context cancelled")
			return
		}
	}
}

// processEvents publishes all currently unpublished events
func (p *Publisher) processEvents(ctx context.Context) {
	events, err := p.repo.FindUnpublished(ctx, p.batchSize)
	if err != nil {
		p.logger.WithError(err).Error("Failed to find unpublished events")
		return
	}

	if p.metrics != nil {
		p.metrics.SetOutboxPending(len(events))
	}

	if len(events) == 0 {
		return
	}

	p.logger.Info("Processing outbox events", "count", len(events))

	for _, event := range events {
		if !event.ShouldRetry() {
			continue
		}
		if err := p.publishEvent(ctx, event); err != nil {
			p.logger.WithError(err).Error("Failed to publish event",
				"eventId", event.ID,
				"eventType", event.EventType,
				"aggregateId", event.AggregateID,
			)
			p.failedCnt++

			if p.metrics != nil {
				p.metrics.RecordOutboxPublish(event.EventType, false)
			}

			if err := p.repo.IncrementRetry(ctx, event.ID, err.Error()); err != nil {
				p.logger.WithError(err).Error("Failed to increment retry count", "eventId", event.ID)
			}
		} else {
			p.publishedCnt++

			if p.metrics != nil {
				p.metrics.RecordOutboxPublish(event.EventType, true)
			}

			if err := p.repo.MarkPublished(ctx, event.ID); err != nil {
				p.logger.WithError(err).Error("Failed to mark event as published", "eventId", event.ID)
			}
		}
	}
}

// cleanupPublished removes published events past the retention window
func (p *Publisher) cleanupPublished(ctx context.Context) {
	if err := p.repo.DeletePublished(ctx, int64(p.retention.Seconds())); err != nil {
		p.logger.WithError(err).Error("Failed to delete published outbox events")
		return
	}
	p.logger.Info("Cleaned up published outbox events", "retention", p.retention)
}

func (p *Publisher) publishEvent(ctx context.Context, event *OutboxEvent) error {
	start := time.Now()

	cloudEvent, err := event.ToCloudEvent()
	if err != nil {
		return fmt.Errorf("failed to convert to CloudEvent: %w", err)
	}

	if err := p.producer.PublishEvent(ctx, event.Topic, cloudEvent); err != nil {
		return fmt.Errorf("failed to publish to Kafka: %w", err)
	}

	p.logger.Info("Published event from outbox",
		"eventId", event.ID,
		"eventType", event.EventType,
		"topic", event.Topic,
		"aggregateId", event.AggregateID,
		"duration", time.Since(start),
	)

	return nil
}

// IsRunning returns whether the publisher is running
func (p *Publisher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stats returns publisher statistics
func (p *Publisher) Stats() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]int{
		"published": p.publishedCnt,
		"failed":    p.failedCnt,
	}
}
