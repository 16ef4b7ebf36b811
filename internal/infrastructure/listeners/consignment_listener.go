// Package listeners wires Kafka event subscriptions to application services.
package listeners

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wms-platform/inventory-lifecycle/internal/application"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/idempotency"
	"github.com/wms-platform/inventory-lifecycle/pkg/kafka"
)

const consignmentConfirmedEventType = "wms.consignment.confirmed"

// consignmentMaterializer is the slice of the consignment service the
// listener drives.
type consignmentMaterializer interface {
	MaterializeConfirmedConsignment(ctx context.Context, consignmentID string) (*application.AssignmentResultDTO, error)
}

// ConsignmentListener turns consignment confirmations into stock items.
// Confirmation and materialization are decoupled through the event stream,
// so a confirmation accepted by the API is materialized asynchronously,
// exactly once per event ID.
type ConsignmentListener struct {
	consignments consignmentMaterializer
	dedupe       *idempotency.ConsumerConfig
	logger       *slog.Logger
}

// NewConsignmentListener creates a new ConsignmentListener
func NewConsignmentListener(
	consignments consignmentMaterializer,
	messageRepo idempotency.MessageRepository,
	serviceName, consumerGroup string,
	logger *slog.Logger,
) *ConsignmentListener {
	return &ConsignmentListener{
		consignments: consignments,
		dedupe:       idempotency.DefaultConsumerConfig(serviceName, kafka.Topics.ConsignmentEvents, consumerGroup, messageRepo),
		logger:       logger,
	}
}

// subscriber is satisfied by both the plain and the instrumented consumer.
type subscriber interface {
	Subscribe(topic string, eventType string, handler kafka.EventHandler)
}

// Register subscribes the listener on the consignment topic
func (l *ConsignmentListener) Register(consumer subscriber) {
	handler := idempotency.DeduplicatingHandler(l.dedupe, l.handleConfirmed)
	consumer.Subscribe(kafka.Topics.ConsignmentEvents, consignmentConfirmedEventType, kafka.EventHandler(handler))
}

func (l *ConsignmentListener) handleConfirmed(ctx context.Context, event *cloudevents.WMSCloudEvent) error {
	// Malformed events are logged and dropped; retrying cannot fix them
	if err := event.ValidateTenantContext(); err != nil {
		l.logger.Warn("Consignment confirmation without tenant context",
			"eventId", event.ID,
			"error", err,
		)
		return nil
	}

	consignmentID := consignmentIDFrom(event)
	if consignmentID == "" {
		l.logger.Warn("Consignment confirmation without consignment id",
			"eventId", event.ID,
			"subject", event.Subject,
		)
		return nil
	}

	result, err := l.consignments.MaterializeConfirmedConsignment(ctx, consignmentID)
	if err != nil {
		l.logger.Error("Failed to materialize consignment",
			"consignmentId", consignmentID,
			"eventId", event.ID,
			"error", err,
		)
		return err
	}

	l.logger.Info("Consignment materialized",
		"consignmentId", consignmentID,
		"assigned", len(result.Assignments),
		"unassigned", len(result.Unassigned),
	)
	return nil
}

// consignmentIDFrom reads the consignment ID from the event payload, falling
// back to the subject ("consignments/<id>").
func consignmentIDFrom(event *cloudevents.WMSCloudEvent) string {
	if data, ok := event.Data.(map[string]interface{}); ok {
		if id, ok := data["consignmentId"].(string); ok && id != "" {
			return id
		}
	}
	if rest, found := strings.CutPrefix(event.Subject, "consignments/"); found && rest != "" {
		return rest
	}
	return ""
}
