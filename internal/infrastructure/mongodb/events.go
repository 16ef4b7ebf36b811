package mongodb

import (
	"context"
	"fmt"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/kafka"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/outbox"
)

// eventRoute decides which topic an event goes to and which aggregate it
// belongs to in the outbox.
type eventRoute struct {
	topic         string
	aggregateType string
	aggregateID   string
	subject       string
}

func routeEvent(event domain.Event) (eventRoute, error) {
	switch e := event.(type) {
	case *domain.StockItemCreatedEvent:
		return stockRoute(e.StockItemID), nil
	case *domain.StockItemClassifiedEvent:
		return stockRoute(e.StockItemID), nil
	case *domain.ExpiringAlertEvent:
		return stockRoute(e.StockItemID), nil
	case *domain.StockExpiredEvent:
		return stockRoute(e.StockItemID), nil
	case *domain.LocationAssignedEvent:
		return stockRoute(e.StockItemID), nil
	case *domain.RestockRequestedEvent:
		return stockRoute(e.StockItemID), nil
	case *domain.ReturnLocationAssignedEvent:
		return eventRoute{
			topic:         kafka.Topics.StockEvents,
			aggregateType: "StockItem",
			aggregateID:   e.TenantID,
			subject:       "stock/returns",
		}, nil
	case *domain.LocationCreatedEvent:
		return locationRoute(e.LocationID), nil
	case *domain.LocationStatusChangedEvent:
		return locationRoute(e.LocationID), nil
	case *domain.StockMovementInitiatedEvent:
		return movementRoute(e.MovementID), nil
	case *domain.StockMovementCompletedEvent:
		return movementRoute(e.MovementID), nil
	case *domain.StockMovementCancelledEvent:
		return movementRoute(e.MovementID), nil
	case *domain.PickingTaskCreatedEvent:
		return pickingRoute(e.TaskID), nil
	case *domain.PickingTaskCompletedEvent:
		return pickingRoute(e.TaskID), nil
	case *domain.PickingTaskPartiallyCompletedEvent:
		return pickingRoute(e.TaskID), nil
	case *domain.ConsignmentCreatedEvent:
		return consignmentRoute(e.ConsignmentID), nil
	case *domain.ConsignmentConfirmedEvent:
		return consignmentRoute(e.ConsignmentID), nil
	default:
		return eventRoute{}, fmt.Errorf("unroutable event type %s", event.EventType())
	}
}

func stockRoute(stockItemID string) eventRoute {
	return eventRoute{
		topic:         kafka.Topics.StockEvents,
		aggregateType: "StockItem",
		aggregateID:   stockItemID,
		subject:       "stock/" + stockItemID,
	}
}

func locationRoute(locationID string) eventRoute {
	return eventRoute{
		topic:         kafka.Topics.LocationEvents,
		aggregateType: "Location",
		aggregateID:   locationID,
		subject:       "locations/" + locationID,
	}
}

func movementRoute(movementID string) eventRoute {
	return eventRoute{
		topic:         kafka.Topics.MovementEvents,
		aggregateType: "StockMovement",
		aggregateID:   movementID,
		subject:       "movements/" + movementID,
	}
}

func pickingRoute(taskID string) eventRoute {
	return eventRoute{
		topic:         kafka.Topics.PickingEvents,
		aggregateType: "PickingTask",
		aggregateID:   taskID,
		subject:       "picking/" + taskID,
	}
}

func consignmentRoute(consignmentID string) eventRoute {
	return eventRoute{
		topic:         kafka.Topics.ConsignmentEvents,
		aggregateType: "Consignment",
		aggregateID:   consignmentID,
		subject:       "consignments/" + consignmentID,
	}
}

// buildOutboxEvents wraps domain events in CloudEvents envelopes and
// prepares them for the outbox write that shares the aggregate's transaction.
func buildOutboxEvents(ctx context.Context, factory *cloudevents.EventFactory, events []domain.Event) ([]*outbox.OutboxEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	correlationID, _ := ctx.Value(logging.CorrelationIDKey).(string)

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))
	for _, event := range events {
		route, err := routeEvent(event)
		if err != nil {
			return nil, err
		}

		cloudEvent := factory.CreateEventWithCorrelation(ctx, event.EventType(), route.subject, event, correlationID)
		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(route.aggregateID, route.aggregateType, route.topic, cloudEvent)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}

	return outboxEvents, nil
}
