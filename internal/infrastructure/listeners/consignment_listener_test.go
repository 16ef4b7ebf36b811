package listeners

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/inventory-lifecycle/internal/application"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/idempotency"
)

type fakeMaterializer struct {
	calls []string
	err   error
}

func (f *fakeMaterializer) MaterializeConfirmedConsignment(_ context.Context, consignmentID string) (*application.AssignmentResultDTO, error) {
	f.calls = append(f.calls, consignmentID)
	if f.err != nil {
		return nil, f.err
	}
	return &application.AssignmentResultDTO{
		Assignments: map[string]string{"STK-1": "A-01-01-A"},
		Unassigned:  []string{},
	}, nil
}

type memoryMessageRepo struct {
	processed map[string]bool
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{processed: make(map[string]bool)}
}

func (r *memoryMessageRepo) MarkProcessed(_ context.Context, msg *idempotency.ProcessedMessage) error {
	key := msg.MessageID + "|" + msg.Topic + "|" + msg.ConsumerGroup
	if r.processed[key] {
		return idempotency.ErrMessageAlreadyProcessed
	}
	r.processed[key] = true
	return nil
}

func (r *memoryMessageRepo) IsProcessed(_ context.Context, messageID, topic, consumerGroup string) (bool, error) {
	return r.processed[messageID+"|"+topic+"|"+consumerGroup], nil
}

func (r *memoryMessageRepo) Clean(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

func (r *memoryMessageRepo) EnsureIndexes(_ context.Context) error { return nil }

func newTestListener(materializer *fakeMaterializer, repo idempotency.MessageRepository) *ConsignmentListener {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConsignmentListener(materializer, repo, "inventory-lifecycle", "inventory-lifecycle", logger)
}

func confirmedEvent(eventID, consignmentID string) *cloudevents.WMSCloudEvent {
	return &cloudevents.WMSCloudEvent{
		ID:      eventID,
		Type:    consignmentConfirmedEventType,
		Subject: "consignments/" + consignmentID,
		Data: map[string]interface{}{
			"consignmentId": consignmentID,
		},
		TenantID:    "tenant-1",
		WarehouseID: "wh-1",
	}
}

func TestConsignmentListenerMaterializesOnConfirmation(t *testing.T) {
	materializer := &fakeMaterializer{}
	listener := newTestListener(materializer, newMemoryMessageRepo())

	err := listener.handleConfirmed(context.Background(), confirmedEvent("evt-1", "CSG-001"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CSG-001"}, materializer.calls)
}

func TestConsignmentListenerFallsBackToSubject(t *testing.T) {
	materializer := &fakeMaterializer{}
	listener := newTestListener(materializer, newMemoryMessageRepo())

	event := confirmedEvent("evt-1", "CSG-002")
	event.Data = nil

	err := listener.handleConfirmed(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, []string{"CSG-002"}, materializer.calls)
}

func TestConsignmentListenerDropsEventWithoutID(t *testing.T) {
	materializer := &fakeMaterializer{}
	listener := newTestListener(materializer, newMemoryMessageRepo())

	event := &cloudevents.WMSCloudEvent{
		ID:          "evt-1",
		Type:        consignmentConfirmedEventType,
		TenantID:    "tenant-1",
		WarehouseID: "wh-1",
	}

	err := listener.handleConfirmed(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, materializer.calls)
}

func TestConsignmentListenerDropsEventWithoutTenantContext(t *testing.T) {
	materializer := &fakeMaterializer{}
	listener := newTestListener(materializer, newMemoryMessageRepo())

	event := confirmedEvent("evt-1", "CSG-003")
	event.TenantID = ""

	err := listener.handleConfirmed(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, materializer.calls)
}

func TestConsignmentListenerPropagatesServiceError(t *testing.T) {
	materializer := &fakeMaterializer{err: errors.New("store down")}
	listener := newTestListener(materializer, newMemoryMessageRepo())

	err := listener.handleConfirmed(context.Background(), confirmedEvent("evt-1", "CSG-003"))
	assert.Error(t, err)
}

func TestConsignmentListenerDeduplicatesRedeliveries(t *testing.T) {
	materializer := &fakeMaterializer{}
	listener := newTestListener(materializer, newMemoryMessageRepo())
	handler := idempotency.DeduplicatingHandler(listener.dedupe, listener.handleConfirmed)

	event := confirmedEvent("evt-1", "CSG-004")
	require.NoError(t, handler(context.Background(), event))
	require.NoError(t, handler(context.Background(), event))

	assert.Equal(t, []string{"CSG-004"}, materializer.calls)
}

func TestConsignmentListenerRetriesAfterFailure(t *testing.T) {
	materializer := &fakeMaterializer{err: errors.New("store down")}
	listener := newTestListener(materializer, newMemoryMessageRepo())
	handler := idempotency.DeduplicatingHandler(listener.dedupe, listener.handleConfirmed)

	event := confirmedEvent("evt-1", "CSG-005")
	require.Error(t, handler(context.Background(), event))

	// The failed delivery was not marked processed, so redelivery succeeds
	materializer.err = nil
	require.NoError(t, handler(context.Background(), event))
	assert.Equal(t, []string{"CSG-005", "CSG-005"}, materializer.calls)
}
