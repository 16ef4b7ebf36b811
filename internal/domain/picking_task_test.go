package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	available int
	expired   bool
	err       error
}

func (s *stubChecker) CheckStockAvailability(ctx context.Context, tenantID, sku, locationID string) (int, error) {
	return s.available, s.err
}

func (s *stubChecker) IsStockExpired(ctx context.Context, tenantID, sku, locationID string) (bool, error) {
	return s.expired, s.err
}

func newTestTask(t *testing.T, required int) *PickingTask {
	t.Helper()
	task, events, err := NewPickingTask("pt-1", "tenant-1", "load-1", "SKU-001", "Widget", "A-01-01-1", required, 1, testNow)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "wms.picking.task-created", events[0].EventType())
	return task
}

func TestNewPickingTask_Validation(t *testing.T) {
	_, _, err := NewPickingTask("pt-1", "tenant-1", "", "", "", "A-01-01-1", 10, 1, testNow)
	assert.Error(t, err)

	_, _, err = NewPickingTask("pt-1", "tenant-1", "", "SKU-001", "", "", 10, 1, testNow)
	assert.Error(t, err)

	_, _, err = NewPickingTask("pt-1", "tenant-1", "", "SKU-001", "", "A-01-01-1", 0, 1, testNow)
	assert.ErrorIs(t, err, ErrQuantityNotPositive)
}

func TestExecute_FullPick(t *testing.T) {
	task := newTestTask(t, 10)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50})

	events, err := executor.Execute(context.Background(), task, 10, "picker-1", testNow)
	require.NoError(t, err)

	assert.Equal(t, PickingStatusCompleted, task.Status)
	assert.Equal(t, 10, task.PickedQuantity)
	assert.Equal(t, "picker-1", task.PickedBy)
	require.Len(t, events, 1)
	assert.Equal(t, "wms.picking.task-completed", events[0].EventType())
}

func TestExecute_PartialQuantityRejected(t *testing.T) {
	task := newTestTask(t, 10)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50})

	_, err := executor.Execute(context.Background(), task, 6, "picker-1", testNow)
	var invalid *InvalidPickQuantityError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, PickingStatusPending, task.Status)
}

func TestExecute_InvalidQuantities(t *testing.T) {
	task := newTestTask(t, 10)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50})

	_, err := executor.Execute(context.Background(), task, 0, "picker-1", testNow)
	var invalid *InvalidPickQuantityError
	require.ErrorAs(t, err, &invalid)

	_, err = executor.Execute(context.Background(), task, 11, "picker-1", testNow)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 11, invalid.Picked)
	assert.Equal(t, 10, invalid.Required)
}

func TestExecute_InsufficientStock(t *testing.T) {
	task := newTestTask(t, 10)
	executor := NewPickingTaskExecutor(&stubChecker{available: 4})

	_, err := executor.Execute(context.Background(), task, 10, "picker-1", testNow)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Required)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, PickingStatusPending, task.Status)
}

func TestExecute_ExpiredStock(t *testing.T) {
	task := newTestTask(t, 10)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50, expired: true})

	_, err := executor.Execute(context.Background(), task, 10, "picker-1", testNow)
	var expired *ExpiredStockError
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, "SKU-001", expired.SKU)
	assert.Equal(t, PickingStatusPending, task.Status)
}

func TestExecutePartial(t *testing.T) {
	task := newTestTask(t, 20)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50})

	events, err := executor.ExecutePartial(context.Background(), task, 12, "damaged", "picker-1", testNow)
	require.NoError(t, err)

	assert.Equal(t, PickingStatusPartiallyCompleted, task.Status)
	assert.Equal(t, 12, task.PickedQuantity)
	assert.Equal(t, "damaged", task.PartialReason)

	require.Len(t, events, 1)
	partial, ok := events[0].(*PickingTaskPartiallyCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 20, partial.RequiredQuantity)
	assert.Equal(t, 12, partial.PickedQuantity)
	assert.Equal(t, "damaged", partial.Reason)
}

func TestExecutePartial_BlankReasonRejected(t *testing.T) {
	task := newTestTask(t, 10)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50})

	_, err := executor.ExecutePartial(context.Background(), task, 3, "", "picker-1", testNow)
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Equal(t, PickingStatusPending, task.Status)
}

func TestExecute_TerminalTaskCannotBePickedAgain(t *testing.T) {
	task := newTestTask(t, 20)
	executor := NewPickingTaskExecutor(&stubChecker{available: 50})

	_, err := executor.ExecutePartial(context.Background(), task, 12, "damaged", "picker-1", testNow)
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), task, 20, "picker-2", testNow)
	var already *TaskAlreadyCompletedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, PickingStatusPartiallyCompleted, already.Status)
	assert.Equal(t, 12, task.PickedQuantity)
}

func TestCancelTask(t *testing.T) {
	task := newTestTask(t, 10)

	assert.ErrorIs(t, task.Cancel("", testNow), ErrReasonRequired)

	require.NoError(t, task.Cancel("load cancelled", testNow))
	assert.Equal(t, PickingStatusCancelled, task.Status)

	var already *TaskAlreadyCompletedError
	require.ErrorAs(t, task.Cancel("again", testNow), &already)
}

func TestStartTask(t *testing.T) {
	task := newTestTask(t, 10)
	require.NoError(t, task.Start(testNow))
	assert.Equal(t, PickingStatusInProgress, task.Status)

	executor := NewPickingTaskExecutor(&stubChecker{available: 50})
	_, err := executor.Execute(context.Background(), task, 10, "picker-1", testNow)
	require.NoError(t, err)
	assert.Equal(t, PickingStatusCompleted, task.Status)
}
