package domain

import (
	"context"
	"time"
)

// StockAvailabilityChecker is the live stock-state port the executor
// validates picks against. Implementations query another service or the
// stock store; the executor treats the answers as already-resolved input.
type StockAvailabilityChecker interface {
	// CheckStockAvailability returns the quantity available for the SKU
	// at the location.
	CheckStockAvailability(ctx context.Context, tenantID, sku, locationID string) (int, error)

	// IsStockExpired reports whether the stock for the SKU at the
	// location is classified expired.
	IsStockExpired(ctx context.Context, tenantID, sku, locationID string) (bool, error)
}

// PickingTaskExecutor validates live stock availability and expiration,
// then executes a picking task fully or partially.
type PickingTaskExecutor struct {
	checker StockAvailabilityChecker
}

// NewPickingTaskExecutor creates a new PickingTaskExecutor
func NewPickingTaskExecutor(checker StockAvailabilityChecker) *PickingTaskExecutor {
	return &PickingTaskExecutor{checker: checker}
}

// Execute performs a full pick: the picked quantity must equal the task's
// required quantity.
func (e *PickingTaskExecutor) Execute(ctx context.Context, task *PickingTask, pickedQuantity int, pickedBy string, now time.Time) ([]Event, error) {
	if err := task.ValidatePickQuantity(pickedQuantity); err != nil {
		return nil, err
	}
	if pickedQuantity != task.RequiredQuantity {
		return nil, &InvalidPickQuantityError{
			TaskID:   task.TaskID,
			Picked:   pickedQuantity,
			Required: task.RequiredQuantity,
		}
	}
	if err := e.checkStock(ctx, task, pickedQuantity); err != nil {
		return nil, err
	}

	return task.Complete(pickedBy, now)
}

// ExecutePartial performs a short pick with a mandatory reason
func (e *PickingTaskExecutor) ExecutePartial(ctx context.Context, task *PickingTask, pickedQuantity int, reason, pickedBy string, now time.Time) ([]Event, error) {
	if err := task.ValidatePickQuantity(pickedQuantity); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if err := e.checkStock(ctx, task, pickedQuantity); err != nil {
		return nil, err
	}

	return task.CompletePartial(pickedQuantity, reason, pickedBy, now)
}

func (e *PickingTaskExecutor) checkStock(ctx context.Context, task *PickingTask, pickedQuantity int) error {
	expired, err := e.checker.IsStockExpired(ctx, task.TenantID, task.SKU, task.LocationID)
	if err != nil {
		return err
	}
	if expired {
		return &ExpiredStockError{SKU: task.SKU, LocationID: task.LocationID}
	}

	available, err := e.checker.CheckStockAvailability(ctx, task.TenantID, task.SKU, task.LocationID)
	if err != nil {
		return err
	}
	if available < pickedQuantity {
		return &InsufficientStockError{
			SKU:        task.SKU,
			LocationID: task.LocationID,
			Required:   pickedQuantity,
			Available:  available,
		}
	}
	return nil
}
