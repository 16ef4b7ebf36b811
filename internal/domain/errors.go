package domain

import (
	"errors"
	"fmt"
)

var (
	ErrStockItemNotFound   = errors.New("stock item not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrMovementNotFound    = errors.New("stock movement not found")
	ErrPickingTaskNotFound = errors.New("picking task not found")
	ErrConsignmentNotFound = errors.New("consignment not found")

	ErrQuantityNotPositive = errors.New("quantity must be greater than zero")
	ErrReasonRequired      = errors.New("reason is required")
)

// VersionConflictError signals an optimistic-concurrency failure on save.
// Callers should reload the aggregate and retry the operation.
type VersionConflictError struct {
	Entity  string
	ID      string
	Version int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s %s at version %d", e.Entity, e.ID, e.Version)
}

// IsVersionConflict reports whether err is (or wraps) a VersionConflictError
func IsVersionConflict(err error) bool {
	var vc *VersionConflictError
	return errors.As(err, &vc)
}

// InsufficientCapacityError is returned when a location cannot hold the
// requested quantity.
type InsufficientCapacityError struct {
	LocationID string
	Required   int
	Available  int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity at location %s: required %d, available %d",
		e.LocationID, e.Required, e.Available)
}

// LocationNotAvailableError is returned when stock is assigned or reserved
// onto a location whose status does not accept stock.
type LocationNotAvailableError struct {
	LocationID string
	Status     LocationStatus
}

func (e *LocationNotAvailableError) Error() string {
	return fmt.Sprintf("location %s is not available: status %s", e.LocationID, e.Status)
}

// InvalidLocationStateError is returned for block/unblock commands that are
// not legal in the location's current status.
type InvalidLocationStateError struct {
	LocationID string
	Current    LocationStatus
	Target     LocationStatus
}

func (e *InvalidLocationStateError) Error() string {
	return fmt.Sprintf("location %s already in state %s: cannot transition to %s",
		e.LocationID, e.Current, e.Target)
}

// InvalidMovementStateError is returned for transitions attempted from a
// terminal movement state, naming the current and attempted target state.
type InvalidMovementStateError struct {
	MovementID string
	Current    MovementStatus
	Target     MovementStatus
}

func (e *InvalidMovementStateError) Error() string {
	return fmt.Sprintf("stock movement %s already %s: cannot transition to %s",
		e.MovementID, e.Current, e.Target)
}

// InsufficientStockError is returned when a pick requests more than is
// available at the task's location.
type InsufficientStockError struct {
	SKU        string
	LocationID string
	Required   int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s at location %s: required %d, available %d",
		e.SKU, e.LocationID, e.Required, e.Available)
}

// ExpiredStockError is returned when a pick targets expired stock
type ExpiredStockError struct {
	SKU        string
	LocationID string
}

func (e *ExpiredStockError) Error() string {
	return fmt.Sprintf("stock for %s at location %s is expired and cannot be picked",
		e.SKU, e.LocationID)
}

// InvalidPickQuantityError is returned before any state change when the
// picked quantity is zero or exceeds the required quantity.
type InvalidPickQuantityError struct {
	TaskID   string
	Picked   int
	Required int
}

func (e *InvalidPickQuantityError) Error() string {
	return fmt.Sprintf("invalid pick quantity %d for task %s: required %d",
		e.Picked, e.TaskID, e.Required)
}

// TaskAlreadyCompletedError prevents double-picking of a terminal task
type TaskAlreadyCompletedError struct {
	TaskID string
	Status PickingStatus
}

func (e *TaskAlreadyCompletedError) Error() string {
	return fmt.Sprintf("picking task %s already %s", e.TaskID, e.Status)
}
