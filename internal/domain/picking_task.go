package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickingStatus is the lifecycle status of a picking task
type PickingStatus string

const (
	PickingStatusPending            PickingStatus = "PENDING"
	PickingStatusInProgress         PickingStatus = "IN_PROGRESS"
	PickingStatusCompleted          PickingStatus = "COMPLETED"
	PickingStatusPartiallyCompleted PickingStatus = "PARTIALLY_COMPLETED"
	PickingStatusCancelled          PickingStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further picks
func (s PickingStatus) IsTerminal() bool {
	switch s {
	case PickingStatusCompleted, PickingStatusPartiallyCompleted, PickingStatusCancelled:
		return true
	default:
		return false
	}
}

// PickingTask is one pick instruction within a load. Transitions are
// one-way: a task reaches exactly one terminal state and can never be
// picked twice.
//
// Invariant: PickedQuantity never exceeds RequiredQuantity, and
// PartialReason is present exactly when the task terminated with a
// short pick.
type PickingTask struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TaskID           string             `bson:"taskId" json:"taskId"`
	TenantID         string             `bson:"tenantId" json:"tenantId"`
	LoadID           string             `bson:"loadId,omitempty" json:"loadId,omitempty"`
	SKU              string             `bson:"sku" json:"sku"`
	ProductName      string             `bson:"productName,omitempty" json:"productName,omitempty"`
	LocationID       string             `bson:"locationId" json:"locationId"`
	RequiredQuantity int                `bson:"requiredQuantity" json:"requiredQuantity"`
	Sequence         int                `bson:"sequence" json:"sequence"`
	Status           PickingStatus      `bson:"status" json:"status"`
	PickedQuantity   int                `bson:"pickedQuantity" json:"pickedQuantity"`
	PickedBy         string             `bson:"pickedBy,omitempty" json:"pickedBy,omitempty"`
	PickedAt         *time.Time         `bson:"pickedAt,omitempty" json:"pickedAt,omitempty"`
	PartialReason    string             `bson:"partialReason,omitempty" json:"partialReason,omitempty"`
	Version          int64              `bson:"version" json:"version"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewPickingTask creates a picking task in PENDING status
func NewPickingTask(taskID, tenantID, loadID, sku, productName, locationID string, requiredQuantity, sequence int, now time.Time) (*PickingTask, []Event, error) {
	if taskID == "" {
		return nil, nil, errors.New("task id is required")
	}
	if tenantID == "" {
		return nil, nil, errors.New("tenant id is required")
	}
	if sku == "" {
		return nil, nil, errors.New("sku is required")
	}
	if locationID == "" {
		return nil, nil, errors.New("location id is required")
	}
	if requiredQuantity <= 0 {
		return nil, nil, ErrQuantityNotPositive
	}

	task := &PickingTask{
		TaskID:           taskID,
		TenantID:         tenantID,
		LoadID:           loadID,
		SKU:              sku,
		ProductName:      productName,
		LocationID:       locationID,
		RequiredQuantity: requiredQuantity,
		Sequence:         sequence,
		Status:           PickingStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	return task, []Event{&PickingTaskCreatedEvent{
		TaskID:           taskID,
		TenantID:         tenantID,
		LoadID:           loadID,
		SKU:              sku,
		LocationID:       locationID,
		RequiredQuantity: requiredQuantity,
		Sequence:         sequence,
		CreatedAt:        now,
	}}, nil
}

// Start moves the task into IN_PROGRESS
func (t *PickingTask) Start(now time.Time) error {
	if t.Status != PickingStatusPending {
		return &TaskAlreadyCompletedError{TaskID: t.TaskID, Status: t.Status}
	}
	t.Status = PickingStatusInProgress
	t.UpdatedAt = now
	return nil
}

// ValidatePickQuantity rejects zero or excess quantities before any state
// change.
func (t *PickingTask) ValidatePickQuantity(pickedQuantity int) error {
	if t.Status.IsTerminal() {
		return &TaskAlreadyCompletedError{TaskID: t.TaskID, Status: t.Status}
	}
	if pickedQuantity <= 0 || pickedQuantity > t.RequiredQuantity {
		return &InvalidPickQuantityError{
			TaskID:   t.TaskID,
			Picked:   pickedQuantity,
			Required: t.RequiredQuantity,
		}
	}
	return nil
}

// Complete records a full pick and terminates the task
func (t *PickingTask) Complete(pickedBy string, now time.Time) ([]Event, error) {
	if err := t.ValidatePickQuantity(t.RequiredQuantity); err != nil {
		return nil, err
	}
	if pickedBy == "" {
		return nil, errors.New("picker is required")
	}

	t.Status = PickingStatusCompleted
	t.PickedQuantity = t.RequiredQuantity
	t.PickedBy = pickedBy
	t.PickedAt = &now
	t.UpdatedAt = now

	return []Event{&PickingTaskCompletedEvent{
		TaskID:         t.TaskID,
		TenantID:       t.TenantID,
		SKU:            t.SKU,
		LocationID:     t.LocationID,
		PickedQuantity: t.PickedQuantity,
		PickedBy:       pickedBy,
		PickedAt:       now,
	}}, nil
}

// CompletePartial records a short pick with a mandatory reason and
// terminates the task.
func (t *PickingTask) CompletePartial(pickedQuantity int, reason, pickedBy string, now time.Time) ([]Event, error) {
	if err := t.ValidatePickQuantity(pickedQuantity); err != nil {
		return nil, err
	}
	if pickedQuantity == t.RequiredQuantity {
		return nil, &InvalidPickQuantityError{
			TaskID:   t.TaskID,
			Picked:   pickedQuantity,
			Required: t.RequiredQuantity,
		}
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if pickedBy == "" {
		return nil, errors.New("picker is required")
	}

	t.Status = PickingStatusPartiallyCompleted
	t.PickedQuantity = pickedQuantity
	t.PartialReason = reason
	t.PickedBy = pickedBy
	t.PickedAt = &now
	t.UpdatedAt = now

	return []Event{&PickingTaskPartiallyCompletedEvent{
		TaskID:           t.TaskID,
		TenantID:         t.TenantID,
		SKU:              t.SKU,
		LocationID:       t.LocationID,
		RequiredQuantity: t.RequiredQuantity,
		PickedQuantity:   pickedQuantity,
		Reason:           reason,
		PickedBy:         pickedBy,
		PickedAt:         now,
	}}, nil
}

// Cancel terminates the task without a pick
func (t *PickingTask) Cancel(reason string, now time.Time) error {
	if t.Status.IsTerminal() {
		return &TaskAlreadyCompletedError{TaskID: t.TaskID, Status: t.Status}
	}
	if reason == "" {
		return ErrReasonRequired
	}

	t.Status = PickingStatusCancelled
	t.PartialReason = reason
	t.UpdatedAt = now
	return nil
}
