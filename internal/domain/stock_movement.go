package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementStatus is the lifecycle status of a stock movement
type MovementStatus string

const (
	MovementStatusInitiated MovementStatus = "INITIATED"
	MovementStatusCompleted MovementStatus = "COMPLETED"
	MovementStatusCancelled MovementStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions
func (s MovementStatus) IsTerminal() bool {
	return s == MovementStatusCompleted || s == MovementStatusCancelled
}

// MovementType categorizes why stock is moving
type MovementType string

const (
	MovementTypePutaway       MovementType = "PUTAWAY"
	MovementTypeRelocation    MovementType = "RELOCATION"
	MovementTypeReplenishment MovementType = "REPLENISHMENT"
	MovementTypeReturn        MovementType = "RETURN"
	MovementTypeRemoval       MovementType = "REMOVAL"
)

// IsValid checks if the movement type is a known value
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePutaway, MovementTypeRelocation, MovementTypeReplenishment,
		MovementTypeReturn, MovementTypeRemoval:
		return true
	default:
		return false
	}
}

// StockMovement tracks one quantity of stock moving between two locations.
// Status transitions are one-directional: INITIATED is the only live
// state, COMPLETED and CANCELLED are terminal.
type StockMovement struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	MovementID            string             `bson:"movementId" json:"movementId"`
	TenantID              string             `bson:"tenantId" json:"tenantId"`
	StockItemID           string             `bson:"stockItemId" json:"stockItemId"`
	SourceLocationID      string             `bson:"sourceLocationId" json:"sourceLocationId"`
	DestinationLocationID string             `bson:"destinationLocationId" json:"destinationLocationId"`
	Quantity              int                `bson:"quantity" json:"quantity"`
	MovementType          MovementType       `bson:"movementType" json:"movementType"`
	Reason                string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status                MovementStatus     `bson:"status" json:"status"`
	InitiatedBy           string             `bson:"initiatedBy" json:"initiatedBy"`
	InitiatedAt           time.Time          `bson:"initiatedAt" json:"initiatedAt"`
	CompletedBy           string             `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	CompletedAt           *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledBy           string             `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt           *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason    string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	Version               int64              `bson:"version" json:"version"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewStockMovement initiates a movement between two distinct locations
func NewStockMovement(movementID, tenantID, stockItemID, sourceLocationID, destinationLocationID string, quantity int, movementType MovementType, reason, initiatedBy string, now time.Time) (*StockMovement, []Event, error) {
	if movementID == "" {
		return nil, nil, errors.New("movement id is required")
	}
	if tenantID == "" {
		return nil, nil, errors.New("tenant id is required")
	}
	if stockItemID == "" {
		return nil, nil, errors.New("stock item id is required")
	}
	if sourceLocationID == "" || destinationLocationID == "" {
		return nil, nil, errors.New("source and destination locations are required")
	}
	if sourceLocationID == destinationLocationID {
		return nil, nil, errors.New("source and destination locations must be different")
	}
	if quantity <= 0 {
		return nil, nil, ErrQuantityNotPositive
	}
	if !movementType.IsValid() {
		return nil, nil, errors.New("invalid movement type")
	}
	if initiatedBy == "" {
		return nil, nil, errors.New("initiator is required")
	}

	m := &StockMovement{
		MovementID:            movementID,
		TenantID:              tenantID,
		StockItemID:           stockItemID,
		SourceLocationID:      sourceLocationID,
		DestinationLocationID: destinationLocationID,
		Quantity:              quantity,
		MovementType:          movementType,
		Reason:                reason,
		Status:                MovementStatusInitiated,
		InitiatedBy:           initiatedBy,
		InitiatedAt:           now,
		UpdatedAt:             now,
	}

	return m, []Event{&StockMovementInitiatedEvent{
		MovementID:            movementID,
		TenantID:              tenantID,
		StockItemID:           stockItemID,
		SourceLocationID:      sourceLocationID,
		DestinationLocationID: destinationLocationID,
		Quantity:              quantity,
		MovementType:          string(movementType),
		InitiatedBy:           initiatedBy,
		InitiatedAt:           now,
	}}, nil
}

// Complete finishes the movement. Legal only from INITIATED; the emitted
// event carries everything downstream consumers need to apply the
// location-capacity and stock-item-location updates.
func (m *StockMovement) Complete(completedBy string, now time.Time) ([]Event, error) {
	if m.Status != MovementStatusInitiated {
		return nil, &InvalidMovementStateError{
			MovementID: m.MovementID,
			Current:    m.Status,
			Target:     MovementStatusCompleted,
		}
	}
	if completedBy == "" {
		return nil, errors.New("completer is required")
	}

	m.Status = MovementStatusCompleted
	m.CompletedBy = completedBy
	m.CompletedAt = &now
	m.UpdatedAt = now

	return []Event{&StockMovementCompletedEvent{
		MovementID:            m.MovementID,
		TenantID:              m.TenantID,
		StockItemID:           m.StockItemID,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Quantity:              m.Quantity,
		MovementType:          string(m.MovementType),
		Reason:                m.Reason,
		CompletedBy:           completedBy,
		CompletedAt:           now,
	}}, nil
}

// Cancel abandons the movement. Legal only from INITIATED and requires a
// non-empty reason.
func (m *StockMovement) Cancel(cancelledBy, reason string, now time.Time) ([]Event, error) {
	if m.Status != MovementStatusInitiated {
		return nil, &InvalidMovementStateError{
			MovementID: m.MovementID,
			Current:    m.Status,
			Target:     MovementStatusCancelled,
		}
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if cancelledBy == "" {
		return nil, errors.New("canceller is required")
	}

	m.Status = MovementStatusCancelled
	m.CancelledBy = cancelledBy
	m.CancellationReason = reason
	m.CancelledAt = &now
	m.UpdatedAt = now

	return []Event{&StockMovementCancelledEvent{
		MovementID:  m.MovementID,
		TenantID:    m.TenantID,
		StockItemID: m.StockItemID,
		Reason:      reason,
		CancelledBy: cancelledBy,
		CancelledAt: now,
	}}, nil
}
