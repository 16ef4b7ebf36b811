package domain

import "time"

// Event is implemented by all domain events. State-changing aggregate
// operations return the events they produce; the application layer stores
// them in the outbox within the same transaction as the aggregate.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// StockItemCreatedEvent is emitted when a stock item is created
type StockItemCreatedEvent struct {
	StockItemID    string     `json:"stockItemId"`
	TenantID       string     `json:"tenantId"`
	SKU            string     `json:"sku"`
	BatchNumber    string     `json:"batchNumber,omitempty"`
	Quantity       int        `json:"quantity"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Classification string     `json:"classification"`
	ConsignmentID  string     `json:"consignmentId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (e *StockItemCreatedEvent) EventType() string     { return "wms.stock.created" }
func (e *StockItemCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// StockItemClassifiedEvent is emitted when a stock item's classification changes
type StockItemClassifiedEvent struct {
	StockItemID       string    `json:"stockItemId"`
	TenantID          string    `json:"tenantId"`
	SKU               string    `json:"sku"`
	OldClassification string    `json:"oldClassification"`
	NewClassification string    `json:"newClassification"`
	ClassifiedAt      time.Time `json:"classifiedAt"`
}

func (e *StockItemClassifiedEvent) EventType() string     { return "wms.stock.classified" }
func (e *StockItemClassifiedEvent) OccurredAt() time.Time { return e.ClassifiedAt }

// ExpiringAlertEvent is emitted on first entry into an expiring classification
type ExpiringAlertEvent struct {
	StockItemID    string     `json:"stockItemId"`
	TenantID       string     `json:"tenantId"`
	SKU            string     `json:"sku"`
	Classification string     `json:"classification"`
	ThresholdDays  int        `json:"thresholdDays"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	AlertedAt      time.Time  `json:"alertedAt"`
}

func (e *ExpiringAlertEvent) EventType() string     { return "wms.stock.expiring-alert" }
func (e *ExpiringAlertEvent) OccurredAt() time.Time { return e.AlertedAt }

// StockExpiredEvent is emitted when a stock item first classifies as expired
type StockExpiredEvent struct {
	StockItemID    string     `json:"stockItemId"`
	TenantID       string     `json:"tenantId"`
	SKU            string     `json:"sku"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	ExpiredAt      time.Time  `json:"expiredAt"`
}

func (e *StockExpiredEvent) EventType() string     { return "wms.stock.expired" }
func (e *StockExpiredEvent) OccurredAt() time.Time { return e.ExpiredAt }

// LocationAssignedEvent is emitted when a stock item is assigned a location
type LocationAssignedEvent struct {
	StockItemID string    `json:"stockItemId"`
	TenantID    string    `json:"tenantId"`
	SKU         string    `json:"sku"`
	LocationID  string    `json:"locationId"`
	Quantity    int       `json:"quantity"`
	AssignedAt  time.Time `json:"assignedAt"`
}

func (e *LocationAssignedEvent) EventType() string     { return "wms.stock.location-assigned" }
func (e *LocationAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// LineAssignment is one item-to-location pairing in a batch assignment
type LineAssignment struct {
	StockItemID string `json:"stockItemId"`
	SKU         string `json:"sku"`
	LocationID  string `json:"locationId"`
	Quantity    int    `json:"quantity"`
}

// ReturnLocationAssignedEvent is emitted once per return-goods batch,
// carrying every line assignment made in the batch.
type ReturnLocationAssignedEvent struct {
	TenantID    string           `json:"tenantId"`
	Assignments []LineAssignment `json:"assignments"`
	AssignedAt  time.Time        `json:"assignedAt"`
}

func (e *ReturnLocationAssignedEvent) EventType() string     { return "wms.stock.return-location-assigned" }
func (e *ReturnLocationAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// RestockRequestedEvent is emitted for items a FEFO batch could not place
type RestockRequestedEvent struct {
	StockItemID string    `json:"stockItemId"`
	TenantID    string    `json:"tenantId"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (e *RestockRequestedEvent) EventType() string     { return "wms.stock.restock-requested" }
func (e *RestockRequestedEvent) OccurredAt() time.Time { return e.RequestedAt }

// LocationCreatedEvent is emitted when a location is created
type LocationCreatedEvent struct {
	LocationID string    `json:"locationId"`
	TenantID   string    `json:"tenantId"`
	Barcode    string    `json:"barcode"`
	Zone       string    `json:"zone"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *LocationCreatedEvent) EventType() string     { return "wms.location.created" }
func (e *LocationCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// LocationStatusChangedEvent is emitted on every location status transition
type LocationStatusChangedEvent struct {
	LocationID string    `json:"locationId"`
	TenantID   string    `json:"tenantId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changedAt"`
}

func (e *LocationStatusChangedEvent) EventType() string     { return "wms.location.status-changed" }
func (e *LocationStatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// StockMovementInitiatedEvent is emitted when a movement is initiated
type StockMovementInitiatedEvent struct {
	MovementID            string    `json:"movementId"`
	TenantID              string    `json:"tenantId"`
	StockItemID           string    `json:"stockItemId"`
	SourceLocationID      string    `json:"sourceLocationId"`
	DestinationLocationID string    `json:"destinationLocationId"`
	Quantity              int       `json:"quantity"`
	MovementType          string    `json:"movementType"`
	InitiatedBy           string    `json:"initiatedBy"`
	InitiatedAt           time.Time `json:"initiatedAt"`
}

func (e *StockMovementInitiatedEvent) EventType() string     { return "wms.movement.initiated" }
func (e *StockMovementInitiatedEvent) OccurredAt() time.Time { return e.InitiatedAt }

// StockMovementCompletedEvent carries everything downstream consumers need
// to update location capacity and the stock item's location reference.
type StockMovementCompletedEvent struct {
	MovementID            string    `json:"movementId"`
	TenantID              string    `json:"tenantId"`
	StockItemID           string    `json:"stockItemId"`
	SourceLocationID      string    `json:"sourceLocationId"`
	DestinationLocationID string    `json:"destinationLocationId"`
	Quantity              int       `json:"quantity"`
	MovementType          string    `json:"movementType"`
	Reason                string    `json:"reason,omitempty"`
	CompletedBy           string    `json:"completedBy"`
	CompletedAt           time.Time `json:"completedAt"`
}

func (e *StockMovementCompletedEvent) EventType() string     { return "wms.movement.completed" }
func (e *StockMovementCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// StockMovementCancelledEvent is emitted when a movement is cancelled
type StockMovementCancelledEvent struct {
	MovementID  string    `json:"movementId"`
	TenantID    string    `json:"tenantId"`
	StockItemID string    `json:"stockItemId"`
	Reason      string    `json:"reason"`
	CancelledBy string    `json:"cancelledBy"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *StockMovementCancelledEvent) EventType() string     { return "wms.movement.cancelled" }
func (e *StockMovementCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// PickingTaskCreatedEvent is emitted when a picking task is created
type PickingTaskCreatedEvent struct {
	TaskID           string    `json:"taskId"`
	TenantID         string    `json:"tenantId"`
	LoadID           string    `json:"loadId,omitempty"`
	SKU              string    `json:"sku"`
	LocationID       string    `json:"locationId"`
	RequiredQuantity int       `json:"requiredQuantity"`
	Sequence         int       `json:"sequence"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (e *PickingTaskCreatedEvent) EventType() string     { return "wms.picking.task-created" }
func (e *PickingTaskCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// PickingTaskCompletedEvent is emitted on a full pick
type PickingTaskCompletedEvent struct {
	TaskID         string    `json:"taskId"`
	TenantID       string    `json:"tenantId"`
	SKU            string    `json:"sku"`
	LocationID     string    `json:"locationId"`
	PickedQuantity int       `json:"pickedQuantity"`
	PickedBy       string    `json:"pickedBy"`
	PickedAt       time.Time `json:"pickedAt"`
}

func (e *PickingTaskCompletedEvent) EventType() string     { return "wms.picking.task-completed" }
func (e *PickingTaskCompletedEvent) OccurredAt() time.Time { return e.PickedAt }

// PickingTaskPartiallyCompletedEvent is emitted on a partial pick
type PickingTaskPartiallyCompletedEvent struct {
	TaskID           string    `json:"taskId"`
	TenantID         string    `json:"tenantId"`
	SKU              string    `json:"sku"`
	LocationID       string    `json:"locationId"`
	RequiredQuantity int       `json:"requiredQuantity"`
	PickedQuantity   int       `json:"pickedQuantity"`
	Reason           string    `json:"reason"`
	PickedBy         string    `json:"pickedBy"`
	PickedAt         time.Time `json:"pickedAt"`
}

func (e *PickingTaskPartiallyCompletedEvent) EventType() string {
	return "wms.picking.task-partially-completed"
}
func (e *PickingTaskPartiallyCompletedEvent) OccurredAt() time.Time { return e.PickedAt }

// ConsignmentCreatedEvent is emitted when a consignment is created
type ConsignmentCreatedEvent struct {
	ConsignmentID string    `json:"consignmentId"`
	TenantID      string    `json:"tenantId"`
	Reference     string    `json:"reference,omitempty"`
	LineCount     int       `json:"lineCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (e *ConsignmentCreatedEvent) EventType() string     { return "wms.consignment.created" }
func (e *ConsignmentCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// ConsignmentConfirmedEvent triggers stock item materialization downstream
type ConsignmentConfirmedEvent struct {
	ConsignmentID string            `json:"consignmentId"`
	TenantID      string            `json:"tenantId"`
	Reference     string            `json:"reference,omitempty"`
	Lines         []ConsignmentLine `json:"lines"`
	ConfirmedBy   string            `json:"confirmedBy"`
	ConfirmedAt   time.Time         `json:"confirmedAt"`
}

func (e *ConsignmentConfirmedEvent) EventType() string     { return "wms.consignment.confirmed" }
func (e *ConsignmentConfirmedEvent) OccurredAt() time.Time { return e.ConfirmedAt }
