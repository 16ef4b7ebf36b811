package cloudevents

import (
	"time"
)

// EventType constants for inventory lifecycle domain events
const (
	// Stock events
	StockItemCreated       = "wms.stock.created"
	StockClassified        = "wms.stock.classified"
	StockExpiringAlert     = "wms.stock.expiring-alert"
	StockExpired           = "wms.stock.expired"
	LocationAssigned       = "wms.stock.location-assigned"
	ReturnLocationAssigned = "wms.stock.return-location-assigned"
	RestockRequested       = "wms.stock.restock-requested"

	// Location events
	LocationCreated       = "wms.location.created"
	LocationStatusChanged = "wms.location.status-changed"

	// Movement events
	MovementInitiated = "wms.movement.initiated"
	MovementCompleted = "wms.movement.completed"
	MovementCancelled = "wms.movement.cancelled"

	// Picking events
	PickTaskCreated            = "wms.picking.task-created"
	PickTaskCompleted          = "wms.picking.task-completed"
	PickTaskPartiallyCompleted = "wms.picking.task-partially-completed"

	// Consignment events
	ConsignmentCreated   = "wms.consignment.created"
	ConsignmentConfirmed = "wms.consignment.confirmed"
)

// Source constants for event sources
const (
	SourceInventoryLifecycle = "/wms/inventory-lifecycle"
)

// WMSCloudEvent represents a CloudEvents v1.0 compliant event
type WMSCloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// Tenant context extensions
	TenantID    string `json:"wmstenantid,omitempty"`
	WarehouseID string `json:"wmswarehouseid,omitempty"`

	// Correlation extensions
	CorrelationID string `json:"wmscorrelationid,omitempty"`
	TraceParent   string `json:"traceparent,omitempty"`
}
