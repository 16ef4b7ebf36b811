package domain

import (
	"context"
	"time"
)

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: 20}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// StockItemRepository persists stock items within a tenant scope.
// Save enforces optimistic versioning: saving an aggregate whose stored
// version has moved on fails with a VersionConflictError, which callers
// treat as retryable.
type StockItemRepository interface {
	Save(ctx context.Context, item *StockItem, events []Event) error
	FindByID(ctx context.Context, tenantID, stockItemID string) (*StockItem, error)
	FindBySKU(ctx context.Context, tenantID, sku string, pagination Pagination) ([]*StockItem, error)
	FindUnassigned(ctx context.Context, tenantID string, limit int) ([]*StockItem, error)
	FindByLocation(ctx context.Context, tenantID, locationID string) ([]*StockItem, error)
	FindByClassification(ctx context.Context, tenantID string, classification Classification, pagination Pagination) ([]*StockItem, error)
	FindExpiringBefore(ctx context.Context, tenantID string, before time.Time, limit int) ([]*StockItem, error)
	SaveAll(ctx context.Context, items []*StockItem, events []Event) error
}

// LocationRepository persists locations within a tenant scope
type LocationRepository interface {
	Save(ctx context.Context, location *Location, events []Event) error
	FindByID(ctx context.Context, tenantID, locationID string) (*Location, error)
	FindByBarcode(ctx context.Context, tenantID, barcode string) (*Location, error)
	FindCandidates(ctx context.Context, tenantID string, limit int) ([]*Location, error)
	FindByZone(ctx context.Context, tenantID, zone string, pagination Pagination) ([]*Location, error)
	SaveAll(ctx context.Context, locations []*Location, events []Event) error
}

// StockMovementRepository persists stock movements within a tenant scope
type StockMovementRepository interface {
	Save(ctx context.Context, movement *StockMovement, events []Event) error
	FindByID(ctx context.Context, tenantID, movementID string) (*StockMovement, error)
	FindByStockItem(ctx context.Context, tenantID, stockItemID string, pagination Pagination) ([]*StockMovement, error)
	FindByStatus(ctx context.Context, tenantID string, status MovementStatus, pagination Pagination) ([]*StockMovement, error)
}

// PickingTaskRepository persists picking tasks within a tenant scope
type PickingTaskRepository interface {
	Save(ctx context.Context, task *PickingTask, events []Event) error
	FindByID(ctx context.Context, tenantID, taskID string) (*PickingTask, error)
	FindByLoad(ctx context.Context, tenantID, loadID string) ([]*PickingTask, error)
	FindByStatus(ctx context.Context, tenantID string, status PickingStatus, pagination Pagination) ([]*PickingTask, error)
}

// UnitOfWork persists the outcome of operations that span multiple
// aggregates in a single transaction, together with their outbox events.
// Version checks apply to every aggregate in the batch; any conflict fails
// the whole write with a VersionConflictError.
type UnitOfWork interface {
	SaveAssignment(ctx context.Context, items []*StockItem, locations []*Location, events []Event) error
	SaveMovementClose(ctx context.Context, movement *StockMovement, item *StockItem, locations []*Location, events []Event) error
	SavePick(ctx context.Context, task *PickingTask, items []*StockItem, location *Location, events []Event) error
}

// ConsignmentRepository persists consignments within a tenant scope
type ConsignmentRepository interface {
	Save(ctx context.Context, consignment *Consignment, events []Event) error
	FindByID(ctx context.Context, tenantID, consignmentID string) (*Consignment, error)
	FindByStatus(ctx context.Context, tenantID string, status ConsignmentStatus, pagination Pagination) ([]*Consignment, error)
}
