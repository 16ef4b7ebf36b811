package application

import "time"

// CreateStockItemCommand represents the command to register a new stock item
type CreateStockItemCommand struct {
	SKU            string
	ProductName    string
	BatchNumber    string
	ConsignmentID  string
	Quantity       int
	ExpirationDate *time.Time
}

// UpdateExpirationDateCommand represents the command to change an item's expiration date
type UpdateExpirationDateCommand struct {
	StockItemID    string
	ExpirationDate *time.Time
}

// ReclassifyStockItemCommand represents the command to reclassify a single item
type ReclassifyStockItemCommand struct {
	StockItemID string
}

// ReclassifySweepCommand represents the command to reclassify all items whose
// expiration falls within the given horizon
type ReclassifySweepCommand struct {
	HorizonDays int
	Limit       int
}

// AssignLocationsCommand represents the command to assign locations to
// unassigned stock items using FEFO ordering
type AssignLocationsCommand struct {
	StockItemIDs []string
	ItemLimit    int
	LocationIDs  []string
}

// AssignReturnLocationsCommand represents the command to assign return-goods
// locations filtered by a condition tag
type AssignReturnLocationsCommand struct {
	StockItemIDs []string
	Condition    string
	LocationIDs  []string
}

// CreateLocationCommand represents the command to create a storage location
type CreateLocationCommand struct {
	LocationID  string
	Barcode     string
	Zone        string
	Aisle       string
	Rack        int
	Level       int
	MaxQuantity *int
}

// BlockLocationCommand represents the command to block a location
type BlockLocationCommand struct {
	LocationID string
	Reason     string
}

// UnblockLocationCommand represents the command to unblock a location
type UnblockLocationCommand struct {
	LocationID string
}

// CreateStockMovementCommand represents the command to initiate a stock movement
type CreateStockMovementCommand struct {
	StockItemID           string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int
	MovementType          string
	Reason                string
	InitiatedBy           string
}

// CompleteStockMovementCommand represents the command to complete a movement
type CompleteStockMovementCommand struct {
	MovementID  string
	CompletedBy string
}

// CancelStockMovementCommand represents the command to cancel a movement
type CancelStockMovementCommand struct {
	MovementID         string
	CancelledBy        string
	CancellationReason string
}

// CreatePickingTaskCommand represents the command to create a picking task
type CreatePickingTaskCommand struct {
	LoadID           string
	SKU              string
	ProductName      string
	LocationID       string
	RequiredQuantity int
	Sequence         int
}

// ExecutePickCommand represents the command to execute a pick against a task.
// A picked quantity below the required quantity must carry a reason and
// results in a partial completion.
type ExecutePickCommand struct {
	TaskID         string
	PickedQuantity int
	Reason         string
	PickedBy       string
}

// CreateConsignmentCommand represents the command to register an inbound consignment
type CreateConsignmentCommand struct {
	Reference string
	Lines     []ConsignmentLineInput
}

// ConsignmentLineInput represents a single consignment line
type ConsignmentLineInput struct {
	SKU            string
	ProductName    string
	BatchNumber    string
	Quantity       int
	ExpirationDate *time.Time
}

// ConfirmConsignmentCommand represents the command to confirm a consignment
type ConfirmConsignmentCommand struct {
	ConsignmentID string
	ConfirmedBy   string
}

// GetStockItemQuery represents the query to fetch a stock item by id
type GetStockItemQuery struct {
	StockItemID string
}

// ListStockItemsQuery represents the query to list stock items
type ListStockItemsQuery struct {
	SKU            string
	Classification string
	LocationID     string
	Page           int64
	PageSize       int64
}

// ListLocationsQuery represents the query to list locations by zone
type ListLocationsQuery struct {
	Zone     string
	Page     int64
	PageSize int64
}

// ListMovementsQuery represents the query to list movements
type ListMovementsQuery struct {
	StockItemID string
	Status      string
	Page        int64
	PageSize    int64
}

// ListPickingTasksQuery represents the query to list picking tasks
type ListPickingTasksQuery struct {
	LoadID   string
	Status   string
	Page     int64
	PageSize int64
}
