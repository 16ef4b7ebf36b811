package application

import (
	"time"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
)

// StockItemDTO represents a stock item in responses
type StockItemDTO struct {
	StockItemID    string     `json:"stockItemId"`
	TenantID       string     `json:"tenantId"`
	WarehouseID    string     `json:"warehouseId"`
	SKU            string     `json:"sku"`
	ProductName    string     `json:"productName"`
	BatchNumber    string     `json:"batchNumber,omitempty"`
	ConsignmentID  string     `json:"consignmentId,omitempty"`
	Quantity       int        `json:"quantity"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Classification string     `json:"classification"`
	LocationID     string     `json:"locationId,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// LocationDTO represents a storage location in responses
type LocationDTO struct {
	LocationID      string    `json:"locationId"`
	TenantID        string    `json:"tenantId"`
	WarehouseID     string    `json:"warehouseId"`
	Barcode         string    `json:"barcode"`
	Zone            string    `json:"zone"`
	Aisle           string    `json:"aisle"`
	Rack            int       `json:"rack"`
	Level           int       `json:"level"`
	CurrentQuantity int       `json:"currentQuantity"`
	MaxQuantity     *int      `json:"maxQuantity,omitempty"`
	Status          string    `json:"status"`
	BlockReason     string    `json:"blockReason,omitempty"`
	ConditionTags   []string  `json:"conditionTags,omitempty"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StockMovementDTO represents a stock movement in responses
type StockMovementDTO struct {
	MovementID            string     `json:"movementId"`
	TenantID              string     `json:"tenantId"`
	StockItemID           string     `json:"stockItemId"`
	SourceLocationID      string     `json:"sourceLocationId,omitempty"`
	DestinationLocationID string     `json:"destinationLocationId"`
	Quantity              int        `json:"quantity"`
	MovementType          string     `json:"movementType"`
	Status                string     `json:"status"`
	Reason                string     `json:"reason,omitempty"`
	InitiatedBy           string     `json:"initiatedBy"`
	CompletedBy           string     `json:"completedBy,omitempty"`
	CancelledBy           string     `json:"cancelledBy,omitempty"`
	CancellationReason    string     `json:"cancellationReason,omitempty"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
	CancelledAt           *time.Time `json:"cancelledAt,omitempty"`
	InitiatedAt           time.Time  `json:"initiatedAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// PickingTaskDTO represents a picking task in responses
type PickingTaskDTO struct {
	TaskID           string     `json:"taskId"`
	TenantID         string     `json:"tenantId"`
	LoadID           string     `json:"loadId"`
	SKU              string     `json:"sku"`
	ProductName      string     `json:"productName"`
	LocationID       string     `json:"locationId"`
	RequiredQuantity int        `json:"requiredQuantity"`
	Sequence         int        `json:"sequence"`
	Status           string     `json:"status"`
	PickedQuantity   int        `json:"pickedQuantity"`
	PickedBy         string     `json:"pickedBy,omitempty"`
	PickedAt         *time.Time `json:"pickedAt,omitempty"`
	PartialReason    string     `json:"partialReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ConsignmentLineDTO represents a consignment line in responses
type ConsignmentLineDTO struct {
	SKU            string     `json:"sku"`
	ProductName    string     `json:"productName"`
	BatchNumber    string     `json:"batchNumber,omitempty"`
	Quantity       int        `json:"quantity"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// ConsignmentDTO represents a consignment in responses
type ConsignmentDTO struct {
	ConsignmentID string               `json:"consignmentId"`
	TenantID      string               `json:"tenantId"`
	WarehouseID   string               `json:"warehouseId"`
	Reference     string               `json:"reference,omitempty"`
	Status        string               `json:"status"`
	Lines         []ConsignmentLineDTO `json:"lines"`
	ConfirmedBy   string               `json:"confirmedBy,omitempty"`
	ConfirmedAt   *time.Time           `json:"confirmedAt,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// AssignmentResultDTO represents the outcome of a FEFO assignment run
type AssignmentResultDTO struct {
	Assignments map[string]string `json:"assignments"`
	Unassigned  []string          `json:"unassigned"`
}

// ReclassificationResultDTO represents the outcome of a reclassification sweep
type ReclassificationResultDTO struct {
	Examined     int `json:"examined"`
	Reclassified int `json:"reclassified"`
}

func toStockItemDTO(item *domain.StockItem) *StockItemDTO {
	return &StockItemDTO{
		StockItemID:    item.StockItemID,
		TenantID:       item.TenantID,
		WarehouseID:    item.WarehouseID,
		SKU:            item.SKU,
		ProductName:    item.ProductName,
		BatchNumber:    item.BatchNumber,
		ConsignmentID:  item.ConsignmentID,
		Quantity:       item.Quantity,
		ExpirationDate: item.ExpirationDate,
		Classification: string(item.Classification),
		LocationID:     item.LocationID,
		Version:        item.Version,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func toStockItemDTOs(items []*domain.StockItem) []*StockItemDTO {
	dtos := make([]*StockItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toStockItemDTO(item))
	}
	return dtos
}

func toLocationDTO(location *domain.Location) *LocationDTO {
	return &LocationDTO{
		LocationID:      location.LocationID,
		TenantID:        location.TenantID,
		WarehouseID:     location.WarehouseID,
		Barcode:         location.Barcode,
		Zone:            location.Zone,
		Aisle:           location.Aisle,
		Rack:            location.Rack,
		Level:           location.Level,
		CurrentQuantity: location.CurrentQuantity,
		MaxQuantity:     location.MaxQuantity,
		Status:          string(location.Status),
		BlockReason:     location.BlockReason,
		ConditionTags:   location.ConditionTags,
		Version:         location.Version,
		CreatedAt:       location.CreatedAt,
		UpdatedAt:       location.UpdatedAt,
	}
}

func toLocationDTOs(locations []*domain.Location) []*LocationDTO {
	dtos := make([]*LocationDTO, 0, len(locations))
	for _, location := range locations {
		dtos = append(dtos, toLocationDTO(location))
	}
	return dtos
}

func toStockMovementDTO(movement *domain.StockMovement) *StockMovementDTO {
	return &StockMovementDTO{
		MovementID:            movement.MovementID,
		TenantID:              movement.TenantID,
		StockItemID:           movement.StockItemID,
		SourceLocationID:      movement.SourceLocationID,
		DestinationLocationID: movement.DestinationLocationID,
		Quantity:              movement.Quantity,
		MovementType:          string(movement.MovementType),
		Status:                string(movement.Status),
		Reason:                movement.Reason,
		InitiatedBy:           movement.InitiatedBy,
		CompletedBy:           movement.CompletedBy,
		CancelledBy:           movement.CancelledBy,
		CancellationReason:    movement.CancellationReason,
		CompletedAt:           movement.CompletedAt,
		CancelledAt:           movement.CancelledAt,
		InitiatedAt:           movement.InitiatedAt,
		UpdatedAt:             movement.UpdatedAt,
	}
}

func toStockMovementDTOs(movements []*domain.StockMovement) []*StockMovementDTO {
	dtos := make([]*StockMovementDTO, 0, len(movements))
	for _, movement := range movements {
		dtos = append(dtos, toStockMovementDTO(movement))
	}
	return dtos
}

func toPickingTaskDTO(task *domain.PickingTask) *PickingTaskDTO {
	return &PickingTaskDTO{
		TaskID:           task.TaskID,
		TenantID:         task.TenantID,
		LoadID:           task.LoadID,
		SKU:              task.SKU,
		ProductName:      task.ProductName,
		LocationID:       task.LocationID,
		RequiredQuantity: task.RequiredQuantity,
		Sequence:         task.Sequence,
		Status:           string(task.Status),
		PickedQuantity:   task.PickedQuantity,
		PickedBy:         task.PickedBy,
		PickedAt:         task.PickedAt,
		PartialReason:    task.PartialReason,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

func toPickingTaskDTOs(tasks []*domain.PickingTask) []*PickingTaskDTO {
	dtos := make([]*PickingTaskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, toPickingTaskDTO(task))
	}
	return dtos
}

func toConsignmentDTO(consignment *domain.Consignment) *ConsignmentDTO {
	lines := make([]ConsignmentLineDTO, 0, len(consignment.Lines))
	for _, line := range consignment.Lines {
		lines = append(lines, ConsignmentLineDTO{
			SKU:            line.SKU,
			ProductName:    line.ProductName,
			BatchNumber:    line.BatchNumber,
			Quantity:       line.Quantity,
			ExpirationDate: line.ExpirationDate,
		})
	}

	return &ConsignmentDTO{
		ConsignmentID: consignment.ConsignmentID,
		TenantID:      consignment.TenantID,
		WarehouseID:   consignment.WarehouseID,
		Reference:     consignment.Reference,
		Status:        string(consignment.Status),
		Lines:         lines,
		ConfirmedBy:   consignment.ConfirmedBy,
		ConfirmedAt:   consignment.ConfirmedAt,
		CreatedAt:     consignment.CreatedAt,
		UpdatedAt:     consignment.UpdatedAt,
	}
}

func toAssignmentResultDTO(result *domain.AssignmentResult) *AssignmentResultDTO {
	dto := &AssignmentResultDTO{
		Assignments: result.Assignments,
		Unassigned:  result.Unassigned,
	}
	if dto.Assignments == nil {
		dto.Assignments = map[string]string{}
	}
	if dto.Unassigned == nil {
		dto.Unassigned = []string{}
	}
	return dto
}
