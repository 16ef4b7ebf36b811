package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConsignmentStatus is the lifecycle status of a consignment
type ConsignmentStatus string

const (
	ConsignmentStatusDraft     ConsignmentStatus = "DRAFT"
	ConsignmentStatusConfirmed ConsignmentStatus = "CONFIRMED"
)

// ConsignmentLine is one inbound product line on a consignment
type ConsignmentLine struct {
	SKU            string     `bson:"sku" json:"sku"`
	ProductName    string     `bson:"productName,omitempty" json:"productName,omitempty"`
	BatchNumber    string     `bson:"batchNumber,omitempty" json:"batchNumber,omitempty"`
	Quantity       int        `bson:"quantity" json:"quantity"`
	ExpirationDate *time.Time `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
}

// Consignment is an inbound delivery. Confirming it publishes an event
// that downstream listeners react to by materializing stock items,
// classifying them and running the FEFO assignment.
type Consignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ConsignmentID string             `bson:"consignmentId" json:"consignmentId"`
	TenantID      string             `bson:"tenantId" json:"tenantId"`
	WarehouseID   string             `bson:"warehouseId,omitempty" json:"warehouseId,omitempty"`
	Reference     string             `bson:"reference,omitempty" json:"reference,omitempty"`
	Lines         []ConsignmentLine  `bson:"lines" json:"lines"`
	Status        ConsignmentStatus  `bson:"status" json:"status"`
	ConfirmedBy   string             `bson:"confirmedBy,omitempty" json:"confirmedBy,omitempty"`
	ConfirmedAt   *time.Time         `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	Version       int64              `bson:"version" json:"version"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewConsignment creates a consignment in DRAFT status
func NewConsignment(consignmentID, tenantID, warehouseID, reference string, lines []ConsignmentLine, now time.Time) (*Consignment, []Event, error) {
	if consignmentID == "" {
		return nil, nil, errors.New("consignment id is required")
	}
	if tenantID == "" {
		return nil, nil, errors.New("tenant id is required")
	}
	if len(lines) == 0 {
		return nil, nil, errors.New("at least one consignment line is required")
	}
	for i, line := range lines {
		if line.SKU == "" {
			return nil, nil, fmt.Errorf("line %d: sku is required", i)
		}
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("line %d: quantity must be greater than zero", i)
		}
	}

	c := &Consignment{
		ConsignmentID: consignmentID,
		TenantID:      tenantID,
		WarehouseID:   warehouseID,
		Reference:     reference,
		Lines:         lines,
		Status:        ConsignmentStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return c, []Event{&ConsignmentCreatedEvent{
		ConsignmentID: consignmentID,
		TenantID:      tenantID,
		Reference:     reference,
		LineCount:     len(lines),
		CreatedAt:     now,
	}}, nil
}

// Confirm moves the consignment from DRAFT to CONFIRMED. The emitted
// event carries every line so listeners can materialize stock items
// without loading the consignment.
func (c *Consignment) Confirm(confirmedBy string, now time.Time) ([]Event, error) {
	if c.Status != ConsignmentStatusDraft {
		return nil, fmt.Errorf("consignment %s already %s", c.ConsignmentID, c.Status)
	}
	if confirmedBy == "" {
		return nil, errors.New("confirmer is required")
	}

	c.Status = ConsignmentStatusConfirmed
	c.ConfirmedBy = confirmedBy
	c.ConfirmedAt = &now
	c.UpdatedAt = now

	return []Event{&ConsignmentConfirmedEvent{
		ConsignmentID: c.ConsignmentID,
		TenantID:      c.TenantID,
		Reference:     c.Reference,
		Lines:         c.Lines,
		ConfirmedBy:   confirmedBy,
		ConfirmedAt:   now,
	}}, nil
}
