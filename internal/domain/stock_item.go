package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockItem is a tenant-scoped unit of stock. Its classification is always
// a deterministic function of its expiration date as of the evaluation
// time. Items are never deleted, only quantity-zeroed.
type StockItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StockItemID    string             `bson:"stockItemId" json:"stockItemId"`
	TenantID       string             `bson:"tenantId" json:"tenantId"`
	WarehouseID    string             `bson:"warehouseId,omitempty" json:"warehouseId,omitempty"`
	SKU            string             `bson:"sku" json:"sku"`
	ProductName    string             `bson:"productName,omitempty" json:"productName,omitempty"`
	BatchNumber    string             `bson:"batchNumber,omitempty" json:"batchNumber,omitempty"`
	ConsignmentID  string             `bson:"consignmentId,omitempty" json:"consignmentId,omitempty"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	ExpirationDate *time.Time         `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
	Classification Classification     `bson:"classification" json:"classification"`
	LocationID     string             `bson:"locationId,omitempty" json:"locationId,omitempty"`
	Version        int64              `bson:"version" json:"version"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewStockItem creates a stock item and classifies it as the final
// construction step. Creation into an expiring classification counts as
// first entry and produces the corresponding alert events.
func NewStockItem(stockItemID, tenantID, warehouseID, sku, productName, batchNumber, consignmentID string, quantity int, expirationDate *time.Time, now time.Time) (*StockItem, []Event, error) {
	if stockItemID == "" {
		return nil, nil, errors.New("stock item id is required")
	}
	if tenantID == "" {
		return nil, nil, errors.New("tenant id is required")
	}
	if sku == "" {
		return nil, nil, errors.New("sku is required")
	}
	if quantity <= 0 {
		return nil, nil, ErrQuantityNotPositive
	}

	item := &StockItem{
		StockItemID:    stockItemID,
		TenantID:       tenantID,
		WarehouseID:    warehouseID,
		SKU:            sku,
		ProductName:    productName,
		BatchNumber:    batchNumber,
		ConsignmentID:  consignmentID,
		Quantity:       quantity,
		ExpirationDate: expirationDate,
		Classification: Classify(expirationDate, now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	events := []Event{&StockItemCreatedEvent{
		StockItemID:    item.StockItemID,
		TenantID:       item.TenantID,
		SKU:            item.SKU,
		BatchNumber:    item.BatchNumber,
		Quantity:       item.Quantity,
		ExpirationDate: item.ExpirationDate,
		Classification: string(item.Classification),
		ConsignmentID:  item.ConsignmentID,
		CreatedAt:      now,
	}}
	events = append(events, item.expiryEvents(now)...)

	return item, events, nil
}

// Reclassify re-evaluates the classification against now. Idempotent:
// an unchanged classification produces no events.
func (s *StockItem) Reclassify(now time.Time) []Event {
	newClassification := Classify(s.ExpirationDate, now)
	if newClassification == s.Classification {
		return nil
	}

	old := s.Classification
	s.Classification = newClassification
	s.UpdatedAt = now

	events := []Event{&StockItemClassifiedEvent{
		StockItemID:       s.StockItemID,
		TenantID:          s.TenantID,
		SKU:               s.SKU,
		OldClassification: string(old),
		NewClassification: string(newClassification),
		ClassifiedAt:      now,
	}}
	events = append(events, s.expiryEvents(now)...)

	return events
}

func (s *StockItem) expiryEvents(now time.Time) []Event {
	if !s.Classification.IsExpiring() {
		return nil
	}

	events := []Event{&ExpiringAlertEvent{
		StockItemID:    s.StockItemID,
		TenantID:       s.TenantID,
		SKU:            s.SKU,
		Classification: string(s.Classification),
		ThresholdDays:  s.Classification.AlertThresholdDays(),
		ExpirationDate: s.ExpirationDate,
		AlertedAt:      now,
	}}

	if s.Classification == ClassificationExpired {
		events = append(events, &StockExpiredEvent{
			StockItemID:    s.StockItemID,
			TenantID:       s.TenantID,
			SKU:            s.SKU,
			ExpirationDate: s.ExpirationDate,
			ExpiredAt:      now,
		})
	}

	return events
}

// SetExpirationDate updates the expiration date and reclassifies
func (s *StockItem) SetExpirationDate(expirationDate *time.Time, now time.Time) []Event {
	s.ExpirationDate = expirationDate
	s.UpdatedAt = now
	return s.Reclassify(now)
}

// AssignLocation records the item's location reference
func (s *StockItem) AssignLocation(locationID string, now time.Time) ([]Event, error) {
	if locationID == "" {
		return nil, errors.New("location id is required")
	}

	s.LocationID = locationID
	s.UpdatedAt = now

	return []Event{&LocationAssignedEvent{
		StockItemID: s.StockItemID,
		TenantID:    s.TenantID,
		SKU:         s.SKU,
		LocationID:  locationID,
		Quantity:    s.Quantity,
		AssignedAt:  now,
	}}, nil
}

// RemoveQuantity decrements the item's quantity, never below zero
func (s *StockItem) RemoveQuantity(quantity int, now time.Time) error {
	if quantity <= 0 {
		return ErrQuantityNotPositive
	}
	if quantity > s.Quantity {
		return &InsufficientStockError{
			SKU:        s.SKU,
			LocationID: s.LocationID,
			Required:   quantity,
			Available:  s.Quantity,
		}
	}

	s.Quantity -= quantity
	s.UpdatedAt = now
	return nil
}

// IsExpired reports whether the item is expired as of now
func (s *StockItem) IsExpired(now time.Time) bool {
	return Classify(s.ExpirationDate, now) == ClassificationExpired
}

// CanBePicked reports whether the item is eligible for picking: it must
// have stock on hand and must not be expired as of now.
func (s *StockItem) CanBePicked(now time.Time) bool {
	return s.Quantity > 0 && !s.IsExpired(now)
}
