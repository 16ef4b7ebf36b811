package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationStatus is the lifecycle status of a warehouse location
type LocationStatus string

const (
	LocationStatusAvailable LocationStatus = "AVAILABLE"
	LocationStatusReserved  LocationStatus = "RESERVED"
	LocationStatusOccupied  LocationStatus = "OCCUPIED"
	LocationStatusBlocked   LocationStatus = "BLOCKED"
)

// IsValid checks if the status is a known value
func (s LocationStatus) IsValid() bool {
	switch s {
	case LocationStatusAvailable, LocationStatusReserved, LocationStatusOccupied, LocationStatusBlocked:
		return true
	default:
		return false
	}
}

// Location is a tenant-scoped storage slot. It owns its own capacity and
// status; stock items and movements reference it by id only.
//
// Invariant: when MaxQuantity is set, CurrentQuantity never exceeds it,
// and a non-blocked location is OCCUPIED exactly when the two are equal.
// A nil MaxQuantity means unlimited capacity.
type Location struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	LocationID      string             `bson:"locationId" json:"locationId"`
	TenantID        string             `bson:"tenantId" json:"tenantId"`
	WarehouseID     string             `bson:"warehouseId,omitempty" json:"warehouseId,omitempty"`
	Barcode         string             `bson:"barcode" json:"barcode"`
	Zone            string             `bson:"zone" json:"zone"`
	Aisle           string             `bson:"aisle" json:"aisle"`
	Rack            int                `bson:"rack" json:"rack"`
	Level           int                `bson:"level" json:"level"`
	CurrentQuantity int                `bson:"currentQuantity" json:"currentQuantity"`
	MaxQuantity     *int               `bson:"maxQuantity,omitempty" json:"maxQuantity,omitempty"`
	Status          LocationStatus     `bson:"status" json:"status"`
	BlockReason     string             `bson:"blockReason,omitempty" json:"blockReason,omitempty"`
	ConditionTags   []string           `bson:"conditionTags,omitempty" json:"conditionTags,omitempty"`
	Version         int64              `bson:"version" json:"version"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewLocation creates a location in AVAILABLE status
func NewLocation(locationID, tenantID, warehouseID, barcode, zone, aisle string, rack, level int, maxQuantity *int, now time.Time) (*Location, []Event, error) {
	if locationID == "" {
		return nil, nil, errors.New("location id is required")
	}
	if tenantID == "" {
		return nil, nil, errors.New("tenant id is required")
	}
	if barcode == "" {
		return nil, nil, errors.New("barcode is required")
	}
	if maxQuantity != nil && *maxQuantity <= 0 {
		return nil, nil, errors.New("maximum quantity must be greater than zero")
	}

	loc := &Location{
		LocationID:  locationID,
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		Barcode:     barcode,
		Zone:        zone,
		Aisle:       aisle,
		Rack:        rack,
		Level:       level,
		MaxQuantity: maxQuantity,
		Status:      LocationStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return loc, []Event{&LocationCreatedEvent{
		LocationID: locationID,
		TenantID:   tenantID,
		Barcode:    barcode,
		Zone:       zone,
		CreatedAt:  now,
	}}, nil
}

// IsBounded reports whether the location has a maximum quantity
func (l *Location) IsBounded() bool {
	return l.MaxQuantity != nil
}

// AvailableCapacity returns the remaining capacity. The second return is
// false for unbounded locations, whose capacity is unlimited.
func (l *Location) AvailableCapacity() (int, bool) {
	if l.MaxQuantity == nil {
		return 0, false
	}
	return *l.MaxQuantity - l.CurrentQuantity, true
}

// HasCapacity reports whether the location can hold the given quantity.
// Unbounded locations always have capacity.
func (l *Location) HasCapacity(quantity int) bool {
	available, bounded := l.AvailableCapacity()
	if !bounded {
		return true
	}
	return available >= quantity
}

// AcceptsStock reports whether the location's status allows stock to be
// assigned to it.
func (l *Location) AcceptsStock() bool {
	return l.Status == LocationStatusAvailable || l.Status == LocationStatusReserved
}

// Reserve adds quantity to the location. It fails when the location does
// not accept stock or lacks capacity. Filling a bounded location to its
// maximum transitions it to OCCUPIED.
func (l *Location) Reserve(quantity int, now time.Time) ([]Event, error) {
	if quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}
	if !l.AcceptsStock() {
		return nil, &LocationNotAvailableError{LocationID: l.LocationID, Status: l.Status}
	}
	if !l.HasCapacity(quantity) {
		available, _ := l.AvailableCapacity()
		return nil, &InsufficientCapacityError{
			LocationID: l.LocationID,
			Required:   quantity,
			Available:  available,
		}
	}

	l.CurrentQuantity += quantity
	l.UpdatedAt = now

	if l.MaxQuantity != nil && l.CurrentQuantity == *l.MaxQuantity {
		return l.transition(LocationStatusOccupied, "", now), nil
	}
	return nil, nil
}

// Release removes quantity from the location. Dropping below a bounded
// location's maximum transitions OCCUPIED back to AVAILABLE so the freed
// capacity can be reused.
func (l *Location) Release(quantity int, now time.Time) ([]Event, error) {
	if quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}
	if quantity > l.CurrentQuantity {
		return nil, &InsufficientStockError{
			LocationID: l.LocationID,
			Required:   quantity,
			Available:  l.CurrentQuantity,
		}
	}

	l.CurrentQuantity -= quantity
	l.UpdatedAt = now

	if l.Status == LocationStatusOccupied {
		return l.transition(LocationStatusAvailable, "", now), nil
	}
	return nil, nil
}

// Block takes the location out of service with a mandatory reason
func (l *Location) Block(reason string, now time.Time) ([]Event, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if l.Status == LocationStatusBlocked {
		return nil, &InvalidLocationStateError{
			LocationID: l.LocationID,
			Current:    l.Status,
			Target:     LocationStatusBlocked,
		}
	}

	l.BlockReason = reason
	l.UpdatedAt = now
	return l.transition(LocationStatusBlocked, reason, now), nil
}

// Unblock returns a blocked location to service. The resulting status is
// derived from capacity so the OCCUPIED invariant holds.
func (l *Location) Unblock(now time.Time) ([]Event, error) {
	if l.Status != LocationStatusBlocked {
		return nil, &InvalidLocationStateError{
			LocationID: l.LocationID,
			Current:    l.Status,
			Target:     LocationStatusAvailable,
		}
	}

	l.BlockReason = ""
	l.UpdatedAt = now

	target := LocationStatusAvailable
	if l.MaxQuantity != nil && l.CurrentQuantity == *l.MaxQuantity {
		target = LocationStatusOccupied
	}
	return l.transition(target, "", now), nil
}

func (l *Location) transition(target LocationStatus, reason string, now time.Time) []Event {
	old := l.Status
	l.Status = target
	return []Event{&LocationStatusChangedEvent{
		LocationID: l.LocationID,
		TenantID:   l.TenantID,
		OldStatus:  string(old),
		NewStatus:  string(target),
		Reason:     reason,
		ChangedAt:  now,
	}}
}

// MatchesCondition reports whether the location is tagged compatible with
// the given product condition. Untagged locations accept any condition.
func (l *Location) MatchesCondition(condition string) bool {
	if condition == "" || len(l.ConditionTags) == 0 {
		return true
	}
	for _, tag := range l.ConditionTags {
		if tag == condition {
			return true
		}
	}
	return false
}
