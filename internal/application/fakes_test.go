package application

import (
	"context"
	"time"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testContext() context.Context {
	return tenant.ToContext(context.Background(), &tenant.Context{
		TenantID:    "tenant-1",
		WarehouseID: "wh-1",
		UserID:      "user-1",
	})
}

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("application-test"))
}

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

type fakeStockRepo struct {
	items  map[string]*domain.StockItem
	events []domain.Event
	err    error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{items: map[string]*domain.StockItem{}}
}

func (r *fakeStockRepo) Save(ctx context.Context, item *domain.StockItem, events []domain.Event) error {
	if r.err != nil {
		return r.err
	}
	r.items[item.StockItemID] = item
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeStockRepo) FindByID(ctx context.Context, tenantID, stockItemID string) (*domain.StockItem, error) {
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.items[stockItemID]
	if !ok || item.TenantID != tenantID {
		return nil, nil
	}
	return item, nil
}

func (r *fakeStockRepo) FindBySKU(ctx context.Context, tenantID, sku string, pagination domain.Pagination) ([]*domain.StockItem, error) {
	var out []*domain.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.SKU == sku {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindUnassigned(ctx context.Context, tenantID string, limit int) ([]*domain.StockItem, error) {
	var out []*domain.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.LocationID == "" && len(out) < limit {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindByLocation(ctx context.Context, tenantID, locationID string) ([]*domain.StockItem, error) {
	var out []*domain.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.LocationID == locationID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindByClassification(ctx context.Context, tenantID string, classification domain.Classification, pagination domain.Pagination) ([]*domain.StockItem, error) {
	var out []*domain.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.Classification == classification {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindExpiringBefore(ctx context.Context, tenantID string, before time.Time, limit int) ([]*domain.StockItem, error) {
	var out []*domain.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.ExpirationDate != nil && item.ExpirationDate.Before(before) && len(out) < limit {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) SaveAll(ctx context.Context, items []*domain.StockItem, events []domain.Event) error {
	for _, item := range items {
		r.items[item.StockItemID] = item
	}
	r.events = append(r.events, events...)
	return nil
}

type fakeLocationRepo struct {
	locations map[string]*domain.Location
	order     []string
	events    []domain.Event
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: map[string]*domain.Location{}}
}

func (r *fakeLocationRepo) add(location *domain.Location) {
	if _, ok := r.locations[location.LocationID]; !ok {
		r.order = append(r.order, location.LocationID)
	}
	r.locations[location.LocationID] = location
}

func (r *fakeLocationRepo) Save(ctx context.Context, location *domain.Location, events []domain.Event) error {
	r.add(location)
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeLocationRepo) FindByID(ctx context.Context, tenantID, locationID string) (*domain.Location, error) {
	location, ok := r.locations[locationID]
	if !ok || location.TenantID != tenantID {
		return nil, nil
	}
	return location, nil
}

func (r *fakeLocationRepo) FindByBarcode(ctx context.Context, tenantID, barcode string) (*domain.Location, error) {
	for _, location := range r.locations {
		if location.TenantID == tenantID && location.Barcode == barcode {
			return location, nil
		}
	}
	return nil, nil
}

func (r *fakeLocationRepo) FindCandidates(ctx context.Context, tenantID string, limit int) ([]*domain.Location, error) {
	var out []*domain.Location
	for _, id := range r.order {
		location := r.locations[id]
		if location.TenantID == tenantID && location.AcceptsStock() && len(out) < limit {
			out = append(out, location)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) FindByZone(ctx context.Context, tenantID, zone string, pagination domain.Pagination) ([]*domain.Location, error) {
	var out []*domain.Location
	for _, id := range r.order {
		location := r.locations[id]
		if location.TenantID == tenantID && location.Zone == zone {
			out = append(out, location)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) SaveAll(ctx context.Context, locations []*domain.Location, events []domain.Event) error {
	for _, location := range locations {
		r.add(location)
	}
	r.events = append(r.events, events...)
	return nil
}

type fakeMovementRepo struct {
	movements map[string]*domain.StockMovement
	events    []domain.Event
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{movements: map[string]*domain.StockMovement{}}
}

func (r *fakeMovementRepo) Save(ctx context.Context, movement *domain.StockMovement, events []domain.Event) error {
	r.movements[movement.MovementID] = movement
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeMovementRepo) FindByID(ctx context.Context, tenantID, movementID string) (*domain.StockMovement, error) {
	movement, ok := r.movements[movementID]
	if !ok || movement.TenantID != tenantID {
		return nil, nil
	}
	return movement, nil
}

func (r *fakeMovementRepo) FindByStockItem(ctx context.Context, tenantID, stockItemID string, pagination domain.Pagination) ([]*domain.StockMovement, error) {
	var out []*domain.StockMovement
	for _, movement := range r.movements {
		if movement.TenantID == tenantID && movement.StockItemID == stockItemID {
			out = append(out, movement)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByStatus(ctx context.Context, tenantID string, status domain.MovementStatus, pagination domain.Pagination) ([]*domain.StockMovement, error) {
	var out []*domain.StockMovement
	for _, movement := range r.movements {
		if movement.TenantID == tenantID && movement.Status == status {
			out = append(out, movement)
		}
	}
	return out, nil
}

type fakePickingRepo struct {
	tasks  map[string]*domain.PickingTask
	events []domain.Event
}

func newFakePickingRepo() *fakePickingRepo {
	return &fakePickingRepo{tasks: map[string]*domain.PickingTask{}}
}

func (r *fakePickingRepo) Save(ctx context.Context, task *domain.PickingTask, events []domain.Event) error {
	r.tasks[task.TaskID] = task
	r.events = append(r.events, events...)
	return nil
}

func (r *fakePickingRepo) FindByID(ctx context.Context, tenantID, taskID string) (*domain.PickingTask, error) {
	task, ok := r.tasks[taskID]
	if !ok || task.TenantID != tenantID {
		return nil, nil
	}
	return task, nil
}

func (r *fakePickingRepo) FindByLoad(ctx context.Context, tenantID, loadID string) ([]*domain.PickingTask, error) {
	var out []*domain.PickingTask
	for _, task := range r.tasks {
		if task.TenantID == tenantID && task.LoadID == loadID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (r *fakePickingRepo) FindByStatus(ctx context.Context, tenantID string, status domain.PickingStatus, pagination domain.Pagination) ([]*domain.PickingTask, error) {
	var out []*domain.PickingTask
	for _, task := range r.tasks {
		if task.TenantID == tenantID && task.Status == status {
			out = append(out, task)
		}
	}
	return out, nil
}

type fakeConsignmentRepo struct {
	consignments map[string]*domain.Consignment
	events       []domain.Event
}

func newFakeConsignmentRepo() *fakeConsignmentRepo {
	return &fakeConsignmentRepo{consignments: map[string]*domain.Consignment{}}
}

func (r *fakeConsignmentRepo) Save(ctx context.Context, consignment *domain.Consignment, events []domain.Event) error {
	r.consignments[consignment.ConsignmentID] = consignment
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeConsignmentRepo) FindByID(ctx context.Context, tenantID, consignmentID string) (*domain.Consignment, error) {
	consignment, ok := r.consignments[consignmentID]
	if !ok || consignment.TenantID != tenantID {
		return nil, nil
	}
	return consignment, nil
}

func (r *fakeConsignmentRepo) FindByStatus(ctx context.Context, tenantID string, status domain.ConsignmentStatus, pagination domain.Pagination) ([]*domain.Consignment, error) {
	var out []*domain.Consignment
	for _, consignment := range r.consignments {
		if consignment.TenantID == tenantID && consignment.Status == status {
			out = append(out, consignment)
		}
	}
	return out, nil
}

// fakeUnitOfWork applies cross-aggregate writes straight to the fake repos
type fakeUnitOfWork struct {
	stockRepo           *fakeStockRepo
	locationRepo        *fakeLocationRepo
	movementRepo        *fakeMovementRepo
	pickingRepo         *fakePickingRepo
	events              []domain.Event
	err                 error
	assignmentConflicts int
}

func (u *fakeUnitOfWork) SaveAssignment(ctx context.Context, items []*domain.StockItem, locations []*domain.Location, events []domain.Event) error {
	if u.err != nil {
		return u.err
	}
	if u.assignmentConflicts > 0 {
		u.assignmentConflicts--
		return &domain.VersionConflictError{Entity: "Location", ID: "LOC-CONFLICT", Version: 1}
	}
	for _, item := range items {
		u.stockRepo.items[item.StockItemID] = item
	}
	for _, location := range locations {
		u.locationRepo.add(location)
	}
	u.events = append(u.events, events...)
	return nil
}

func (u *fakeUnitOfWork) SaveMovementClose(ctx context.Context, movement *domain.StockMovement, item *domain.StockItem, locations []*domain.Location, events []domain.Event) error {
	if u.err != nil {
		return u.err
	}
	u.movementRepo.movements[movement.MovementID] = movement
	u.stockRepo.items[item.StockItemID] = item
	for _, location := range locations {
		u.locationRepo.add(location)
	}
	u.events = append(u.events, events...)
	return nil
}

func (u *fakeUnitOfWork) SavePick(ctx context.Context, task *domain.PickingTask, items []*domain.StockItem, location *domain.Location, events []domain.Event) error {
	if u.err != nil {
		return u.err
	}
	u.pickingRepo.tasks[task.TaskID] = task
	for _, item := range items {
		u.stockRepo.items[item.StockItemID] = item
	}
	if location != nil {
		u.locationRepo.add(location)
	}
	u.events = append(u.events, events...)
	return nil
}

type fakeAvailabilityChecker struct {
	available int
	expired   bool
	err       error
}

func (c *fakeAvailabilityChecker) CheckStockAvailability(ctx context.Context, tenantID, sku, locationID string) (int, error) {
	return c.available, c.err
}

func (c *fakeAvailabilityChecker) IsStockExpired(ctx context.Context, tenantID, sku, locationID string) (bool, error) {
	return c.expired, c.err
}

func eventTypes(events []domain.Event) []string {
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.EventType())
	}
	return types
}
