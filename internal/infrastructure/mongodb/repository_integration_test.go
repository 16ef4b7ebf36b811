package mongodb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/mongodb"
	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
	wmstesting "github.com/wms-platform/inventory-lifecycle/pkg/testing"
)

type RepositoryIntegrationTestSuite struct {
	suite.Suite
	mongoContainer *wmstesting.MongoDBContainer
	client         *mongodb.Client
	eventFactory   *cloudevents.EventFactory
	stockRepo      *StockItemRepository
	locationRepo   *LocationRepository
	movementRepo   *StockMovementRepository
	pickingRepo    *PickingTaskRepository
	uow            *UnitOfWork
	ctx            context.Context
	now            time.Time
}

func (s *RepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = tenant.ToContext(context.Background(), &tenant.Context{
		TenantID:    "tenant-001",
		WarehouseID: "wh-001",
		UserID:      "user-001",
	})
	s.now = time.Now().UTC()

	startCtx, cancel := wmstesting.CreateTestContext(2 * time.Minute)
	defer cancel()

	// Transactions need a replica set, even a single-node one
	container, err := wmstesting.NewMongoDBReplicaSetContainer(startCtx)
	s.Require().NoError(err)
	s.mongoContainer = container

	client, err := mongodb.NewClient(startCtx, &mongodb.Config{
		URI:            container.URI,
		Database:       "inventory_lifecycle_test",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	s.Require().NoError(err)
	s.client = client

	s.eventFactory = cloudevents.NewEventFactory("inventory-lifecycle")
	s.stockRepo = NewStockItemRepository(client, s.eventFactory)
	s.locationRepo = NewLocationRepository(client, s.eventFactory)
	s.movementRepo = NewStockMovementRepository(client, s.eventFactory)
	s.pickingRepo = NewPickingTaskRepository(client, s.eventFactory)
	s.uow = NewUnitOfWork(client, s.eventFactory, s.stockRepo, s.locationRepo, s.movementRepo, s.pickingRepo)
}

func (s *RepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close(context.Background())
	}
	if s.mongoContainer != nil {
		s.Require().NoError(s.mongoContainer.Close(context.Background()))
	}
}

func (s *RepositoryIntegrationTestSuite) TearDownTest() {
	db := s.client.Database()
	for _, name := range []string{"stock_items", "locations", "stock_movements", "picking_tasks", "consignments", "outbox_events"} {
		db.Collection(name).Drop(context.Background())
	}
}

func TestRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}

func (s *RepositoryIntegrationTestSuite) newStockItem(stockItemID, sku string, quantity int, expiration *time.Time) (*domain.StockItem, []domain.Event) {
	item, events, err := domain.NewStockItem(stockItemID, "tenant-001", "wh-001", sku, "Test Product", "BATCH-1", "", quantity, expiration, s.now)
	s.Require().NoError(err)
	return item, events
}

func (s *RepositoryIntegrationTestSuite) newLocation(locationID string, maxQuantity *int) (*domain.Location, []domain.Event) {
	parts := strings.Split(locationID, "-")
	location, events, err := domain.NewLocation(locationID, "tenant-001", "wh-001", "BC-"+locationID, parts[0], parts[1], 1, 1, maxQuantity, s.now)
	s.Require().NoError(err)
	return location, events
}

func (s *RepositoryIntegrationTestSuite) outboxCount() int64 {
	count, err := s.client.Database().Collection("outbox_events").CountDocuments(context.Background(), bson.M{})
	s.Require().NoError(err)
	return count
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_SaveAndFind() {
	expiration := s.now.Add(20 * 24 * time.Hour)
	item, events := s.newStockItem("STK-001", "SKU-001", 25, &expiration)

	err := s.stockRepo.Save(s.ctx, item, events)
	s.Require().NoError(err)
	s.Equal(int64(1), item.Version)

	found, err := s.stockRepo.FindByID(s.ctx, "tenant-001", "STK-001")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("SKU-001", found.SKU)
	s.Equal(25, found.Quantity)
	s.Equal(domain.ClassificationNearExpiry, found.Classification)
	s.Equal(int64(1), found.Version)
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_SaveWritesOutboxInSameTransaction() {
	expiration := s.now.Add(200 * 24 * time.Hour)
	item, events := s.newStockItem("STK-002", "SKU-002", 10, &expiration)
	s.Require().NotEmpty(events)

	err := s.stockRepo.Save(s.ctx, item, events)
	s.Require().NoError(err)

	s.Equal(int64(len(events)), s.outboxCount())

	var outboxDoc bson.M
	err = s.client.Database().Collection("outbox_events").
		FindOne(context.Background(), bson.M{"aggregateId": "STK-002"}).Decode(&outboxDoc)
	s.Require().NoError(err)
	s.Equal("wms.stock.events", outboxDoc["topic"])
	s.Equal("StockItem", outboxDoc["aggregateType"])
	s.Equal("wms.stock.created", outboxDoc["eventType"])
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_VersionConflictOnStaleWrite() {
	item, events := s.newStockItem("STK-003", "SKU-003", 10, nil)
	s.Require().NoError(s.stockRepo.Save(s.ctx, item, events))

	first, err := s.stockRepo.FindByID(s.ctx, "tenant-001", "STK-003")
	s.Require().NoError(err)
	stale, err := s.stockRepo.FindByID(s.ctx, "tenant-001", "STK-003")
	s.Require().NoError(err)

	s.Require().NoError(s.stockRepo.Save(s.ctx, first, nil))
	s.Equal(int64(2), first.Version)

	err = s.stockRepo.Save(s.ctx, stale, nil)
	s.Require().Error(err)
	s.True(domain.IsVersionConflict(err))
	s.Equal(int64(1), stale.Version, "stale copy keeps its loaded version after a failed save")
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_DuplicateInsertIsVersionConflict() {
	item, events := s.newStockItem("STK-004", "SKU-004", 5, nil)
	s.Require().NoError(s.stockRepo.Save(s.ctx, item, events))

	duplicate, _ := s.newStockItem("STK-004", "SKU-004", 5, nil)
	err := s.stockRepo.Save(s.ctx, duplicate, nil)
	s.Require().Error(err)
	s.True(domain.IsVersionConflict(err))
	s.Equal(int64(0), duplicate.Version)
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_FindExpiringBefore() {
	soon := s.now.Add(5 * 24 * time.Hour)
	later := s.now.Add(100 * 24 * time.Hour)

	itemSoon, eventsSoon := s.newStockItem("STK-EXP-1", "SKU-EXP", 10, &soon)
	itemLater, eventsLater := s.newStockItem("STK-EXP-2", "SKU-EXP", 10, &later)
	itemNone, eventsNone := s.newStockItem("STK-EXP-3", "SKU-EXP", 10, nil)
	s.Require().NoError(s.stockRepo.Save(s.ctx, itemSoon, eventsSoon))
	s.Require().NoError(s.stockRepo.Save(s.ctx, itemLater, eventsLater))
	s.Require().NoError(s.stockRepo.Save(s.ctx, itemNone, eventsNone))

	found, err := s.stockRepo.FindExpiringBefore(s.ctx, "tenant-001", s.now.Add(30*24*time.Hour), 50)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("STK-EXP-1", found[0].StockItemID)
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_FindUnassigned() {
	placed, eventsPlaced := s.newStockItem("STK-PL-1", "SKU-PL", 10, nil)
	placed.LocationID = "A-01"
	unplaced, eventsUnplaced := s.newStockItem("STK-PL-2", "SKU-PL", 10, nil)
	s.Require().NoError(s.stockRepo.Save(s.ctx, placed, eventsPlaced))
	s.Require().NoError(s.stockRepo.Save(s.ctx, unplaced, eventsUnplaced))

	found, err := s.stockRepo.FindUnassigned(s.ctx, "tenant-001", 50)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("STK-PL-2", found[0].StockItemID)
}

func (s *RepositoryIntegrationTestSuite) TestStockItemRepository_TenantIsolation() {
	item, events := s.newStockItem("STK-SHARED", "SKU-T", 10, nil)
	s.Require().NoError(s.stockRepo.Save(s.ctx, item, events))

	other, _, err := domain.NewStockItem("STK-SHARED", "tenant-002", "wh-002", "SKU-T", "Test Product", "BATCH-1", "", 10, nil, s.now)
	s.Require().NoError(err)
	otherCtx := tenant.ToContext(context.Background(), &tenant.Context{TenantID: "tenant-002", WarehouseID: "wh-002"})
	s.Require().NoError(s.stockRepo.Save(otherCtx, other, nil))

	found, err := s.stockRepo.FindByID(s.ctx, "tenant-001", "STK-SHARED")
	s.Require().NoError(err)
	s.Equal("tenant-001", found.TenantID)

	found, err = s.stockRepo.FindByID(s.ctx, "tenant-002", "STK-SHARED")
	s.Require().NoError(err)
	s.Equal("tenant-002", found.TenantID)

	missing, err := s.stockRepo.FindByID(s.ctx, "tenant-003", "STK-SHARED")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *RepositoryIntegrationTestSuite) TestLocationRepository_FindCandidatesSkipsBlockedAndOccupied() {
	max := 100
	available, availableEvents := s.newLocation("A-01", &max)
	blocked, blockedEvents := s.newLocation("A-02", &max)
	blockEvents, err := blocked.Block("damaged rack", s.now)
	s.Require().NoError(err)
	occupied, occupiedEvents := s.newLocation("B-01", &max)
	occupied.Status = domain.LocationStatusOccupied
	occupied.CurrentQuantity = 100

	s.Require().NoError(s.locationRepo.Save(s.ctx, available, availableEvents))
	s.Require().NoError(s.locationRepo.Save(s.ctx, blocked, append(blockedEvents, blockEvents...)))
	s.Require().NoError(s.locationRepo.Save(s.ctx, occupied, occupiedEvents))

	candidates, err := s.locationRepo.FindCandidates(s.ctx, "tenant-001", 10)
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal("A-01", candidates[0].LocationID)
}

func (s *RepositoryIntegrationTestSuite) TestLocationRepository_FindCandidatesOrderedByZoneAisle() {
	for _, id := range []string{"B-02", "A-02", "B-01", "A-01"} {
		location, events := s.newLocation(id, nil)
		s.Require().NoError(s.locationRepo.Save(s.ctx, location, events))
	}

	candidates, err := s.locationRepo.FindCandidates(s.ctx, "tenant-001", 10)
	s.Require().NoError(err)
	s.Require().Len(candidates, 4)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.LocationID)
	}
	s.Equal([]string{"A-01", "A-02", "B-01", "B-02"}, ids)
}

func (s *RepositoryIntegrationTestSuite) TestUnitOfWork_SaveAssignmentPersistsBothAggregates() {
	max := 50
	location, locationEvents := s.newLocation("A-01", &max)
	s.Require().NoError(s.locationRepo.Save(s.ctx, location, locationEvents))

	item, itemEvents := s.newStockItem("STK-ASG-1", "SKU-ASG", 20, nil)

	candidates, err := s.locationRepo.FindCandidates(s.ctx, "tenant-001", 10)
	s.Require().NoError(err)
	result, err := domain.AssignFEFO([]*domain.StockItem{item}, candidates, s.now)
	s.Require().NoError(err)
	s.Require().Len(result.Assignments, 1)

	err = s.uow.SaveAssignment(s.ctx, []*domain.StockItem{item}, candidates, append(itemEvents, result.Events...))
	s.Require().NoError(err)

	savedItem, err := s.stockRepo.FindByID(s.ctx, "tenant-001", "STK-ASG-1")
	s.Require().NoError(err)
	s.Equal("A-01", savedItem.LocationID)

	savedLocation, err := s.locationRepo.FindByID(s.ctx, "tenant-001", "A-01")
	s.Require().NoError(err)
	s.Equal(20, savedLocation.CurrentQuantity)
	s.Equal(domain.LocationStatusReserved, savedLocation.Status)
}

func (s *RepositoryIntegrationTestSuite) TestUnitOfWork_SaveAssignmentRollsBackOnConflict() {
	max := 50
	location, locationEvents := s.newLocation("A-01", &max)
	s.Require().NoError(s.locationRepo.Save(s.ctx, location, locationEvents))

	stale, err := s.locationRepo.FindByID(s.ctx, "tenant-001", "A-01")
	s.Require().NoError(err)

	// Another writer advances the location version
	current, err := s.locationRepo.FindByID(s.ctx, "tenant-001", "A-01")
	s.Require().NoError(err)
	s.Require().NoError(s.locationRepo.Save(s.ctx, current, nil))

	item, itemEvents := s.newStockItem("STK-ASG-2", "SKU-ASG", 20, nil)
	result, err := domain.AssignFEFO([]*domain.StockItem{item}, []*domain.Location{stale}, s.now)
	s.Require().NoError(err)

	err = s.uow.SaveAssignment(s.ctx, []*domain.StockItem{item}, []*domain.Location{stale}, append(itemEvents, result.Events...))
	s.Require().Error(err)
	s.True(domain.IsVersionConflict(err))

	// The whole batch rolled back: no stock item, no outbox rows, and the
	// in-memory versions are back where a retry expects them
	missing, err := s.stockRepo.FindByID(s.ctx, "tenant-001", "STK-ASG-2")
	s.Require().NoError(err)
	s.Nil(missing)
	s.Equal(int64(0), item.Version)
	s.Equal(int64(1), stale.Version)

	count, err := s.client.Database().Collection("outbox_events").
		CountDocuments(context.Background(), bson.M{"aggregateId": "STK-ASG-2"})
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}

func (s *RepositoryIntegrationTestSuite) TestMovementRepository_SaveAndFindByStockItem() {
	movement, events, err := domain.NewStockMovement("MOV-001", "tenant-001", "STK-001", "A-01", "B-01", 10, domain.MovementTypeRelocation, "relocation", "user-001", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.movementRepo.Save(s.ctx, movement, events))

	found, err := s.movementRepo.FindByStockItem(s.ctx, "tenant-001", "STK-001", domain.Pagination{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(domain.MovementStatusInitiated, found[0].Status)
}

func (s *RepositoryIntegrationTestSuite) TestPickingTaskRepository_FindByLoadOrderedBySequence() {
	for _, seq := range []int{3, 1, 2} {
		task, events, err := domain.NewPickingTask(
			"PCK-00"+string(rune('0'+seq)), "tenant-001", "LOAD-001", "SKU-001", "Test Product", "A-01", 10, seq, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.pickingRepo.Save(s.ctx, task, events))
	}

	tasks, err := s.pickingRepo.FindByLoad(s.ctx, "tenant-001", "LOAD-001")
	s.Require().NoError(err)
	s.Require().Len(tasks, 3)
	s.Equal(1, tasks[0].Sequence)
	s.Equal(2, tasks[1].Sequence)
	s.Equal(3, tasks[2].Sequence)
}
