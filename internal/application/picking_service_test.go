package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
)

type pickingFixture struct {
	service      *PickingService
	taskRepo     *fakePickingRepo
	stockRepo    *fakeStockRepo
	locationRepo *fakeLocationRepo
	uow          *fakeUnitOfWork
	checker      *fakeAvailabilityChecker
}

func newPickingFixture(t *testing.T) *pickingFixture {
	t.Helper()
	taskRepo := newFakePickingRepo()
	stockRepo := newFakeStockRepo()
	locationRepo := newFakeLocationRepo()
	uow := &fakeUnitOfWork{stockRepo: stockRepo, locationRepo: locationRepo, pickingRepo: taskRepo}
	checker := &fakeAvailabilityChecker{available: 100}

	service := NewPickingService(taskRepo, stockRepo, locationRepo, uow, checker, nil, testLogger())
	service.now = fixedClock()

	return &pickingFixture{
		service:      service,
		taskRepo:     taskRepo,
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		uow:          uow,
		checker:      checker,
	}
}

func (f *pickingFixture) seed(t *testing.T, quantity int) (*domain.StockItem, *domain.Location) {
	t.Helper()

	location, _, err := domain.NewLocation("A-01-01-A", "tenant-1", "wh-1", "BC-1", "A", "01", 1, 1, intPtrApp(100), testNow)
	require.NoError(t, err)
	_, err = location.Reserve(quantity, testNow)
	require.NoError(t, err)

	item, _, err := domain.NewStockItem("STK-1", "tenant-1", "wh-1", "SKU-1", "Product 1", "", "", quantity, nil, testNow)
	require.NoError(t, err)
	_, err = item.AssignLocation(location.LocationID, testNow)
	require.NoError(t, err)

	f.stockRepo.items[item.StockItemID] = item
	f.locationRepo.add(location)

	return item, location
}

func (f *pickingFixture) createTask(t *testing.T, required int) *PickingTaskDTO {
	t.Helper()
	dto, err := f.service.CreatePickingTask(testContext(), CreatePickingTaskCommand{
		LoadID:           "LOAD-1",
		SKU:              "SKU-1",
		ProductName:      "Product 1",
		LocationID:       "A-01-01-A",
		RequiredQuantity: required,
		Sequence:         1,
	})
	require.NoError(t, err)
	return dto
}

func TestCreatePickingTask(t *testing.T) {
	f := newPickingFixture(t)
	f.seed(t, 50)

	dto := f.createTask(t, 20)

	assert.Equal(t, string(domain.PickingStatusPending), dto.Status)
	assert.Contains(t, eventTypes(f.taskRepo.events), "wms.picking.task-created")
}

func TestExecutePickFull(t *testing.T) {
	f := newPickingFixture(t)
	item, location := f.seed(t, 50)
	dto := f.createTask(t, 20)

	picked, err := f.service.ExecutePick(testContext(), ExecutePickCommand{
		TaskID:         dto.TaskID,
		PickedQuantity: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.PickingStatusCompleted), picked.Status)
	assert.Equal(t, 20, picked.PickedQuantity)
	assert.Equal(t, "user-1", picked.PickedBy)

	assert.Equal(t, 30, item.Quantity)
	assert.Equal(t, 30, location.CurrentQuantity)
	assert.Contains(t, eventTypes(f.uow.events), "wms.picking.task-completed")
}

func TestExecutePickPartial(t *testing.T) {
	f := newPickingFixture(t)
	item, _ := f.seed(t, 50)
	dto := f.createTask(t, 20)

	picked, err := f.service.ExecutePick(testContext(), ExecutePickCommand{
		TaskID:         dto.TaskID,
		PickedQuantity: 12,
		Reason:         "damaged stock in slot",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.PickingStatusPartiallyCompleted), picked.Status)
	assert.Equal(t, 12, picked.PickedQuantity)
	assert.Equal(t, "damaged stock in slot", picked.PartialReason)
	assert.Equal(t, 38, item.Quantity)
	assert.Contains(t, eventTypes(f.uow.events), "wms.picking.task-partially-completed")
}

func TestExecutePickPartialRequiresReason(t *testing.T) {
	f := newPickingFixture(t)
	f.seed(t, 50)
	dto := f.createTask(t, 20)

	_, err := f.service.ExecutePick(testContext(), ExecutePickCommand{
		TaskID:         dto.TaskID,
		PickedQuantity: 12,
	})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestExecutePickInvalidQuantity(t *testing.T) {
	f := newPickingFixture(t)
	f.seed(t, 50)
	dto := f.createTask(t, 20)

	for _, quantity := range []int{0, -1, 21} {
		_, err := f.service.ExecutePick(testContext(), ExecutePickCommand{
			TaskID:         dto.TaskID,
			PickedQuantity: quantity,
			Reason:         "short",
		})
		require.Error(t, err, "quantity %d", quantity)
	}

	task := f.taskRepo.tasks[dto.TaskID]
	assert.Equal(t, domain.PickingStatusPending, task.Status)
	assert.Equal(t, 0, task.PickedQuantity)
}

func TestExecutePickExpiredStock(t *testing.T) {
	f := newPickingFixture(t)
	f.seed(t, 50)
	f.checker.expired = true
	dto := f.createTask(t, 20)

	_, err := f.service.ExecutePick(testContext(), ExecutePickCommand{
		TaskID:         dto.TaskID,
		PickedQuantity: 20,
	})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestExecutePickInsufficientStock(t *testing.T) {
	f := newPickingFixture(t)
	f.seed(t, 50)
	f.checker.available = 5
	dto := f.createTask(t, 20)

	_, err := f.service.ExecutePick(testContext(), ExecutePickCommand{
		TaskID:         dto.TaskID,
		PickedQuantity: 20,
	})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestExecutePickTerminalTask(t *testing.T) {
	f := newPickingFixture(t)
	f.seed(t, 50)
	dto := f.createTask(t, 20)

	_, err := f.service.ExecutePick(testContext(), ExecutePickCommand{TaskID: dto.TaskID, PickedQuantity: 20})
	require.NoError(t, err)

	_, err = f.service.ExecutePick(testContext(), ExecutePickCommand{TaskID: dto.TaskID, PickedQuantity: 20})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestExecutePickDrainsEarliestExpiringFirst(t *testing.T) {
	f := newPickingFixture(t)

	location, _, err := domain.NewLocation("A-01-01-A", "tenant-1", "wh-1", "BC-1", "A", "01", 1, 1, intPtrApp(100), testNow)
	require.NoError(t, err)
	_, err = location.Reserve(30, testNow)
	require.NoError(t, err)
	f.locationRepo.add(location)

	early := testNow.AddDate(0, 0, 60)
	late := testNow.AddDate(0, 0, 200)

	itemEarly, _, err := domain.NewStockItem("STK-early", "tenant-1", "wh-1", "SKU-1", "Product 1", "", "", 15, &early, testNow)
	require.NoError(t, err)
	_, err = itemEarly.AssignLocation(location.LocationID, testNow)
	require.NoError(t, err)
	itemLate, _, err := domain.NewStockItem("STK-late", "tenant-1", "wh-1", "SKU-1", "Product 1", "", "", 15, &late, testNow)
	require.NoError(t, err)
	_, err = itemLate.AssignLocation(location.LocationID, testNow)
	require.NoError(t, err)
	f.stockRepo.items[itemEarly.StockItemID] = itemEarly
	f.stockRepo.items[itemLate.StockItemID] = itemLate

	dto := f.createTask(t, 20)

	_, err = f.service.ExecutePick(testContext(), ExecutePickCommand{TaskID: dto.TaskID, PickedQuantity: 20})
	require.NoError(t, err)

	assert.Equal(t, 0, itemEarly.Quantity)
	assert.Equal(t, 10, itemLate.Quantity)
}
