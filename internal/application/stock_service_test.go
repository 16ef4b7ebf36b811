package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
)

func newStockService(repo *fakeStockRepo) *StockService {
	s := NewStockService(repo, nil, testLogger())
	s.now = fixedClock()
	return s
}

func TestCreateStockItem(t *testing.T) {
	repo := newFakeStockRepo()
	service := newStockService(repo)

	expiration := testNow.AddDate(0, 0, 5)
	dto, err := service.CreateStockItem(testContext(), CreateStockItemCommand{
		SKU:            "SKU-100",
		ProductName:    "Paracetamol 500mg",
		BatchNumber:    "B-2025-01",
		Quantity:       40,
		ExpirationDate: &expiration,
	})
	require.NoError(t, err)

	assert.Equal(t, "tenant-1", dto.TenantID)
	assert.Equal(t, "wh-1", dto.WarehouseID)
	assert.Equal(t, string(domain.ClassificationCritical), dto.Classification)
	assert.NotEmpty(t, dto.StockItemID)

	require.Len(t, repo.items, 1)
	assert.Equal(t, []string{"wms.stock.created", "wms.stock.expiring-alert"}, eventTypes(repo.events))
}

func TestCreateStockItemRequiresTenant(t *testing.T) {
	service := newStockService(newFakeStockRepo())

	_, err := service.CreateStockItem(context.Background(), CreateStockItemCommand{
		SKU:         "SKU-100",
		ProductName: "Paracetamol 500mg",
		Quantity:    1,
	})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.HTTPStatus)
}

func TestCreateStockItemValidation(t *testing.T) {
	service := newStockService(newFakeStockRepo())

	_, err := service.CreateStockItem(testContext(), CreateStockItemCommand{
		SKU:         "SKU-100",
		ProductName: "Paracetamol 500mg",
		Quantity:    0,
	})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestUpdateExpirationDateReclassifies(t *testing.T) {
	repo := newFakeStockRepo()
	service := newStockService(repo)

	dto, err := service.CreateStockItem(testContext(), CreateStockItemCommand{
		SKU:         "SKU-100",
		ProductName: "Paracetamol 500mg",
		Quantity:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ClassificationNormal), dto.Classification)

	expiration := testNow.AddDate(0, 0, 3)
	updated, err := service.UpdateExpirationDate(testContext(), UpdateExpirationDateCommand{
		StockItemID:    dto.StockItemID,
		ExpirationDate: &expiration,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ClassificationCritical), updated.Classification)
	assert.Contains(t, eventTypes(repo.events), "wms.stock.classified")
}

func TestUpdateExpirationDateNotFound(t *testing.T) {
	service := newStockService(newFakeStockRepo())

	expiration := testNow.AddDate(0, 0, 3)
	_, err := service.UpdateExpirationDate(testContext(), UpdateExpirationDateCommand{
		StockItemID:    "STK-missing",
		ExpirationDate: &expiration,
	})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestReclassifyStockItemIsIdempotent(t *testing.T) {
	repo := newFakeStockRepo()
	service := newStockService(repo)

	expiration := testNow.AddDate(0, 0, 3)
	dto, err := service.CreateStockItem(testContext(), CreateStockItemCommand{
		SKU:            "SKU-100",
		ProductName:    "Paracetamol 500mg",
		Quantity:       10,
		ExpirationDate: &expiration,
	})
	require.NoError(t, err)

	eventsBefore := len(repo.events)
	reclassified, err := service.ReclassifyStockItem(testContext(), ReclassifyStockItemCommand{StockItemID: dto.StockItemID})
	require.NoError(t, err)

	assert.Equal(t, dto.Classification, reclassified.Classification)
	assert.Len(t, repo.events, eventsBefore)
}

func TestReclassifySweep(t *testing.T) {
	repo := newFakeStockRepo()
	service := newStockService(repo)

	nearExpiry := testNow.AddDate(0, 0, 20)
	dto, err := service.CreateStockItem(testContext(), CreateStockItemCommand{
		SKU:            "SKU-100",
		ProductName:    "Paracetamol 500mg",
		Quantity:       10,
		ExpirationDate: &nearExpiry,
	})
	require.NoError(t, err)

	// two weeks later the item has drifted into the critical window
	service.now = func() time.Time { return testNow.AddDate(0, 0, 14) }

	result, err := service.ReclassifySweep(testContext(), ReclassifySweepCommand{HorizonDays: 30, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 1, result.Reclassified)
	assert.Equal(t, domain.ClassificationCritical, repo.items[dto.StockItemID].Classification)
}

func TestListStockItemsRequiresFilter(t *testing.T) {
	service := newStockService(newFakeStockRepo())

	_, err := service.ListStockItems(testContext(), ListStockItemsQuery{})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestListStockItemsByClassification(t *testing.T) {
	repo := newFakeStockRepo()
	service := newStockService(repo)

	expiration := testNow.AddDate(0, 0, 3)
	_, err := service.CreateStockItem(testContext(), CreateStockItemCommand{
		SKU:            "SKU-100",
		ProductName:    "Paracetamol 500mg",
		Quantity:       10,
		ExpirationDate: &expiration,
	})
	require.NoError(t, err)

	items, err := service.ListStockItems(testContext(), ListStockItemsQuery{Classification: "CRITICAL"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = service.ListStockItems(testContext(), ListStockItemsQuery{Classification: "BOGUS"})
	require.Error(t, err)
}
