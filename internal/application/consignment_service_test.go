package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
)

type consignmentFixture struct {
	service         *ConsignmentService
	consignmentRepo *fakeConsignmentRepo
	stockRepo       *fakeStockRepo
	locationRepo    *fakeLocationRepo
	uow             *fakeUnitOfWork
}

func newConsignmentFixture(t *testing.T) *consignmentFixture {
	t.Helper()
	consignmentRepo := newFakeConsignmentRepo()
	stockRepo := newFakeStockRepo()
	locationRepo := newFakeLocationRepo()
	uow := &fakeUnitOfWork{stockRepo: stockRepo, locationRepo: locationRepo}

	service := NewConsignmentService(consignmentRepo, stockRepo, locationRepo, uow, nil, testLogger())
	service.now = fixedClock()

	return &consignmentFixture{
		service:         service,
		consignmentRepo: consignmentRepo,
		stockRepo:       stockRepo,
		locationRepo:    locationRepo,
		uow:             uow,
	}
}

func (f *consignmentFixture) create(t *testing.T) *ConsignmentDTO {
	t.Helper()
	soon := testNow.AddDate(0, 0, 20)
	later := testNow.AddDate(0, 0, 120)
	dto, err := f.service.CreateConsignment(testContext(), CreateConsignmentCommand{
		Reference: "PO-2025-0042",
		Lines: []ConsignmentLineInput{
			{SKU: "SKU-1", ProductName: "Product 1", BatchNumber: "B-1", Quantity: 10, ExpirationDate: &later},
			{SKU: "SKU-2", ProductName: "Product 2", BatchNumber: "B-2", Quantity: 5, ExpirationDate: &soon},
		},
	})
	require.NoError(t, err)
	return dto
}

func TestCreateConsignment(t *testing.T) {
	f := newConsignmentFixture(t)

	dto := f.create(t)

	assert.Equal(t, string(domain.ConsignmentStatusDraft), dto.Status)
	assert.Len(t, dto.Lines, 2)
	assert.Contains(t, eventTypes(f.consignmentRepo.events), "wms.consignment.created")
}

func TestCreateConsignmentRequiresLines(t *testing.T) {
	f := newConsignmentFixture(t)

	_, err := f.service.CreateConsignment(testContext(), CreateConsignmentCommand{Reference: "PO-1"})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestConfirmConsignment(t *testing.T) {
	f := newConsignmentFixture(t)
	dto := f.create(t)

	confirmed, err := f.service.ConfirmConsignment(testContext(), ConfirmConsignmentCommand{ConsignmentID: dto.ConsignmentID})
	require.NoError(t, err)

	assert.Equal(t, string(domain.ConsignmentStatusConfirmed), confirmed.Status)
	assert.Equal(t, "user-1", confirmed.ConfirmedBy)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Contains(t, eventTypes(f.consignmentRepo.events), "wms.consignment.confirmed")
}

func TestConfirmConsignmentTwiceFails(t *testing.T) {
	f := newConsignmentFixture(t)
	dto := f.create(t)

	_, err := f.service.ConfirmConsignment(testContext(), ConfirmConsignmentCommand{ConsignmentID: dto.ConsignmentID})
	require.NoError(t, err)

	_, err = f.service.ConfirmConsignment(testContext(), ConfirmConsignmentCommand{ConsignmentID: dto.ConsignmentID})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestMaterializeConfirmedConsignment(t *testing.T) {
	f := newConsignmentFixture(t)
	dto := f.create(t)

	location, _, err := domain.NewLocation("A-01-01-A", "tenant-1", "wh-1", "BC-1", "A", "01", 1, 1, intPtrApp(100), testNow)
	require.NoError(t, err)
	f.locationRepo.add(location)

	_, err = f.service.ConfirmConsignment(testContext(), ConfirmConsignmentCommand{ConsignmentID: dto.ConsignmentID})
	require.NoError(t, err)

	result, err := f.service.MaterializeConfirmedConsignment(testContext(), dto.ConsignmentID)
	require.NoError(t, err)

	assert.Len(t, result.Assignments, 2)
	assert.Empty(t, result.Unassigned)
	assert.Len(t, f.stockRepo.items, 2)
	assert.Equal(t, 15, location.CurrentQuantity)

	types := eventTypes(f.uow.events)
	assert.Contains(t, types, "wms.stock.created")
	assert.Contains(t, types, "wms.stock.location-assigned")

	for _, item := range f.stockRepo.items {
		assert.Equal(t, dto.ConsignmentID, item.ConsignmentID)
		assert.Equal(t, location.LocationID, item.LocationID)
		assert.NotEqual(t, "", string(item.Classification))
	}
}

func TestMaterializeRequiresConfirmedConsignment(t *testing.T) {
	f := newConsignmentFixture(t)
	dto := f.create(t)

	_, err := f.service.MaterializeConfirmedConsignment(testContext(), dto.ConsignmentID)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestMaterializeUnplacedLinesRequestRestock(t *testing.T) {
	f := newConsignmentFixture(t)
	dto := f.create(t)

	// capacity for one line only
	location, _, err := domain.NewLocation("A-01-01-A", "tenant-1", "wh-1", "BC-1", "A", "01", 1, 1, intPtrApp(5), testNow)
	require.NoError(t, err)
	f.locationRepo.add(location)

	_, err = f.service.ConfirmConsignment(testContext(), ConfirmConsignmentCommand{ConsignmentID: dto.ConsignmentID})
	require.NoError(t, err)

	result, err := f.service.MaterializeConfirmedConsignment(testContext(), dto.ConsignmentID)
	require.NoError(t, err)

	assert.Len(t, result.Assignments, 1)
	assert.Len(t, result.Unassigned, 1)
	assert.Contains(t, eventTypes(f.uow.events), "wms.stock.restock-requested")
}

// A save that loses the optimistic-versioning race must not leak a
// location assigned on the failed attempt into the retried save: an item
// the retry cannot place is persisted without a location.
func TestMaterializeRetryDropsStaleAssignment(t *testing.T) {
	f := newConsignmentFixture(t)

	exp := testNow.AddDate(0, 0, 120)
	dto, err := f.service.CreateConsignment(testContext(), CreateConsignmentCommand{
		Reference: "PO-2025-0043",
		Lines: []ConsignmentLineInput{
			{SKU: "SKU-1", ProductName: "Product 1", BatchNumber: "B-1", Quantity: 5, ExpirationDate: &exp},
		},
	})
	require.NoError(t, err)

	// exactly one candidate, filled to its maximum by the first attempt
	location, _, err := domain.NewLocation("A-01-01-A", "tenant-1", "wh-1", "BC-1", "A", "01", 1, 1, intPtrApp(5), testNow)
	require.NoError(t, err)
	f.locationRepo.add(location)

	_, err = f.service.ConfirmConsignment(testContext(), ConfirmConsignmentCommand{ConsignmentID: dto.ConsignmentID})
	require.NoError(t, err)

	f.uow.assignmentConflicts = 1

	result, err := f.service.MaterializeConfirmedConsignment(testContext(), dto.ConsignmentID)
	require.NoError(t, err)

	assert.Empty(t, result.Assignments)
	assert.Len(t, result.Unassigned, 1)

	require.Len(t, f.stockRepo.items, 1)
	for _, item := range f.stockRepo.items {
		assert.Equal(t, "", item.LocationID)
	}
}
