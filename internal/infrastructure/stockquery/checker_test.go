package stockquery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
)

var checkerNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeStockFinder struct {
	items []*domain.StockItem
	err   error
}

func (f *fakeStockFinder) FindByLocation(_ context.Context, _, _ string) ([]*domain.StockItem, error) {
	return f.items, f.err
}

func newTestChecker(finder *fakeStockFinder) *Checker {
	checker := NewChecker(finder, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	checker.now = func() time.Time { return checkerNow }
	return checker
}

func stockAt(sku string, quantity int, expiration *time.Time) *domain.StockItem {
	return &domain.StockItem{
		StockItemID:    "STK-" + sku,
		TenantID:       "tenant-1",
		SKU:            sku,
		Quantity:       quantity,
		LocationID:     "A-01-01-A",
		ExpirationDate: expiration,
	}
}

func TestCheckStockAvailabilitySumsMatchingSKU(t *testing.T) {
	finder := &fakeStockFinder{items: []*domain.StockItem{
		stockAt("SKU-1", 10, nil),
		stockAt("SKU-1", 5, nil),
		stockAt("SKU-2", 30, nil),
	}}

	available, err := newTestChecker(finder).CheckStockAvailability(context.Background(), "tenant-1", "SKU-1", "A-01-01-A")
	require.NoError(t, err)
	assert.Equal(t, 15, available)
}

func TestCheckStockAvailabilityEmptyLocation(t *testing.T) {
	available, err := newTestChecker(&fakeStockFinder{}).CheckStockAvailability(context.Background(), "tenant-1", "SKU-1", "A-01-01-A")
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestCheckStockAvailabilityPropagatesError(t *testing.T) {
	finder := &fakeStockFinder{err: errors.New("store down")}

	_, err := newTestChecker(finder).CheckStockAvailability(context.Background(), "tenant-1", "SKU-1", "A-01-01-A")
	assert.Error(t, err)
}

func TestIsStockExpired(t *testing.T) {
	past := checkerNow.Add(-24 * time.Hour)
	future := checkerNow.Add(90 * 24 * time.Hour)

	tests := []struct {
		name    string
		items   []*domain.StockItem
		expired bool
	}{
		{
			name:    "fresh stock",
			items:   []*domain.StockItem{stockAt("SKU-1", 10, &future)},
			expired: false,
		},
		{
			name:    "expired stock present",
			items:   []*domain.StockItem{stockAt("SKU-1", 10, &past), stockAt("SKU-1", 10, &future)},
			expired: true,
		},
		{
			name:    "expired but drained",
			items:   []*domain.StockItem{stockAt("SKU-1", 0, &past), stockAt("SKU-1", 10, &future)},
			expired: false,
		},
		{
			name:    "expired stock of another sku",
			items:   []*domain.StockItem{stockAt("SKU-2", 10, &past), stockAt("SKU-1", 10, &future)},
			expired: false,
		},
		{
			name:    "no expiration date",
			items:   []*domain.StockItem{stockAt("SKU-1", 10, nil)},
			expired: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expired, err := newTestChecker(&fakeStockFinder{items: tt.items}).
				IsStockExpired(context.Background(), "tenant-1", "SKU-1", "A-01-01-A")
			require.NoError(t, err)
			assert.Equal(t, tt.expired, expired)
		})
	}
}

func TestCheckerOpensCircuitAfterRepeatedFailures(t *testing.T) {
	finder := &fakeStockFinder{err: errors.New("store down")}
	checker := newTestChecker(finder)

	for i := 0; i < 5; i++ {
		_, err := checker.CheckStockAvailability(context.Background(), "tenant-1", "SKU-1", "A-01-01-A")
		require.Error(t, err)
	}

	// The breaker is open now; the store is no longer consulted
	finder.err = nil
	finder.items = []*domain.StockItem{stockAt("SKU-1", 10, nil)}

	_, err := checker.CheckStockAvailability(context.Background(), "tenant-1", "SKU-1", "A-01-01-A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
