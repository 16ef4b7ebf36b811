// Package stockquery answers live stock availability questions against the
// stock store, shielded by a circuit breaker so a degraded store fails picks
// fast instead of piling up requests.
package stockquery

import (
	"context"
	"log/slog"
	"time"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/resilience"
)

// stockFinder is the slice of the stock repository the checker needs.
type stockFinder interface {
	FindByLocation(ctx context.Context, tenantID, locationID string) ([]*domain.StockItem, error)
}

// Checker implements domain.StockAvailabilityChecker over the stock store.
type Checker struct {
	stock   stockFinder
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	now     func() time.Time
}

// NewChecker creates a new Checker. A nil breaker gets default settings.
func NewChecker(stock stockFinder, breaker *resilience.CircuitBreaker, logger *slog.Logger) *Checker {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("stock-availability"), logger)
	}
	return &Checker{
		stock:   stock,
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
}

// CheckStockAvailability returns the total quantity held for the SKU at the
// location.
func (c *Checker) CheckStockAvailability(ctx context.Context, tenantID, sku, locationID string) (int, error) {
	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		items, err := c.stock.FindByLocation(ctx, tenantID, locationID)
		if err != nil {
			return nil, err
		}

		total := 0
		for _, item := range items {
			if item.SKU == sku {
				total += item.Quantity
			}
		}
		return total, nil
	})
	if err != nil {
		c.logger.Error("Stock availability check failed",
			"tenantId", tenantID,
			"sku", sku,
			"locationId", locationID,
			"error", err,
		)
		return 0, err
	}
	return result.(int), nil
}

// IsStockExpired reports whether any remaining stock for the SKU at the
// location classifies expired. Expired stock sits first in pick order, so
// its presence blocks picking until it is removed.
func (c *Checker) IsStockExpired(ctx context.Context, tenantID, sku, locationID string) (bool, error) {
	now := c.now()
	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		items, err := c.stock.FindByLocation(ctx, tenantID, locationID)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			if item.SKU != sku || item.Quantity == 0 {
				continue
			}
			if domain.Classify(item.ExpirationDate, now) == domain.ClassificationExpired {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
