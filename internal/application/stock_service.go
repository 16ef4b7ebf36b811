package application

import (
	"context"
	"time"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/metrics"
	"github.com/wms-platform/inventory-lifecycle/pkg/resilience"
	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
)

// StockService implements the application layer for stock item lifecycle operations
type StockService struct {
	stockRepo domain.StockItemRepository
	metrics   *metrics.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(stockRepo domain.StockItemRepository, m *metrics.Metrics, logger *logging.Logger) *StockService {
	return &StockService{
		stockRepo: stockRepo,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateStockItem registers a new stock item. The item is classified by
// expiration as part of construction, so a freshly created item can already
// carry an expiring alert.
func (s *StockService) CreateStockItem(ctx context.Context, cmd CreateStockItemCommand) (*StockItemDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	item, events, err := domain.NewStockItem(
		newStockItemID(),
		tc.TenantID,
		tc.WarehouseID,
		cmd.SKU,
		cmd.ProductName,
		cmd.BatchNumber,
		cmd.ConsignmentID,
		cmd.Quantity,
		cmd.ExpirationDate,
		s.now().UTC(),
	)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.stockRepo.Save(ctx, item, events); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save stock item")
		return nil, errors.ErrInternal("failed to save stock item").Wrap(err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemClassified(string(item.Classification))
	}

	s.logger.WithContext(ctx).Info("Created stock item",
		"stockItemId", item.StockItemID,
		"sku", item.SKU,
		"quantity", item.Quantity,
		"classification", item.Classification,
	)

	return toStockItemDTO(item), nil
}

// UpdateExpirationDate changes the expiration date and reclassifies the item
func (s *StockService) UpdateExpirationDate(ctx context.Context, cmd UpdateExpirationDateCommand) (*StockItemDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	var item *domain.StockItem
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		item, err = s.loadStockItem(ctx, tc.TenantID, cmd.StockItemID)
		if err != nil {
			return err
		}

		events := item.SetExpirationDate(cmd.ExpirationDate, s.now().UTC())
		return s.stockRepo.Save(ctx, item, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to update expiration date")
	}

	s.logger.WithContext(ctx).Info("Updated expiration date",
		"stockItemId", item.StockItemID,
		"classification", item.Classification,
	)

	return toStockItemDTO(item), nil
}

// ReclassifyStockItem re-evaluates the expiration classification of one item.
// Re-running against an unchanged item is a no-op.
func (s *StockService) ReclassifyStockItem(ctx context.Context, cmd ReclassifyStockItemCommand) (*StockItemDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	var item *domain.StockItem
	var changed bool
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		item, err = s.loadStockItem(ctx, tc.TenantID, cmd.StockItemID)
		if err != nil {
			return err
		}

		events := item.Reclassify(s.now().UTC())
		changed = len(events) > 0
		if !changed {
			return nil
		}
		return s.stockRepo.Save(ctx, item, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to reclassify stock item")
	}

	if changed && s.metrics != nil {
		s.metrics.RecordItemClassified(string(item.Classification))
	}

	return toStockItemDTO(item), nil
}

// ReclassifySweep reclassifies every item whose expiration date falls within
// the given horizon. Intended to run on a schedule so items drift through
// NEAR_EXPIRY and CRITICAL as their dates approach.
func (s *StockService) ReclassifySweep(ctx context.Context, cmd ReclassifySweepCommand) (*ReclassificationResultDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	horizon := cmd.HorizonDays
	if horizon <= 0 {
		horizon = domain.NearExpiryThresholdDays
	}
	limit := cmd.Limit
	if limit <= 0 {
		limit = DefaultAssignmentBatchSize
	}

	now := s.now().UTC()
	before := now.AddDate(0, 0, horizon+1)

	items, err := s.stockRepo.FindExpiringBefore(ctx, tc.TenantID, before, limit)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to load expiring stock items")
		return nil, errors.ErrInternal("failed to load expiring stock items").Wrap(err)
	}

	result := &ReclassificationResultDTO{Examined: len(items)}
	for _, item := range items {
		events := item.Reclassify(now)
		if len(events) == 0 {
			continue
		}

		if err := s.stockRepo.Save(ctx, item, events); err != nil {
			if domain.IsVersionConflict(err) {
				// another writer got there first; the next sweep retries
				continue
			}
			s.logger.WithContext(ctx).WithError(err).Error("Failed to save reclassified item",
				"stockItemId", item.StockItemID,
			)
			return nil, errors.ErrInternal("failed to save reclassified item").Wrap(err)
		}

		result.Reclassified++
		if s.metrics != nil {
			s.metrics.RecordItemClassified(string(item.Classification))
		}
	}

	s.logger.WithContext(ctx).Info("Reclassification sweep finished",
		"examined", result.Examined,
		"reclassified", result.Reclassified,
	)

	return result, nil
}

// GetStockItem returns a stock item by id
func (s *StockService) GetStockItem(ctx context.Context, query GetStockItemQuery) (*StockItemDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	item, err := s.loadStockItem(ctx, tc.TenantID, query.StockItemID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load stock item")
	}

	return toStockItemDTO(item), nil
}

// ListStockItems lists stock items filtered by SKU, classification or location
func (s *StockService) ListStockItems(ctx context.Context, query ListStockItemsQuery) ([]*StockItemDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	pagination := paginationFrom(query.Page, query.PageSize)

	var items []*domain.StockItem
	switch {
	case query.LocationID != "":
		items, err = s.stockRepo.FindByLocation(ctx, tc.TenantID, query.LocationID)
	case query.Classification != "":
		classification := domain.Classification(query.Classification)
		if !classification.IsValid() {
			return nil, errors.ErrValidation("invalid classification").WithDetail("classification", query.Classification)
		}
		items, err = s.stockRepo.FindByClassification(ctx, tc.TenantID, classification, pagination)
	case query.SKU != "":
		items, err = s.stockRepo.FindBySKU(ctx, tc.TenantID, query.SKU, pagination)
	default:
		return nil, errors.ErrValidation("one of sku, classification or locationId is required")
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to list stock items")
		return nil, errors.ErrInternal("failed to list stock items").Wrap(err)
	}

	return toStockItemDTOs(items), nil
}

func (s *StockService) loadStockItem(ctx context.Context, tenantID, stockItemID string) (*domain.StockItem, error) {
	item, err := s.stockRepo.FindByID(ctx, tenantID, stockItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrStockItemNotFound
	}
	return item, nil
}
