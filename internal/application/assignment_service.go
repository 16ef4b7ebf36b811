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

const (
	strategyFEFO   = "fefo"
	strategyReturn = "return"
)

// AssignmentService runs FEFO location assignment over unassigned stock
type AssignmentService struct {
	stockRepo    domain.StockItemRepository
	locationRepo domain.LocationRepository
	uow          domain.UnitOfWork
	metrics      *metrics.Metrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	stockRepo domain.StockItemRepository,
	locationRepo domain.LocationRepository,
	uow domain.UnitOfWork,
	m *metrics.Metrics,
	logger *logging.Logger,
) *AssignmentService {
	return &AssignmentService{
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		uow:          uow,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// AssignLocations assigns storage locations to stock items in FEFO order.
// Without explicit item ids it picks up the tenant's unassigned items.
// Items that fit nowhere end up in the Unassigned list; that is a normal
// outcome and raises a restock-requested event rather than an error.
func (s *AssignmentService) AssignLocations(ctx context.Context, cmd AssignLocationsCommand) (*AssignmentResultDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	var result *domain.AssignmentResult
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		items, err := s.loadItems(ctx, tc.TenantID, cmd.StockItemIDs, cmd.ItemLimit)
		if err != nil {
			return err
		}
		candidates, err := s.loadCandidates(ctx, tc.TenantID, cmd.LocationIDs)
		if err != nil {
			return err
		}

		result, err = domain.AssignFEFO(items, candidates, s.now().UTC())
		if err != nil {
			return err
		}

		return s.persist(ctx, items, candidates, result)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to assign locations")
	}

	s.recordAssignment(ctx, strategyFEFO, result)
	return toAssignmentResultDTO(result), nil
}

// AssignReturnLocations assigns return-goods locations, restricting
// candidates to locations compatible with the goods condition. All line
// assignments are reported in a single batch event.
func (s *AssignmentService) AssignReturnLocations(ctx context.Context, cmd AssignReturnLocationsCommand) (*AssignmentResultDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}
	if len(cmd.StockItemIDs) == 0 {
		return nil, errors.ErrValidation("stockItemIds are required")
	}

	var result *domain.AssignmentResult
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		items, err := s.loadItems(ctx, tc.TenantID, cmd.StockItemIDs, 0)
		if err != nil {
			return err
		}
		candidates, err := s.loadCandidates(ctx, tc.TenantID, cmd.LocationIDs)
		if err != nil {
			return err
		}

		result, err = domain.AssignReturnLocations(items, candidates, cmd.Condition, s.now().UTC())
		if err != nil {
			return err
		}

		return s.persist(ctx, items, candidates, result)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to assign return locations")
	}

	s.recordAssignment(ctx, strategyReturn, result)
	return toAssignmentResultDTO(result), nil
}

func (s *AssignmentService) loadItems(ctx context.Context, tenantID string, stockItemIDs []string, limit int) ([]*domain.StockItem, error) {
	if len(stockItemIDs) == 0 {
		if limit <= 0 {
			limit = DefaultAssignmentBatchSize
		}
		return s.stockRepo.FindUnassigned(ctx, tenantID, limit)
	}

	items := make([]*domain.StockItem, 0, len(stockItemIDs))
	for _, id := range stockItemIDs {
		item, err := s.stockRepo.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, errors.ErrNotFoundWithID("stock item", id)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *AssignmentService) loadCandidates(ctx context.Context, tenantID string, locationIDs []string) ([]*domain.Location, error) {
	if len(locationIDs) == 0 {
		return s.locationRepo.FindCandidates(ctx, tenantID, DefaultCandidateLimit)
	}

	// explicit candidates keep their declared order
	candidates := make([]*domain.Location, 0, len(locationIDs))
	for _, id := range locationIDs {
		location, err := s.locationRepo.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, errors.ErrNotFoundWithID("location", id)
		}
		candidates = append(candidates, location)
	}
	return candidates, nil
}

func (s *AssignmentService) persist(ctx context.Context, items []*domain.StockItem, candidates []*domain.Location, result *domain.AssignmentResult) error {
	if len(result.Assignments) == 0 && len(result.Events) == 0 {
		return nil
	}

	placed := make([]*domain.StockItem, 0, len(result.Assignments))
	for _, item := range items {
		if _, ok := result.Assignments[item.StockItemID]; ok {
			placed = append(placed, item)
		}
	}

	touched := make([]*domain.Location, 0)
	used := make(map[string]bool, len(result.Assignments))
	for _, locationID := range result.Assignments {
		used[locationID] = true
	}
	for _, candidate := range candidates {
		if used[candidate.LocationID] {
			touched = append(touched, candidate)
		}
	}

	return s.uow.SaveAssignment(ctx, placed, touched, result.Events)
}

func (s *AssignmentService) recordAssignment(ctx context.Context, strategy string, result *domain.AssignmentResult) {
	if s.metrics != nil {
		s.metrics.RecordLocationAssigned(strategy, len(result.Assignments))
		if len(result.Unassigned) > 0 {
			s.metrics.RecordItemsUnassigned(strategy, len(result.Unassigned))
		}
	}

	s.logger.WithContext(ctx).Info("Assignment run finished",
		"strategy", strategy,
		"assigned", len(result.Assignments),
		"unassigned", len(result.Unassigned),
	)
}
