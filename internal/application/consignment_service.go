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

// ConsignmentService implements the application layer for inbound
// consignments and the stock materialization that follows confirmation
type ConsignmentService struct {
	consignmentRepo domain.ConsignmentRepository
	stockRepo       domain.StockItemRepository
	locationRepo    domain.LocationRepository
	uow             domain.UnitOfWork
	metrics         *metrics.Metrics
	logger          *logging.Logger
	now             func() time.Time
}

// NewConsignmentService creates a new ConsignmentService
func NewConsignmentService(
	consignmentRepo domain.ConsignmentRepository,
	stockRepo domain.StockItemRepository,
	locationRepo domain.LocationRepository,
	uow domain.UnitOfWork,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ConsignmentService {
	return &ConsignmentService{
		consignmentRepo: consignmentRepo,
		stockRepo:       stockRepo,
		locationRepo:    locationRepo,
		uow:             uow,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateConsignment registers an inbound consignment in DRAFT status
func (s *ConsignmentService) CreateConsignment(ctx context.Context, cmd CreateConsignmentCommand) (*ConsignmentDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	lines := make([]domain.ConsignmentLine, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		lines = append(lines, domain.ConsignmentLine{
			SKU:            line.SKU,
			ProductName:    line.ProductName,
			BatchNumber:    line.BatchNumber,
			Quantity:       line.Quantity,
			ExpirationDate: line.ExpirationDate,
		})
	}

	consignment, events, err := domain.NewConsignment(
		newConsignmentID(),
		tc.TenantID,
		tc.WarehouseID,
		cmd.Reference,
		lines,
		s.now().UTC(),
	)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.consignmentRepo.Save(ctx, consignment, events); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save consignment")
		return nil, errors.ErrInternal("failed to save consignment").Wrap(err)
	}

	s.logger.WithContext(ctx).Info("Created consignment",
		"consignmentId", consignment.ConsignmentID,
		"reference", consignment.Reference,
		"lines", len(consignment.Lines),
	)

	return toConsignmentDTO(consignment), nil
}

// ConfirmConsignment confirms a consignment. The confirmation event is
// published through the outbox; the consignment listener reacts to it by
// materializing stock.
func (s *ConsignmentService) ConfirmConsignment(ctx context.Context, cmd ConfirmConsignmentCommand) (*ConsignmentDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	confirmedBy := cmd.ConfirmedBy
	if confirmedBy == "" {
		confirmedBy = tc.UserID
	}

	var consignment *domain.Consignment
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		consignment, err = s.loadConsignment(ctx, tc.TenantID, cmd.ConsignmentID)
		if err != nil {
			return err
		}

		events, err := consignment.Confirm(confirmedBy, s.now().UTC())
		if err != nil {
			return err
		}
		return s.consignmentRepo.Save(ctx, consignment, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to confirm consignment")
	}

	s.logger.WithContext(ctx).Info("Confirmed consignment",
		"consignmentId", consignment.ConsignmentID,
		"confirmedBy", consignment.ConfirmedBy,
	)

	return toConsignmentDTO(consignment), nil
}

// GetConsignment returns a consignment by id
func (s *ConsignmentService) GetConsignment(ctx context.Context, consignmentID string) (*ConsignmentDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	consignment, err := s.loadConsignment(ctx, tc.TenantID, consignmentID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load consignment")
	}

	return toConsignmentDTO(consignment), nil
}

// MaterializeConfirmedConsignment creates stock items for every line of a
// confirmed consignment, classifies them by expiration and runs FEFO
// assignment over the tenant's candidate locations. Items that fit nowhere
// stay unassigned and raise a restock request. Invoked by the consignment
// events listener.
func (s *ConsignmentService) MaterializeConfirmedConsignment(ctx context.Context, consignmentID string) (*AssignmentResultDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	consignment, err := s.loadConsignment(ctx, tc.TenantID, consignmentID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load consignment")
	}
	if consignment.Status != domain.ConsignmentStatusConfirmed {
		return nil, errors.ErrStateConflict("consignment is not confirmed").WithDetail("consignmentId", consignmentID)
	}

	now := s.now().UTC()

	items := make([]*domain.StockItem, 0, len(consignment.Lines))
	events := make([]domain.Event, 0, len(consignment.Lines))
	for _, line := range consignment.Lines {
		item, itemEvents, err := domain.NewStockItem(
			newStockItemID(),
			tc.TenantID,
			consignment.WarehouseID,
			line.SKU,
			line.ProductName,
			line.BatchNumber,
			consignment.ConsignmentID,
			line.Quantity,
			line.ExpirationDate,
			now,
		)
		if err != nil {
			return nil, errors.MapDomainError(err)
		}
		items = append(items, item)
		events = append(events, itemEvents...)

		if s.metrics != nil {
			s.metrics.RecordItemClassified(string(item.Classification))
		}
	}

	var result *domain.AssignmentResult
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		// A conflicted attempt may have placed items the retry cannot
		// place again, so every attempt starts from unassigned items.
		for _, item := range items {
			item.LocationID = ""
		}

		candidates, err := s.locationRepo.FindCandidates(ctx, tc.TenantID, DefaultCandidateLimit)
		if err != nil {
			return err
		}

		result, err = domain.AssignFEFO(items, candidates, now)
		if err != nil {
			return err
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

		return s.uow.SaveAssignment(ctx, items, touched, append(events, result.Events...))
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to materialize consignment stock")
	}

	if s.metrics != nil {
		s.metrics.RecordLocationAssigned(strategyFEFO, len(result.Assignments))
		if len(result.Unassigned) > 0 {
			s.metrics.RecordItemsUnassigned(strategyFEFO, len(result.Unassigned))
		}
	}

	s.logger.WithContext(ctx).Info("Materialized consignment stock",
		"consignmentId", consignmentID,
		"items", len(items),
		"assigned", len(result.Assignments),
		"unassigned", len(result.Unassigned),
	)

	return toAssignmentResultDTO(result), nil
}

func (s *ConsignmentService) loadConsignment(ctx context.Context, tenantID, consignmentID string) (*domain.Consignment, error) {
	consignment, err := s.consignmentRepo.FindByID(ctx, tenantID, consignmentID)
	if err != nil {
		return nil, err
	}
	if consignment == nil {
		return nil, domain.ErrConsignmentNotFound
	}
	return consignment, nil
}
