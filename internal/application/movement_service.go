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

// MovementService implements the application layer for stock movements.
// Initiating a movement records intent only; the physical transfer is
// applied when the movement completes.
type MovementService struct {
	movementRepo domain.StockMovementRepository
	stockRepo    domain.StockItemRepository
	locationRepo domain.LocationRepository
	uow          domain.UnitOfWork
	metrics      *metrics.Metrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewMovementService creates a new MovementService
func NewMovementService(
	movementRepo domain.StockMovementRepository,
	stockRepo domain.StockItemRepository,
	locationRepo domain.LocationRepository,
	uow domain.UnitOfWork,
	m *metrics.Metrics,
	logger *logging.Logger,
) *MovementService {
	return &MovementService{
		movementRepo: movementRepo,
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		uow:          uow,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateStockMovement initiates a movement for a stock item
func (s *MovementService) CreateStockMovement(ctx context.Context, cmd CreateStockMovementCommand) (*StockMovementDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	item, err := s.stockRepo.FindByID(ctx, tc.TenantID, cmd.StockItemID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load stock item")
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("stock item", cmd.StockItemID)
	}

	destination, err := s.locationRepo.FindByID(ctx, tc.TenantID, cmd.DestinationLocationID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load destination location")
	}
	if destination == nil {
		return nil, errors.ErrNotFoundWithID("location", cmd.DestinationLocationID)
	}

	initiatedBy := cmd.InitiatedBy
	if initiatedBy == "" {
		initiatedBy = tc.UserID
	}

	movement, events, err := domain.NewStockMovement(
		newMovementID(),
		tc.TenantID,
		cmd.StockItemID,
		cmd.SourceLocationID,
		cmd.DestinationLocationID,
		cmd.Quantity,
		domain.MovementType(cmd.MovementType),
		cmd.Reason,
		initiatedBy,
		s.now().UTC(),
	)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.movementRepo.Save(ctx, movement, events); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save stock movement")
		return nil, errors.ErrInternal("failed to save stock movement").Wrap(err)
	}

	s.logger.WithContext(ctx).Info("Initiated stock movement",
		"movementId", movement.MovementID,
		"stockItemId", movement.StockItemID,
		"from", movement.SourceLocationID,
		"to", movement.DestinationLocationID,
		"quantity", movement.Quantity,
	)

	return toStockMovementDTO(movement), nil
}

// CompleteStockMovement completes a movement and applies the transfer: the
// destination reserves the moved quantity, the source releases it, and the
// stock item's location reference moves to the destination.
func (s *MovementService) CompleteStockMovement(ctx context.Context, cmd CompleteStockMovementCommand) (*StockMovementDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	completedBy := cmd.CompletedBy
	if completedBy == "" {
		completedBy = tc.UserID
	}

	var movement *domain.StockMovement
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		movement, err = s.loadMovement(ctx, tc.TenantID, cmd.MovementID)
		if err != nil {
			return err
		}

		item, err := s.stockRepo.FindByID(ctx, tc.TenantID, movement.StockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrStockItemNotFound
		}

		now := s.now().UTC()
		events, err := movement.Complete(completedBy, now)
		if err != nil {
			return err
		}

		locations := make([]*domain.Location, 0, 2)

		destination, err := s.locationRepo.FindByID(ctx, tc.TenantID, movement.DestinationLocationID)
		if err != nil {
			return err
		}
		if destination == nil {
			return domain.ErrLocationNotFound
		}
		reserveEvents, err := destination.Reserve(movement.Quantity, now)
		if err != nil {
			return err
		}
		events = append(events, reserveEvents...)
		locations = append(locations, destination)

		if movement.SourceLocationID != "" {
			source, err := s.locationRepo.FindByID(ctx, tc.TenantID, movement.SourceLocationID)
			if err != nil {
				return err
			}
			if source != nil {
				releaseEvents, err := source.Release(movement.Quantity, now)
				if err != nil {
					return err
				}
				events = append(events, releaseEvents...)
				locations = append(locations, source)
			}
		}

		assignEvents, err := item.AssignLocation(movement.DestinationLocationID, now)
		if err != nil {
			return err
		}
		events = append(events, assignEvents...)

		return s.uow.SaveMovementClose(ctx, movement, item, locations, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to complete stock movement")
	}

	if s.metrics != nil {
		s.metrics.RecordMovementClosed(string(domain.MovementStatusCompleted))
	}

	s.logger.WithContext(ctx).Info("Completed stock movement",
		"movementId", movement.MovementID,
		"completedBy", movement.CompletedBy,
	)

	return toStockMovementDTO(movement), nil
}

// CancelStockMovement cancels an initiated movement
func (s *MovementService) CancelStockMovement(ctx context.Context, cmd CancelStockMovementCommand) (*StockMovementDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	cancelledBy := cmd.CancelledBy
	if cancelledBy == "" {
		cancelledBy = tc.UserID
	}

	var movement *domain.StockMovement
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		movement, err = s.loadMovement(ctx, tc.TenantID, cmd.MovementID)
		if err != nil {
			return err
		}

		events, err := movement.Cancel(cancelledBy, cmd.CancellationReason, s.now().UTC())
		if err != nil {
			return err
		}
		return s.movementRepo.Save(ctx, movement, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to cancel stock movement")
	}

	if s.metrics != nil {
		s.metrics.RecordMovementClosed(string(domain.MovementStatusCancelled))
	}

	s.logger.WithContext(ctx).Info("Cancelled stock movement",
		"movementId", movement.MovementID,
		"reason", movement.CancellationReason,
	)

	return toStockMovementDTO(movement), nil
}

// GetStockMovement returns a movement by id
func (s *MovementService) GetStockMovement(ctx context.Context, movementID string) (*StockMovementDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	movement, err := s.loadMovement(ctx, tc.TenantID, movementID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load stock movement")
	}

	return toStockMovementDTO(movement), nil
}

// ListStockMovements lists movements by stock item or status
func (s *MovementService) ListStockMovements(ctx context.Context, query ListMovementsQuery) ([]*StockMovementDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	pagination := paginationFrom(query.Page, query.PageSize)

	var movements []*domain.StockMovement
	switch {
	case query.StockItemID != "":
		movements, err = s.movementRepo.FindByStockItem(ctx, tc.TenantID, query.StockItemID, pagination)
	case query.Status != "":
		movements, err = s.movementRepo.FindByStatus(ctx, tc.TenantID, domain.MovementStatus(query.Status), pagination)
	default:
		return nil, errors.ErrValidation("one of stockItemId or status is required")
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to list stock movements")
		return nil, errors.ErrInternal("failed to list stock movements").Wrap(err)
	}

	return toStockMovementDTOs(movements), nil
}

func (s *MovementService) loadMovement(ctx context.Context, tenantID, movementID string) (*domain.StockMovement, error) {
	movement, err := s.movementRepo.FindByID(ctx, tenantID, movementID)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, domain.ErrMovementNotFound
	}
	return movement, nil
}
