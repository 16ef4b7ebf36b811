package application

import (
	"context"
	"sort"
	"time"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/metrics"
	"github.com/wms-platform/inventory-lifecycle/pkg/resilience"
	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
)

// PickingService implements the application layer for picking task execution
type PickingService struct {
	taskRepo     domain.PickingTaskRepository
	stockRepo    domain.StockItemRepository
	locationRepo domain.LocationRepository
	uow          domain.UnitOfWork
	executor     *domain.PickingTaskExecutor
	metrics      *metrics.Metrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewPickingService creates a new PickingService. The availability checker
// backs the executor's stock preconditions.
func NewPickingService(
	taskRepo domain.PickingTaskRepository,
	stockRepo domain.StockItemRepository,
	locationRepo domain.LocationRepository,
	uow domain.UnitOfWork,
	checker domain.StockAvailabilityChecker,
	m *metrics.Metrics,
	logger *logging.Logger,
) *PickingService {
	return &PickingService{
		taskRepo:     taskRepo,
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		uow:          uow,
		executor:     domain.NewPickingTaskExecutor(checker),
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// CreatePickingTask creates a picking task for a load
func (s *PickingService) CreatePickingTask(ctx context.Context, cmd CreatePickingTaskCommand) (*PickingTaskDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	task, events, err := domain.NewPickingTask(
		newPickingTaskID(),
		tc.TenantID,
		cmd.LoadID,
		cmd.SKU,
		cmd.ProductName,
		cmd.LocationID,
		cmd.RequiredQuantity,
		cmd.Sequence,
		s.now().UTC(),
	)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.taskRepo.Save(ctx, task, events); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save picking task")
		return nil, errors.ErrInternal("failed to save picking task").Wrap(err)
	}

	s.logger.WithContext(ctx).Info("Created picking task",
		"taskId", task.TaskID,
		"loadId", task.LoadID,
		"sku", task.SKU,
		"requiredQuantity", task.RequiredQuantity,
	)

	return toPickingTaskDTO(task), nil
}

// ExecutePick executes a pick against a task. Picking the full required
// quantity completes the task; picking less requires a reason and completes
// it partially. Either way the picked stock is deducted in FEFO order and
// the location's capacity is released.
func (s *PickingService) ExecutePick(ctx context.Context, cmd ExecutePickCommand) (*PickingTaskDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	pickedBy := cmd.PickedBy
	if pickedBy == "" {
		pickedBy = tc.UserID
	}

	var task *domain.PickingTask
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		task, err = s.loadTask(ctx, tc.TenantID, cmd.TaskID)
		if err != nil {
			return err
		}

		now := s.now().UTC()

		var events []domain.Event
		if cmd.PickedQuantity == task.RequiredQuantity {
			events, err = s.executor.Execute(ctx, task, cmd.PickedQuantity, pickedBy, now)
		} else {
			events, err = s.executor.ExecutePartial(ctx, task, cmd.PickedQuantity, cmd.Reason, pickedBy, now)
		}
		if err != nil {
			return err
		}

		items, err := s.deductStock(ctx, tc.TenantID, task, cmd.PickedQuantity, now)
		if err != nil {
			return err
		}

		location, err := s.locationRepo.FindByID(ctx, tc.TenantID, task.LocationID)
		if err != nil {
			return err
		}
		if location != nil {
			releaseEvents, err := location.Release(cmd.PickedQuantity, now)
			if err != nil {
				return err
			}
			events = append(events, releaseEvents...)
		}

		return s.uow.SavePick(ctx, task, items, location, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to execute pick")
	}

	if s.metrics != nil {
		s.metrics.RecordPickExecuted(string(task.Status))
	}

	s.logger.WithContext(ctx).Info("Executed pick",
		"taskId", task.TaskID,
		"status", task.Status,
		"pickedQuantity", task.PickedQuantity,
		"pickedBy", task.PickedBy,
	)

	return toPickingTaskDTO(task), nil
}

// GetPickingTask returns a picking task by id
func (s *PickingService) GetPickingTask(ctx context.Context, taskID string) (*PickingTaskDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	task, err := s.loadTask(ctx, tc.TenantID, taskID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load picking task")
	}

	return toPickingTaskDTO(task), nil
}

// ListPickingTasks lists picking tasks by load or status
func (s *PickingService) ListPickingTasks(ctx context.Context, query ListPickingTasksQuery) ([]*PickingTaskDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	var tasks []*domain.PickingTask
	switch {
	case query.LoadID != "":
		tasks, err = s.taskRepo.FindByLoad(ctx, tc.TenantID, query.LoadID)
	case query.Status != "":
		tasks, err = s.taskRepo.FindByStatus(ctx, tc.TenantID, domain.PickingStatus(query.Status), paginationFrom(query.Page, query.PageSize))
	default:
		return nil, errors.ErrValidation("one of loadId or status is required")
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to list picking tasks")
		return nil, errors.ErrInternal("failed to list picking tasks").Wrap(err)
	}

	return toPickingTaskDTOs(tasks), nil
}

// deductStock removes the picked quantity from the task's stock at the
// task's location, draining earliest-expiring items first.
func (s *PickingService) deductStock(ctx context.Context, tenantID string, task *domain.PickingTask, quantity int, now time.Time) ([]*domain.StockItem, error) {
	atLocation, err := s.stockRepo.FindByLocation(ctx, tenantID, task.LocationID)
	if err != nil {
		return nil, err
	}

	matching := make([]*domain.StockItem, 0, len(atLocation))
	for _, item := range atLocation {
		if item.SKU == task.SKU && item.Quantity > 0 {
			matching = append(matching, item)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		a, b := matching[i].ExpirationDate, matching[j].ExpirationDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})

	remaining := quantity
	touched := make([]*domain.StockItem, 0, len(matching))
	for _, item := range matching {
		if remaining == 0 {
			break
		}
		take := remaining
		if take > item.Quantity {
			take = item.Quantity
		}
		if err := item.RemoveQuantity(take, now); err != nil {
			return nil, err
		}
		remaining -= take
		touched = append(touched, item)
	}

	if remaining > 0 {
		return nil, &domain.InsufficientStockError{
			SKU:        task.SKU,
			LocationID: task.LocationID,
			Required:   quantity,
			Available:  quantity - remaining,
		}
	}

	return touched, nil
}

func (s *PickingService) loadTask(ctx context.Context, tenantID, taskID string) (*domain.PickingTask, error) {
	task, err := s.taskRepo.FindByID(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrPickingTaskNotFound
	}
	return task, nil
}
