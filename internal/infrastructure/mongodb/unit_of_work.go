package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/mongodb"
)

// UnitOfWork implements domain.UnitOfWork: cross-aggregate writes land in
// one Mongo transaction together with their outbox events, so a version
// conflict on any aggregate rolls back the whole batch.
type UnitOfWork struct {
	*store
	stockRepo    *StockItemRepository
	locationRepo *LocationRepository
	movementRepo *StockMovementRepository
	pickingRepo  *PickingTaskRepository
}

// NewUnitOfWork creates a new UnitOfWork over the given repositories
func NewUnitOfWork(
	client *mongodb.Client,
	eventFactory *cloudevents.EventFactory,
	stockRepo *StockItemRepository,
	locationRepo *LocationRepository,
	movementRepo *StockMovementRepository,
	pickingRepo *PickingTaskRepository,
) *UnitOfWork {
	return &UnitOfWork{
		store:        newStore(client, eventFactory),
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		movementRepo: movementRepo,
		pickingRepo:  pickingRepo,
	}
}

func (u *UnitOfWork) SaveAssignment(ctx context.Context, items []*domain.StockItem, locations []*domain.Location, events []domain.Event) error {
	versions := make([]*int64, 0, len(items)+len(locations))
	for _, item := range items {
		versions = append(versions, &item.Version)
	}
	for _, location := range locations {
		versions = append(versions, &location.Version)
	}
	return u.transactionalVersioned(ctx, events, versions, func(sessCtx mongo.SessionContext) error {
		for _, item := range items {
			if err := u.stockRepo.saveOne(sessCtx, item); err != nil {
				return err
			}
		}
		for _, location := range locations {
			if err := u.locationRepo.saveOne(sessCtx, location); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *UnitOfWork) SaveMovementClose(ctx context.Context, movement *domain.StockMovement, item *domain.StockItem, locations []*domain.Location, events []domain.Event) error {
	versions := []*int64{&movement.Version, &item.Version}
	for _, location := range locations {
		versions = append(versions, &location.Version)
	}
	return u.transactionalVersioned(ctx, events, versions, func(sessCtx mongo.SessionContext) error {
		if err := u.movementRepo.saveOne(sessCtx, movement); err != nil {
			return err
		}
		if err := u.stockRepo.saveOne(sessCtx, item); err != nil {
			return err
		}
		for _, location := range locations {
			if err := u.locationRepo.saveOne(sessCtx, location); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *UnitOfWork) SavePick(ctx context.Context, task *domain.PickingTask, items []*domain.StockItem, location *domain.Location, events []domain.Event) error {
	versions := []*int64{&task.Version}
	for _, item := range items {
		versions = append(versions, &item.Version)
	}
	if location != nil {
		versions = append(versions, &location.Version)
	}
	return u.transactionalVersioned(ctx, events, versions, func(sessCtx mongo.SessionContext) error {
		if err := u.pickingRepo.saveOne(sessCtx, task); err != nil {
			return err
		}
		for _, item := range items {
			if err := u.stockRepo.saveOne(sessCtx, item); err != nil {
				return err
			}
		}
		if location != nil {
			if err := u.locationRepo.saveOne(sessCtx, location); err != nil {
				return err
			}
		}
		return nil
	})
}
