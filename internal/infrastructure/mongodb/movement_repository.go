package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/mongodb"
)

const movementsCollection = "stock_movements"

// StockMovementRepository implements domain.StockMovementRepository on MongoDB
type StockMovementRepository struct {
	*store
	collection *mongo.Collection
}

// NewStockMovementRepository creates a new StockMovementRepository
func NewStockMovementRepository(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *StockMovementRepository {
	repo := &StockMovementRepository{
		store:      newStore(client, eventFactory),
		collection: client.Collection(movementsCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *StockMovementRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "movementId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "stockItemId", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *StockMovementRepository) Save(ctx context.Context, movement *domain.StockMovement, events []domain.Event) error {
	return r.transactionalVersioned(ctx, events, []*int64{&movement.Version}, func(sessCtx mongo.SessionContext) error {
		return r.saveOne(sessCtx, movement)
	})
}

func (r *StockMovementRepository) saveOne(ctx context.Context, movement *domain.StockMovement) error {
	filter := bson.M{"tenantId": movement.TenantID, "movementId": movement.MovementID}
	return saveVersioned(ctx, r.collection, filter, movement, &movement.Version, "stock movement", movement.MovementID)
}

func (r *StockMovementRepository) FindByID(ctx context.Context, tenantID, movementID string) (*domain.StockMovement, error) {
	return findOne[domain.StockMovement](ctx, r.collection, bson.M{"tenantId": tenantID, "movementId": movementID})
}

func (r *StockMovementRepository) FindByStockItem(ctx context.Context, tenantID, stockItemID string, pagination domain.Pagination) ([]*domain.StockMovement, error) {
	filter := bson.M{"tenantId": tenantID, "stockItemId": stockItemID}
	return findMany[domain.StockMovement](ctx, r.collection, filter,
		withSort(bson.D{{Key: "initiatedAt", Value: -1}}),
		withPagination(pagination),
	)
}

func (r *StockMovementRepository) FindByStatus(ctx context.Context, tenantID string, status domain.MovementStatus, pagination domain.Pagination) ([]*domain.StockMovement, error) {
	filter := bson.M{"tenantId": tenantID, "status": status}
	return findMany[domain.StockMovement](ctx, r.collection, filter,
		withSort(bson.D{{Key: "initiatedAt", Value: -1}}),
		withPagination(pagination),
	)
}
