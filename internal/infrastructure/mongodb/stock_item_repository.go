package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/mongodb"
)

const stockItemsCollection = "stock_items"

// StockItemRepository implements domain.StockItemRepository on MongoDB
type StockItemRepository struct {
	*store
	collection *mongo.Collection
}

// NewStockItemRepository creates a new StockItemRepository
func NewStockItemRepository(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *StockItemRepository {
	repo := &StockItemRepository{
		store:      newStore(client, eventFactory),
		collection: client.Collection(stockItemsCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *StockItemRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "stockItemId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "sku", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "locationId", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "classification", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "expirationDate", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *StockItemRepository) Save(ctx context.Context, item *domain.StockItem, events []domain.Event) error {
	return r.transactionalVersioned(ctx, events, []*int64{&item.Version}, func(sessCtx mongo.SessionContext) error {
		return r.saveOne(sessCtx, item)
	})
}

func (r *StockItemRepository) SaveAll(ctx context.Context, items []*domain.StockItem, events []domain.Event) error {
	versions := make([]*int64, 0, len(items))
	for _, item := range items {
		versions = append(versions, &item.Version)
	}
	return r.transactionalVersioned(ctx, events, versions, func(sessCtx mongo.SessionContext) error {
		for _, item := range items {
			if err := r.saveOne(sessCtx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StockItemRepository) saveOne(ctx context.Context, item *domain.StockItem) error {
	filter := bson.M{"tenantId": item.TenantID, "stockItemId": item.StockItemID}
	return saveVersioned(ctx, r.collection, filter, item, &item.Version, "stock item", item.StockItemID)
}

func (r *StockItemRepository) FindByID(ctx context.Context, tenantID, stockItemID string) (*domain.StockItem, error) {
	return findOne[domain.StockItem](ctx, r.collection, bson.M{"tenantId": tenantID, "stockItemId": stockItemID})
}

func (r *StockItemRepository) FindBySKU(ctx context.Context, tenantID, sku string, pagination domain.Pagination) ([]*domain.StockItem, error) {
	filter := bson.M{"tenantId": tenantID, "sku": sku}
	return findMany[domain.StockItem](ctx, r.collection, filter,
		withSort(bson.D{{Key: "createdAt", Value: 1}}),
		withPagination(pagination),
	)
}

func (r *StockItemRepository) FindUnassigned(ctx context.Context, tenantID string, limit int) ([]*domain.StockItem, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"quantity": bson.M{"$gt": 0},
		"$or": []bson.M{
			{"locationId": ""},
			{"locationId": bson.M{"$exists": false}},
		},
	}
	return findMany[domain.StockItem](ctx, r.collection, filter,
		withSort(bson.D{{Key: "createdAt", Value: 1}}),
		withLimit(int64(limit)),
	)
}

func (r *StockItemRepository) FindByLocation(ctx context.Context, tenantID, locationID string) ([]*domain.StockItem, error) {
	filter := bson.M{"tenantId": tenantID, "locationId": locationID}
	return findMany[domain.StockItem](ctx, r.collection, filter,
		withSort(bson.D{{Key: "expirationDate", Value: 1}}),
	)
}

func (r *StockItemRepository) FindByClassification(ctx context.Context, tenantID string, classification domain.Classification, pagination domain.Pagination) ([]*domain.StockItem, error) {
	filter := bson.M{"tenantId": tenantID, "classification": classification}
	return findMany[domain.StockItem](ctx, r.collection, filter,
		withSort(bson.D{{Key: "expirationDate", Value: 1}}),
		withPagination(pagination),
	)
}

func (r *StockItemRepository) FindExpiringBefore(ctx context.Context, tenantID string, before time.Time, limit int) ([]*domain.StockItem, error) {
	filter := bson.M{
		"tenantId":       tenantID,
		"expirationDate": bson.M{"$ne": nil, "$lt": before},
	}
	return findMany[domain.StockItem](ctx, r.collection, filter,
		withSort(bson.D{{Key: "expirationDate", Value: 1}}),
		withLimit(int64(limit)),
	)
}
