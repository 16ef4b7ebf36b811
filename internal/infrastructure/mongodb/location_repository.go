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

const locationsCollection = "locations"

// LocationRepository implements domain.LocationRepository on MongoDB
type LocationRepository struct {
	*store
	collection *mongo.Collection
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *LocationRepository {
	repo := &LocationRepository{
		store:      newStore(client, eventFactory),
		collection: client.Collection(locationsCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *LocationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "locationId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "barcode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "zone", Value: 1}, {Key: "aisle", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *LocationRepository) Save(ctx context.Context, location *domain.Location, events []domain.Event) error {
	return r.transactionalVersioned(ctx, events, []*int64{&location.Version}, func(sessCtx mongo.SessionContext) error {
		return r.saveOne(sessCtx, location)
	})
}

func (r *LocationRepository) SaveAll(ctx context.Context, locations []*domain.Location, events []domain.Event) error {
	versions := make([]*int64, 0, len(locations))
	for _, location := range locations {
		versions = append(versions, &location.Version)
	}
	return r.transactionalVersioned(ctx, events, versions, func(sessCtx mongo.SessionContext) error {
		for _, location := range locations {
			if err := r.saveOne(sessCtx, location); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LocationRepository) saveOne(ctx context.Context, location *domain.Location) error {
	filter := bson.M{"tenantId": location.TenantID, "locationId": location.LocationID}
	return saveVersioned(ctx, r.collection, filter, location, &location.Version, "location", location.LocationID)
}

func (r *LocationRepository) FindByID(ctx context.Context, tenantID, locationID string) (*domain.Location, error) {
	return findOne[domain.Location](ctx, r.collection, bson.M{"tenantId": tenantID, "locationId": locationID})
}

func (r *LocationRepository) FindByBarcode(ctx context.Context, tenantID, barcode string) (*domain.Location, error) {
	return findOne[domain.Location](ctx, r.collection, bson.M{"tenantId": tenantID, "barcode": barcode})
}

// FindCandidates returns locations able to accept stock, in a stable walk
// order (zone, aisle, rack, level) so assignment runs are deterministic.
func (r *LocationRepository) FindCandidates(ctx context.Context, tenantID string, limit int) ([]*domain.Location, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"status": bson.M{"$in": []domain.LocationStatus{
			domain.LocationStatusAvailable,
			domain.LocationStatusReserved,
		}},
	}
	return findMany[domain.Location](ctx, r.collection, filter,
		withSort(bson.D{
			{Key: "zone", Value: 1},
			{Key: "aisle", Value: 1},
			{Key: "rack", Value: 1},
			{Key: "level", Value: 1},
		}),
		withLimit(int64(limit)),
	)
}

func (r *LocationRepository) FindByZone(ctx context.Context, tenantID, zone string, pagination domain.Pagination) ([]*domain.Location, error) {
	filter := bson.M{"tenantId": tenantID, "zone": zone}
	return findMany[domain.Location](ctx, r.collection, filter,
		withSort(bson.D{{Key: "aisle", Value: 1}, {Key: "rack", Value: 1}, {Key: "level", Value: 1}}),
		withPagination(pagination),
	)
}
