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

const consignmentsCollection = "consignments"

// ConsignmentRepository implements domain.ConsignmentRepository on MongoDB
type ConsignmentRepository struct {
	*store
	collection *mongo.Collection
}

// NewConsignmentRepository creates a new ConsignmentRepository
func NewConsignmentRepository(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *ConsignmentRepository {
	repo := &ConsignmentRepository{
		store:      newStore(client, eventFactory),
		collection: client.Collection(consignmentsCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ConsignmentRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "consignmentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ConsignmentRepository) Save(ctx context.Context, consignment *domain.Consignment, events []domain.Event) error {
	return r.transactionalVersioned(ctx, events, []*int64{&consignment.Version}, func(sessCtx mongo.SessionContext) error {
		return r.saveOne(sessCtx, consignment)
	})
}

func (r *ConsignmentRepository) saveOne(ctx context.Context, consignment *domain.Consignment) error {
	filter := bson.M{"tenantId": consignment.TenantID, "consignmentId": consignment.ConsignmentID}
	return saveVersioned(ctx, r.collection, filter, consignment, &consignment.Version, "consignment", consignment.ConsignmentID)
}

func (r *ConsignmentRepository) FindByID(ctx context.Context, tenantID, consignmentID string) (*domain.Consignment, error) {
	return findOne[domain.Consignment](ctx, r.collection, bson.M{"tenantId": tenantID, "consignmentId": consignmentID})
}

func (r *ConsignmentRepository) FindByStatus(ctx context.Context, tenantID string, status domain.ConsignmentStatus, pagination domain.Pagination) ([]*domain.Consignment, error) {
	filter := bson.M{"tenantId": tenantID, "status": status}
	return findMany[domain.Consignment](ctx, r.collection, filter,
		withSort(bson.D{{Key: "createdAt", Value: -1}}),
		withPagination(pagination),
	)
}
