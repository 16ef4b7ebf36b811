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

const pickingTasksCollection = "picking_tasks"

// PickingTaskRepository implements domain.PickingTaskRepository on MongoDB
type PickingTaskRepository struct {
	*store
	collection *mongo.Collection
}

// NewPickingTaskRepository creates a new PickingTaskRepository
func NewPickingTaskRepository(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *PickingTaskRepository {
	repo := &PickingTaskRepository{
		store:      newStore(client, eventFactory),
		collection: client.Collection(pickingTasksCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PickingTaskRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "loadId", Value: 1}, {Key: "sequence", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, _ = r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *PickingTaskRepository) Save(ctx context.Context, task *domain.PickingTask, events []domain.Event) error {
	return r.transactionalVersioned(ctx, events, []*int64{&task.Version}, func(sessCtx mongo.SessionContext) error {
		return r.saveOne(sessCtx, task)
	})
}

func (r *PickingTaskRepository) saveOne(ctx context.Context, task *domain.PickingTask) error {
	filter := bson.M{"tenantId": task.TenantID, "taskId": task.TaskID}
	return saveVersioned(ctx, r.collection, filter, task, &task.Version, "picking task", task.TaskID)
}

func (r *PickingTaskRepository) FindByID(ctx context.Context, tenantID, taskID string) (*domain.PickingTask, error) {
	return findOne[domain.PickingTask](ctx, r.collection, bson.M{"tenantId": tenantID, "taskId": taskID})
}

func (r *PickingTaskRepository) FindByLoad(ctx context.Context, tenantID, loadID string) ([]*domain.PickingTask, error) {
	filter := bson.M{"tenantId": tenantID, "loadId": loadID}
	return findMany[domain.PickingTask](ctx, r.collection, filter,
		withSort(bson.D{{Key: "sequence", Value: 1}}),
	)
}

func (r *PickingTaskRepository) FindByStatus(ctx context.Context, tenantID string, status domain.PickingStatus, pagination domain.Pagination) ([]*domain.PickingTask, error) {
	filter := bson.M{"tenantId": tenantID, "status": status}
	return findMany[domain.PickingTask](ctx, r.collection, filter,
		withSort(bson.D{{Key: "createdAt", Value: 1}}),
		withPagination(pagination),
	)
}
