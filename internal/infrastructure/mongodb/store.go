package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/mongodb"
	outboxMongo "github.com/wms-platform/inventory-lifecycle/pkg/outbox/mongodb"
)

// store bundles what every repository needs: the Mongo client for
// transactions, the outbox repository sharing those transactions, and the
// CloudEvents factory wrapping domain events for publication.
type store struct {
	client       *mongodb.Client
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

func newStore(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *store {
	return &store{
		client:       client,
		outboxRepo:   outboxMongo.NewOutboxRepository(client.Database()),
		eventFactory: eventFactory,
	}
}

// transactional runs the aggregate write and the outbox write in one Mongo
// transaction. Events become visible to the publisher only after commit.
func (s *store) transactional(ctx context.Context, events []domain.Event, write func(sessCtx mongo.SessionContext) error) error {
	outboxEvents, err := buildOutboxEvents(ctx, s.eventFactory, events)
	if err != nil {
		return err
	}

	return s.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := write(sessCtx); err != nil {
			return err
		}
		if len(outboxEvents) > 0 {
			if err := s.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return fmt.Errorf("failed to save outbox events: %w", err)
			}
		}
		return nil
	})
}

// transactionalVersioned is transactional plus version rollback: when the
// transaction aborts, in-memory versions bumped by earlier writes in the
// batch are restored so a caller-side retry starts from a clean slate.
func (s *store) transactionalVersioned(ctx context.Context, events []domain.Event, versions []*int64, write func(sessCtx mongo.SessionContext) error) error {
	saved := make([]int64, len(versions))
	for i, v := range versions {
		saved[i] = *v
	}

	err := s.transactional(ctx, events, write)
	if err != nil {
		for i, v := range versions {
			*v = saved[i]
		}
	}
	return err
}

// saveVersioned persists an aggregate with an optimistic version check.
// A zero version inserts; otherwise the stored document must still carry
// the loaded version or the save fails with a VersionConflictError. On
// success the in-memory version is bumped to match the stored one.
func saveVersioned(ctx context.Context, coll *mongo.Collection, filter bson.M, doc any, version *int64, entity, id string) error {
	loaded := *version

	if loaded == 0 {
		*version = 1
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			*version = loaded
			if mongo.IsDuplicateKeyError(err) {
				return &domain.VersionConflictError{Entity: entity, ID: id, Version: loaded}
			}
			return fmt.Errorf("failed to insert %s: %w", entity, err)
		}
		return nil
	}

	versionedFilter := bson.M{"version": loaded}
	for key, value := range filter {
		versionedFilter[key] = value
	}

	*version = loaded + 1
	result, err := coll.ReplaceOne(ctx, versionedFilter, doc)
	if err != nil {
		*version = loaded
		return fmt.Errorf("failed to update %s: %w", entity, err)
	}
	if result.MatchedCount == 0 {
		*version = loaded
		return &domain.VersionConflictError{Entity: entity, ID: id, Version: loaded}
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

type findOption func(*options.FindOptions)

func withSort(sort bson.D) findOption {
	return func(o *options.FindOptions) { o.SetSort(sort) }
}

func withPagination(p domain.Pagination) findOption {
	return func(o *options.FindOptions) {
		o.SetSkip(p.Skip())
		o.SetLimit(p.Limit())
	}
}

func withLimit(limit int64) findOption {
	return func(o *options.FindOptions) { o.SetLimit(limit) }
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...findOption) ([]*T, error) {
	findOpts := options.Find()
	for _, opt := range opts {
		opt(findOpts)
	}

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
