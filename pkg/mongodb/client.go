package mongodb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection configuration
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64

	// Authentication
	Username string
	Password string
	AuthDB   string

	// TLS
	TLSEnabled bool
	TLSCAFile  string

	// Replica Set
	ReplicaSet string

	// CommandObserver receives one callback per completed driver command,
	// keyed by collection and command name. Commands without a collection
	// (ping, handshake) are not reported.
	CommandObserver func(collection, operation string, success bool, duration time.Duration)

	// PoolObserver receives the open connection count on every pool change.
	PoolObserver func(open int)
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		URI:            "mongodb://localhost:27017",
		Database:       "wms_inventory",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    100,
		MinPoolSize:    10,
		TLSEnabled:     false,
	}
}

// Client wraps the MongoDB client with service-level helpers
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	config   *Config
}

// NewClient creates a new MongoDB client and verifies connectivity
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(config.ConnectTimeout).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(config.MinPoolSize)

	if config.Username != "" && config.Password != "" {
		credential := options.Credential{
			Username:   config.Username,
			Password:   config.Password,
			AuthSource: config.AuthDB,
		}
		clientOpts.SetAuth(credential)
	}

	if config.ReplicaSet != "" {
		clientOpts.SetReplicaSet(config.ReplicaSet)
	}

	if config.CommandObserver != nil {
		clientOpts.SetMonitor(newCommandMonitor(config.CommandObserver))
	}

	if config.PoolObserver != nil {
		clientOpts.SetPoolMonitor(newPoolMonitor(config.PoolObserver))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client:   client,
		database: client.Database(config.Database),
		config:   config,
	}, nil
}

// Database returns the database handle
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a collection handle
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Client returns the underlying MongoDB client
func (c *Client) Client() *mongo.Client {
	return c.client
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// HealthCheck performs a health check on the MongoDB connection
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// newCommandMonitor builds a driver command monitor that reports completed
// commands to the observer. The finished events carry only the command name,
// so the collection is remembered from the started event by request ID.
func newCommandMonitor(observe func(collection, operation string, success bool, duration time.Duration)) *event.CommandMonitor {
	var mu sync.Mutex
	collections := make(map[int64]string)

	take := func(requestID int64) (string, bool) {
		mu.Lock()
		defer mu.Unlock()
		coll, ok := collections[requestID]
		delete(collections, requestID)
		return coll, ok
	}

	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if coll, ok := evt.Command.Lookup(evt.CommandName).StringValueOK(); ok {
				mu.Lock()
				collections[evt.RequestID] = coll
				mu.Unlock()
			}
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			if coll, ok := take(evt.RequestID); ok {
				observe(coll, evt.CommandName, true, time.Duration(evt.DurationNanos))
			}
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			if coll, ok := take(evt.RequestID); ok {
				observe(coll, evt.CommandName, false, time.Duration(evt.DurationNanos))
			}
		},
	}
}

func newPoolMonitor(observe func(open int)) *event.PoolMonitor {
	var open int64
	return &event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			switch evt.Type {
			case event.ConnectionCreated:
				observe(int(atomic.AddInt64(&open, 1)))
			case event.ConnectionClosed:
				observe(int(atomic.AddInt64(&open, -1)))
			}
		},
	}
}

// WithTransaction executes a function within a transaction
func (c *Client) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})

	return err
}
