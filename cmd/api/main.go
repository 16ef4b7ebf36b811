package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/wms-platform/inventory-lifecycle/internal/application"
	"github.com/wms-platform/inventory-lifecycle/internal/infrastructure/listeners"
	mongoRepo "github.com/wms-platform/inventory-lifecycle/internal/infrastructure/mongodb"
	"github.com/wms-platform/inventory-lifecycle/internal/infrastructure/stockquery"
	"github.com/wms-platform/inventory-lifecycle/pkg/cloudevents"
	"github.com/wms-platform/inventory-lifecycle/pkg/idempotency"
	"github.com/wms-platform/inventory-lifecycle/pkg/kafka"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/metrics"
	"github.com/wms-platform/inventory-lifecycle/pkg/middleware"
	"github.com/wms-platform/inventory-lifecycle/pkg/mongodb"
	"github.com/wms-platform/inventory-lifecycle/pkg/outbox"
	outboxMongo "github.com/wms-platform/inventory-lifecycle/pkg/outbox/mongodb"
	"github.com/wms-platform/inventory-lifecycle/pkg/resilience"
	"github.com/wms-platform/inventory-lifecycle/pkg/tracing"
)

const serviceName = "inventory-lifecycle"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting inventory-lifecycle API")

	config := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	// MongoDB
	mongoLogger := logger.WithComponent("mongodb")
	config.MongoDB.CommandObserver = func(collection, operation string, success bool, duration time.Duration) {
		m.RecordMongoDBOperation(collection, operation, success, duration)
		mongoLogger.DatabaseQuery(ctx, collection, operation, duration, success, 0)
	}
	config.MongoDB.PoolObserver = m.SetMongoDBConnections
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	if getEnv("KAFKA_CREATE_TOPICS", "false") == "true" {
		if err := kafka.EnsureTopics(ctx, config.Kafka, kafka.DefaultTopicConfigs()); err != nil {
			logger.Error("Failed to ensure Kafka topics", "error", err)
			os.Exit(1)
		}
		logger.Info("Kafka topics ensured")
	}

	// Kafka producer
	kafkaProducer := kafka.NewProducer(config.Kafka)
	instrumentedProducer := kafka.NewInstrumentedProducer(kafkaProducer, m, logger)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory("/" + serviceName)

	// Repositories
	stockRepo := mongoRepo.NewStockItemRepository(mongoClient, eventFactory)
	locationRepo := mongoRepo.NewLocationRepository(mongoClient, eventFactory)
	movementRepo := mongoRepo.NewStockMovementRepository(mongoClient, eventFactory)
	pickingRepo := mongoRepo.NewPickingTaskRepository(mongoClient, eventFactory)
	consignmentRepo := mongoRepo.NewConsignmentRepository(mongoClient, eventFactory)
	uow := mongoRepo.NewUnitOfWork(mongoClient, eventFactory, stockRepo, locationRepo, movementRepo, pickingRepo)

	// Consumer-side message deduplication
	messageRepo := idempotency.NewMongoMessageRepository(mongoClient.Database())
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to initialize idempotency indexes")
	}

	// Outbox publisher
	outboxRepo := outboxMongo.NewOutboxRepository(mongoClient.Database())
	if err := outboxRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to initialize outbox indexes")
	}
	outboxPublisher := outbox.NewPublisher(outboxRepo, instrumentedProducer, logger.WithComponent("outbox"), m, outbox.DefaultPublisherConfig())
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Circuit breakers feed state transitions into Prometheus
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger)
	availabilityBreakerConfig := resilience.DefaultCircuitBreakerConfig("stock-availability")
	availabilityBreakerConfig.OnStateChange = func(name string, from, to gobreaker.State) {
		m.SetCircuitBreakerState(name, int(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	}
	availabilityBreaker := breakers.GetWithConfig(availabilityBreakerConfig)

	// Application services
	availabilityChecker := stockquery.NewChecker(stockRepo, availabilityBreaker, logger.Logger)
	stockService := application.NewStockService(stockRepo, m, logger)
	locationService := application.NewLocationService(locationRepo, logger)
	assignmentService := application.NewAssignmentService(stockRepo, locationRepo, uow, m, logger)
	movementService := application.NewMovementService(movementRepo, stockRepo, locationRepo, uow, m, logger)
	pickingService := application.NewPickingService(pickingRepo, stockRepo, locationRepo, uow, availabilityChecker, m, logger)
	consignmentService := application.NewConsignmentService(consignmentRepo, stockRepo, locationRepo, uow, m, logger)

	// Consignment confirmations arrive via Kafka and are materialized
	// asynchronously, deduplicated by event ID
	consumerLogger := logger.WithComponent("kafka-consumer")
	consumer := kafka.NewInstrumentedConsumer(kafka.NewConsumer(config.Kafka, consumerLogger.Logger), m, consumerLogger)
	consignmentListener := listeners.NewConsignmentListener(
		consignmentService, messageRepo, serviceName, config.Kafka.ConsumerGroup, consumerLogger.Logger)
	consignmentListener.Register(consumer)
	go func() {
		if err := consumer.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Kafka consumer stopped")
		}
	}()
	defer consumer.Close()
	logger.Info("Consignment listener started", "topic", kafka.Topics.ConsignmentEvents)

	// Router
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger)
	middlewareConfig.Metrics = m
	middleware.Setup(router, middlewareConfig)

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, mongoClient.HealthCheck))
	router.GET("/metrics", middleware.MetricsEndpoint(m))
	router.GET("/outbox/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, outboxPublisher.Stats())
	})
	router.GET("/circuit-breakers", func(c *gin.Context) {
		c.JSON(http.StatusOK, breakers.Status())
	})

	api := router.Group("/api/v1")
	api.Use(middleware.TenantAuth(&middleware.TenantAuthConfig{Required: true}))
	{
		stock := api.Group("/stock")
		stock.Use(middleware.RequireWarehouse())
		{
			stock.POST("", createStockItemHandler(stockService, logger))
			stock.GET("", listStockItemsHandler(stockService, logger))
			stock.POST("/reclassify-sweep", reclassifySweepHandler(stockService, logger))
			stock.POST("/assignments", assignLocationsHandler(assignmentService, logger))
			stock.POST("/assignments/returns", assignReturnLocationsHandler(assignmentService, logger))
			stock.GET("/:stockItemId", getStockItemHandler(stockService, logger))
			stock.PUT("/:stockItemId/expiration", updateExpirationDateHandler(stockService, logger))
			stock.POST("/:stockItemId/reclassify", reclassifyStockItemHandler(stockService, logger))
		}

		locations := api.Group("/locations")
		locations.Use(middleware.RequireWarehouse())
		{
			locations.POST("", createLocationHandler(locationService, logger))
			locations.GET("", listLocationsHandler(locationService, logger))
			locations.GET("/barcode/:barcode", getLocationByBarcodeHandler(locationService, logger))
			locations.GET("/:locationId", getLocationHandler(locationService, logger))
			locations.POST("/:locationId/block", blockLocationHandler(locationService, logger))
			locations.POST("/:locationId/unblock", unblockLocationHandler(locationService, logger))
		}

		movements := api.Group("/movements")
		movements.Use(middleware.RequireWarehouse())
		{
			movements.POST("", createMovementHandler(movementService, logger))
			movements.GET("", listMovementsHandler(movementService, logger))
			movements.GET("/:movementId", getMovementHandler(movementService, logger))
			movements.POST("/:movementId/complete", completeMovementHandler(movementService, logger))
			movements.POST("/:movementId/cancel", cancelMovementHandler(movementService, logger))
		}

		picking := api.Group("/picking-tasks")
		picking.Use(middleware.RequireWarehouse())
		{
			picking.POST("", createPickingTaskHandler(pickingService, logger))
			picking.GET("", listPickingTasksHandler(pickingService, logger))
			picking.GET("/:taskId", getPickingTaskHandler(pickingService, logger))
			picking.POST("/:taskId/pick", executePickHandler(pickingService, logger))
		}

		consignments := api.Group("/consignments")
		{
			consignments.POST("", createConsignmentHandler(consignmentService, logger))
			consignments.GET("/:consignmentId", getConsignmentHandler(consignmentService, logger))
			consignments.POST("/:consignmentId/confirm", confirmConsignmentHandler(consignmentService, logger))
		}
	}

	// Server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", "inventory_lifecycle")

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}
	kafkaConfig.ConsumerGroup = serviceName
	kafkaConfig.ClientID = serviceName

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB:    mongoConfig,
		Kafka:      kafkaConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
