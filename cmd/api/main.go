package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/api/handlers"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/contracts"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/infrastructure/cache"
	mongoRepo "github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/infrastructure/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/contracts/asyncapi"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/kafka"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/middleware"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox"
	outboxMongo "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/resilience"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/tracing"
)

const serviceName = "jewellery-inventory"

// mongoStore is the subset of the instrumented client the service uses
type mongoStore interface {
	mongodb.TxRunner
	Collection(name string) mongodb.Collection
	Close(context.Context) error
	HealthCheck(context.Context) error
}

type instrumentedStore struct {
	*mongodb.InstrumentedClient
}

func (s instrumentedStore) Collection(name string) mongodb.Collection {
	return s.InstrumentedClient.Collection(name)
}

type kafkaProducer interface {
	outbox.EventProducer
	Close() error
}

type outboxPublisher interface {
	Start(context.Context) error
	Stop() error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

type labelCache interface {
	application.LabelCache
	Close() error
}

// repositories holds the Mongo-backed ports and the outbox they write to
type repositories struct {
	orders   domain.PurchaseOrderRepository
	stockIns domain.StockInRepository
	returns  domain.PurchaseReturnRepository
	catalog  domain.CatalogRepository
	outbox   outbox.Repository
	indexers []indexer
}

var newInstrumentedMongoClient = func(ctx context.Context, cfg *mongodb.Config, m *metrics.Metrics, logger *logging.Logger) (mongoStore, error) {
	var client *mongodb.Client
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() error {
		c, err := mongodb.NewClient(ctx, cfg)
		if err != nil {
			logger.WithError(err).Warn("MongoDB not reachable yet, retrying")
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return instrumentedStore{mongodb.NewInstrumentedClient(client, m, logger)}, nil
}

var newKafkaProducer = func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) kafkaProducer {
	return kafka.NewProductionProducer(cfg, m, logger)
}

var newOutboxPublisher = func(repo outbox.Repository, producer outbox.EventProducer, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
	return outbox.NewPublisher(repo, producer, logger, m, cfg)
}

var newRepositories = func(store mongoStore, eventFactory *cloudevents.EventFactory) *repositories {
	outboxRepo := outboxMongo.NewOutboxRepository(store.Collection(outboxMongo.DefaultCollectionName))
	orders := mongoRepo.NewPurchaseOrderRepository(store.Collection(mongoRepo.CollectionPurchaseOrders), outboxRepo, eventFactory)
	stockIns := mongoRepo.NewStockInRepository(store.Collection(mongoRepo.CollectionStockIns), outboxRepo, eventFactory)
	returns := mongoRepo.NewPurchaseReturnRepository(store.Collection(mongoRepo.CollectionPurchaseReturns), outboxRepo, eventFactory)
	catalog := mongoRepo.NewCatalogRepository(store.Collection(mongoRepo.CollectionCatalogEntries), outboxRepo, eventFactory)

	return &repositories{
		orders:   orders,
		stockIns: stockIns,
		returns:  returns,
		catalog:  catalog,
		outbox:   outboxRepo,
		indexers: []indexer{outboxRepo, orders, stockIns, returns, catalog},
	}
}

var newLabelCache = func(ctx context.Context, cfg *cache.Config, logger *logging.Logger) labelCache {
	if cfg.Addr == "" {
		logger.Info("Catalog label cache disabled")
		return noopCache{}
	}
	redisCache := cache.NewRedisLabelCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		// Lookups fall back to Mongo while Redis is down
		logger.WithError(err).Warn("Redis not reachable, catalog labels will be read from MongoDB", "addr", cfg.Addr)
	}
	return redisCache
}

type noopCache struct {
	cache.NoopLabelCache
}

func (noopCache) Close() error { return nil }

var newEventValidator = func() (outbox.PayloadValidator, error) {
	return asyncapi.NewEventValidatorFromBytes(contracts.AsyncAPI)
}

var newMetrics = metrics.New

var initTracing = tracing.Initialize

var startHTTPServer = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.ParseLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting jewellery inventory API")

	config := loadConfig()

	// Initialize OpenTelemetry tracing
	tracerProvider, err := initTracing(ctx, config.Tracing)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", config.Tracing.OTLPEndpoint, "enabled", config.Tracing.Enabled)
	}

	m := newMetrics(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	store, err := newInstrumentedMongoClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	defer store.Close(context.Background())
	logger.Info("Connected to MongoDB",
		"database", config.MongoDB.Database,
		"transactions", config.MongoDB.TransactionsEnabled,
	)

	producer := newKafkaProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory("/" + serviceName)

	repos := newRepositories(store, eventFactory)
	for _, idx := range repos.indexers {
		if err := idx.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Error("Failed to create indexes")
			return err
		}
	}

	if config.Outbox.ValidateEvents {
		validator, err := newEventValidator()
		if err != nil {
			logger.WithError(err).Error("Failed to load event contracts")
			return err
		}
		config.Outbox.Publisher.Validator = validator
	}

	publisher := newOutboxPublisher(repos.outbox, producer, logger, m, config.Outbox.Publisher)
	if err := publisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		return err
	}
	defer func() {
		if err := publisher.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to stop outbox publisher")
		}
	}()
	logger.Info("Outbox publisher started", "pollInterval", config.Outbox.Publisher.PollInterval)

	labels := newLabelCache(ctx, config.Redis, logger)
	defer labels.Close()

	// Standalone mongod rejects multi-document transactions
	var tx mongodb.TxRunner = store
	if !config.MongoDB.TransactionsEnabled {
		tx = mongodb.Passthrough
	}

	// Initialize application services
	purchasingService := application.NewPurchasingService(repos.orders, repos.stockIns, tx, logger, m)
	receivingService := application.NewReceivingService(repos.stockIns, repos.orders, tx, logger, m)
	returnsService := application.NewReturnsService(repos.returns, repos.stockIns, tx, logger, m)
	catalogService := application.NewCatalogService(repos.catalog, labels, tx, logger, m)
	reconciliationService := application.NewReconciliationService(logger)

	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger)
	middlewareConfig.AllowedOrigins = config.AllowedOrigins
	middleware.Setup(router, middlewareConfig)
	router.Use(
		middleware.Metrics(m),
		middleware.Tracing(serviceName, middleware.ProbePaths...),
	)

	middleware.RegisterProbes(router, serviceName, m, store.HealthCheck)

	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Set{
		PurchaseOrders:  handlers.NewPurchaseOrderHandler(purchasingService, logger),
		StockIns:        handlers.NewStockInHandler(receivingService, logger),
		PurchaseReturns: handlers.NewPurchaseReturnHandler(returnsService, logger),
		Catalogs:        handlers.NewCatalogHandler(catalogService, logger),
		Reconciliation:  handlers.NewReconciliationHandler(reconciliationService, logger),
	})

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := startHTTPServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
	return nil
}

// OutboxConfig controls the relay from the outbox collection to Kafka
type OutboxConfig struct {
	Publisher      *outbox.PublisherConfig
	ValidateEvents bool
}

// Config holds application configuration
type Config struct {
	ServerAddr     string
	MongoDB        *mongodb.Config
	Kafka          *kafka.Config
	Redis          *cache.Config
	Outbox         OutboxConfig
	AllowedOrigins []string
	Tracing        *tracing.Config
}

func loadConfig() *Config {
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "false") == "true"

	redisConfig := cache.DefaultConfig()
	redisConfig.Addr = getEnv("REDIS_ADDR", "")
	redisConfig.Password = getEnv("REDIS_PASSWORD", "")
	redisConfig.DB = getEnvInt("REDIS_DB", 0)
	redisConfig.TTL = getEnvDuration("LABEL_CACHE_TTL", cache.DefaultTTL)

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:                 getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:            getEnv("MONGODB_DATABASE", "jewellery_inventory"),
			ConnectTimeout:      10 * time.Second,
			MaxPoolSize:         100,
			MinPoolSize:         5,
			ReplicaSet:          getEnv("MONGODB_REPLICA_SET", ""),
			TransactionsEnabled: getEnv("MONGODB_TRANSACTIONS", "true") == "true",
		},
		Kafka: &kafka.Config{
			Brokers:      splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
			WriteTimeout: 10 * time.Second,
		},
		Redis: redisConfig,
		Outbox: OutboxConfig{
			Publisher: &outbox.PublisherConfig{
				PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
				BatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 100),
				Retention:    getEnvDuration("OUTBOX_RETENTION", 7*24*time.Hour),
			},
			ValidateEvents: getEnv("OUTBOX_VALIDATE_EVENTS", "true") == "true",
		},
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		Tracing:        tracingConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
