package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"strategymap/application/commands"
	"strategymap/application/commands/bus"
	"strategymap/application/ports"
	"strategymap/application/queries"
	querybus "strategymap/application/queries/bus"
	domainconfig "strategymap/domain/config"
	"strategymap/infrastructure/cache"
	"strategymap/infrastructure/config"
	"strategymap/infrastructure/messaging/eventbridge"
	"strategymap/infrastructure/persistence/dynamodb"
	"strategymap/infrastructure/persistence/memory"
	"strategymap/interfaces/http/rest"
	"strategymap/pkg/observability"
)

// strategyCacheTTL is how long a read of a client's map is served from cache, in seconds
const strategyCacheTTL = 30

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	LogLevel       zap.AtomicLevel
	DomainConfig   *domainconfig.DomainConfig
	StrategyRepo   ports.StrategyRepository
	EventPublisher ports.EventPublisher
	Cache          ports.Cache
	Metrics        *observability.Collector
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Handler        http.Handler
}

// ProvideLogLevel parses the configured level into a runtime-adjustable one
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(cfg.LogLevel)
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	logger, err := cfg.BuildLogger(level)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideDomainConfig applies deployment overrides to the default rules
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	dc := domainconfig.DefaultDomainConfig()
	if cfg.SyncDebounce > 0 {
		dc.SyncDebounce = cfg.SyncDebounce
	}
	if cfg.RemoteTimeout > 0 {
		dc.SyncTimeout = cfg.RemoteTimeout
	}
	return dc
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideStrategyRepository selects the storage backend
func ProvideStrategyRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.StrategyRepository {
	if cfg.StorageBackend == config.StorageDynamoDB {
		return dynamodb.NewStrategyRepository(client, cfg.DynamoDBTable, logger)
	}
	logger.Info("Using in-memory strategy storage")
	return memory.NewStrategyRepository(logger)
}

// ProvideEventPublisher creates the EventBridge publisher, or none when no
// bus is configured.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCache creates the query cache
func ProvideCache() (ports.Cache, func()) {
	c := cache.NewInMemoryCache(time.Minute)
	return c, c.Close
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("strategymap")
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repo ports.StrategyRepository,
	publisher ports.EventPublisher,
	c ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)

	syncHandler := commands.NewSyncStrategyHandler(repo, publisher, c, domainCfg, logger)
	if err := commandBus.Register(commands.SyncStrategyCommand{}, pipeline.Execute(syncHandler)); err != nil {
		return nil, fmt.Errorf("register sync handler: %w", err)
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.StrategyRepository,
	c ports.Cache,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	var getHandler querybus.QueryHandler = queries.NewGetStrategyHandler(repo, logger)
	getHandler = querybus.NewCachingMiddleware(c, strategyCacheTTL, logger).Wrap(getHandler)
	getHandler = querybus.NewMetricsMiddleware(metrics).Wrap(getHandler)

	if err := queryBus.Register(queries.GetStrategyQuery{}, getHandler); err != nil {
		return nil, fmt.Errorf("register get strategy handler: %w", err)
	}

	return queryBus, nil
}

// ProvideRouter builds the HTTP handler
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(commandBus, queryBus, cfg, metrics, logger).Setup()
}
