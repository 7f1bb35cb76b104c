package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/utafrali/catalog/internal/cache"
	"github.com/utafrali/catalog/internal/config"
	"github.com/utafrali/catalog/internal/event"
	handler "github.com/utafrali/catalog/internal/handler/http"
	"github.com/utafrali/catalog/internal/repository"
	mongorepo "github.com/utafrali/catalog/internal/repository/mongo"
	"github.com/utafrali/catalog/internal/repository/postgres"
	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/internal/storage"
	"github.com/utafrali/catalog/migrations"
	"github.com/utafrali/catalog/pkg/database"
	"github.com/utafrali/catalog/pkg/health"
	pkgkafka "github.com/utafrali/catalog/pkg/kafka"
	"github.com/utafrali/catalog/pkg/middleware"
	"github.com/utafrali/catalog/pkg/tracing"
)

// repositories is the set of stores one driver provides.
type repositories struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
}

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server

	// closers release resources in reverse order of acquisition.
	closers []func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Metrics go to the default Prometheus registry.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	reg, gatherer := prometheus.DefaultRegisterer, prometheus.DefaultGatherer

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close(context.Background())
		}
	}()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.onClose(shutdownTracer)
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler := health.NewHandler()

	repos, err := a.openStore(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}
	catalogCache, err := a.openCache(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}
	assets, err := a.openAssets(reg, healthHandler)
	if err != nil {
		return nil, err
	}
	publisher := a.openEvents(reg, healthHandler)

	// Build the dependency graph.
	services := handler.Services{
		Products:   service.NewProductService(repos.products, catalogCache, assets, publisher, logger),
		Query:      service.NewQueryEngine(repos.products, catalogCache, cfg.CacheTTL(), logger),
		Categories: service.NewCategoryService(repos.categories, publisher, logger),
		Brands:     service.NewBrandService(repos.brands, assets, publisher, logger),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(services, healthHandler, handler.RouterOptions{
		ServiceName: config.ServiceName,
		CORS:        cors,
		Metrics:     middleware.NewHTTPMetrics(reg, config.ServiceName),
		Gatherer:    gatherer,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ok = true
	return a, nil
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// openStore connects the document store selected by STORE_DRIVER.
func (a *App) openStore(ctx context.Context, reg prometheus.Registerer, hh *health.Handler) (repositories, error) {
	switch a.cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := database.NewMongoClient(ctx, a.cfg.Mongo(), a.logger)
		if err != nil {
			return repositories{}, fmt.Errorf("connect to mongo: %w", err)
		}
		a.onClose(client.Disconnect)

		db := client.Database(a.cfg.MongoDatabase)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			return repositories{}, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		a.logger.Info("connected to MongoDB", slog.String("database", a.cfg.MongoDatabase))

		hh.Register("mongo", func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
		return mongoRepositories(db), nil

	default:
		pgCfg := a.cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return repositories{}, fmt.Errorf("connect to postgres: %w", err)
		}
		a.onClose(func(context.Context) error {
			pool.Close()
			return nil
		})
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.Int("port", pgCfg.Port),
			slog.String("database", pgCfg.DBName),
		)

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return repositories{}, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")

		if err := database.RegisterPoolMetrics(reg, pool, config.ServiceName); err != nil {
			return repositories{}, fmt.Errorf("register pool metrics: %w", err)
		}
		hh.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return repositories{
			products:   postgres.NewProductRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			brands:     postgres.NewBrandRepository(pool),
		}, nil
	}
}

func mongoRepositories(db *mongo.Database) repositories {
	return repositories{
		products:   mongorepo.NewProductRepository(db),
		categories: mongorepo.NewCategoryRepository(db),
		brands:     mongorepo.NewBrandRepository(db),
	}
}

// openCache builds the listing cache selected by CACHE_DRIVER. A Redis
// outage only degrades readiness since cache errors are never fatal.
func (a *App) openCache(ctx context.Context, reg prometheus.Registerer, hh *health.Handler) (cache.Store, error) {
	var store cache.Store
	switch a.cfg.CacheDriver {
	case config.CacheDriverRedis:
		client, err := database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.onClose(func(context.Context) error { return client.Close() })
		a.logger.Info("connected to Redis", slog.String("addr", a.cfg.RedisAddr))

		hh.RegisterNonCritical("redis", redisCheck(client))
		store = cache.NewRedisStore(client, a.cfg.RedisKeyPrefix, a.logger)
	default:
		store = cache.NewMemoryStore()
	}
	return cache.Instrument(store, cache.NewMetrics(reg, a.cfg.CacheDriver)), nil
}

func redisCheck(client redis.UniversalClient) health.Checker {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// openAssets builds the asset store selected by ASSET_DRIVER behind a
// circuit breaker.
func (a *App) openAssets(reg prometheus.Registerer, hh *health.Handler) (storage.Storage, error) {
	var store storage.Storage
	switch a.cfg.AssetDriver {
	case config.AssetDriverCloudinary:
		cld, err := storage.NewCloudinaryStore(a.cfg.CloudinaryURL)
		if err != nil {
			return nil, err
		}
		store = cld
	default:
		store = storage.NewMemoryStore(a.cfg.AssetBaseURL)
	}
	a.logger.Info("asset store initialized", slog.String("driver", a.cfg.AssetDriver))

	breaker := storage.NewBreaker(store,
		storage.DefaultBreakerConfig("asset-store"),
		storage.NewBreakerMetrics(reg),
		a.logger,
	)
	hh.RegisterNonCritical("assets", func(context.Context) error {
		if breaker.State() == gobreaker.StateOpen {
			return errors.New("asset store circuit breaker is open")
		}
		return nil
	})
	return breaker, nil
}

// openEvents returns the Kafka publisher, or a no-op one when events are
// disabled.
func (a *App) openEvents(reg prometheus.Registerer, hh *health.Handler) event.Publisher {
	if !a.cfg.EventsEnabled {
		a.logger.Info("domain events disabled")
		return event.NopPublisher{}
	}

	producer := pkgkafka.NewProducer(
		pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers),
		a.logger,
		pkgkafka.NewProducerMetrics(reg),
	)
	a.onClose(func(context.Context) error { return producer.Close() })
	hh.RegisterNonCritical("kafka", producer.Ping)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	return event.NewProducer(producer, a.logger)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close(context.Background())
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.close(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Error("resource close error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
