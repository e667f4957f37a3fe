package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dwatson/storefront/internal/auth"
	"github.com/dwatson/storefront/internal/config"
	"github.com/dwatson/storefront/internal/event"
	handler "github.com/dwatson/storefront/internal/handler/http"
	"github.com/dwatson/storefront/internal/homepage"
	"github.com/dwatson/storefront/internal/repository/postgres"
	"github.com/dwatson/storefront/internal/service"
	"github.com/dwatson/storefront/internal/tmpl"
	"github.com/dwatson/storefront/migrations"
	"github.com/dwatson/storefront/pkg/database"
	"github.com/dwatson/storefront/pkg/health"
	"github.com/dwatson/storefront/pkg/httpclient"
	pkgkafka "github.com/dwatson/storefront/pkg/kafka"
	"github.com/dwatson/storefront/pkg/middleware"
	"github.com/dwatson/storefront/pkg/tracing"
	"github.com/dwatson/storefront/web"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	redisClient     *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "storefront")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis for the rendered homepage cache.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Optional distributed tracing.
	var tracingShutdown func(context.Context) error
	if cfg.OTELEnabled {
		tracingCfg := tracing.DefaultConfig("storefront")
		tracingCfg.Environment = cfg.Environment
		tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
		tracingCfg.SampleRate = cfg.OTELSampleRate
		tracingCfg.Enabled = true

		tracingShutdown, err = tracing.InitTracer(ctx, tracingCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		logger.Info("tracing initialized", slog.String("endpoint", cfg.OTELEndpoint))
	}

	// Build the dependency graph.
	sectionRepo := postgres.NewSectionRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	eventProducer := event.NewProducer(producer, logger)

	renderCache := homepage.NewRenderCache(redisClient,
		time.Duration(cfg.RenderCacheTTLSecs)*time.Second)

	loader := tmpl.NewLoader(templateSource(cfg, logger))
	resolver := homepage.NewResolver(catalogRepo, logger)
	renderer := homepage.NewRenderer(sectionRepo, resolver, loader, renderCache, logger)

	sectionService := service.NewSectionService(sectionRepo, catalogRepo, eventProducer, renderCache, logger)
	dataService := service.NewSectionDataService(sectionRepo, catalogRepo, logger)

	sectionHandler := handler.NewSectionHandler(sectionService, dataService, logger)
	homepageHandler := handler.NewHomepageHandler(renderer, sectionService, dataService, loader, logger)
	catalogHandler := handler.NewCatalogHandler(catalogRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(sectionHandler, homepageHandler, catalogHandler, healthHandler,
		handler.RouterConfig{
			CORS:           corsCfg,
			PublicCacheAge: cfg.PublicCacheAgeSecs,
			PprofCIDRs:     cfg.PprofAllowedCIDRs,
			TokenValidator: auth.NewJWTValidator(cfg.JWTSecret),
		}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redisClient:     redisClient,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// templateSource picks the section template source: a remote asset host when
// a base URL is configured, otherwise the local template directory. Either
// way the embedded defaults serve templates the primary source is missing.
func templateSource(cfg *config.Config, logger *slog.Logger) tmpl.Source {
	defaults := tmpl.NewFSSource(web.Templates())

	if cfg.TemplateBaseURL == "" {
		return tmpl.NewFallbackSource(tmpl.NewDirSource(cfg.TemplateDir), defaults)
	}

	client := httpclient.New(httpclient.DefaultConfig())
	breaker := httpclient.NewCircuitBreakerClient(client,
		httpclient.DefaultCircuitBreakerConfig("template-assets"), logger)
	return tmpl.NewFallbackSource(tmpl.NewHTTPSource(breaker, cfg.TemplateBaseURL), defaults)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	// Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
