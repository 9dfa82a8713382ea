package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taitfuller/feedr-backend/internal/auth"
	"github.com/taitfuller/feedr-backend/internal/cache"
	"github.com/taitfuller/feedr-backend/internal/config"
	"github.com/taitfuller/feedr-backend/internal/event"
	"github.com/taitfuller/feedr-backend/internal/github"
	handler "github.com/taitfuller/feedr-backend/internal/handler/http"
	"github.com/taitfuller/feedr-backend/internal/repository/postgres"
	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/migrations"
	"github.com/taitfuller/feedr-backend/pkg/database"
	"github.com/taitfuller/feedr-backend/pkg/health"
	"github.com/taitfuller/feedr-backend/pkg/httpclient"
	pkgkafka "github.com/taitfuller/feedr-backend/pkg/kafka"
	"github.com/taitfuller/feedr-backend/pkg/middleware"
	"github.com/taitfuller/feedr-backend/pkg/tracing"
)

// App wires together all dependencies and runs the feedr API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)
	database.RegisterPoolMetrics(pool, handler.ServiceName)

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	if cfg.SlowQuery > 0 {
		database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	}

	// Redis only backs the app-name cache, so the API starts without it.
	var appCache service.AppCache
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis unavailable, app cache disabled", slog.String("error", err.Error()))
	} else {
		appCache = cache.NewAppCatalog(redisClient, cfg.AppCacheTTL)
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.GitHubTimeout
	cbCfg := httpclient.DefaultCircuitBreakerConfig("github")
	cbCfg.Timeout = cfg.GitHubBreakerTimeout
	cbCfg.MinRequests = cfg.GitHubBreakerMinReqs
	githubClient := github.NewClient(
		httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger),
		cfg.GitHubAPIURL,
		logger,
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	eventProducer := event.NewProducer(producer, logger)

	reviewRepo := postgres.NewReviewRepository(pool)
	topicRepo := postgres.NewTopicRepository(pool)
	feedRepo := postgres.NewFeedRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	aggregation := service.NewAggregationService(reviewRepo, logger)
	services := handler.Services{
		Aggregation: aggregation,
		Reviews:     service.NewReviewService(reviewRepo, eventProducer, logger),
		Topics:      service.NewTopicService(topicRepo, reviewRepo, aggregation, cfg.SummaryShape(), logger),
		Feeds:       service.NewFeedService(feedRepo, appCache, eventProducer, logger),
		Users:       service.NewUserService(userRepo, githubClient, logger),
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := handler.NewRouter(handler.RouterConfig{
		CORSOrigin:     cfg.CORSOrigin,
		RequestTimeout: cfg.RequestTimeout,
		IssueRateLimit: middleware.RateLimitConfig{
			PerMinute: cfg.GitHubIssuesPerMinute,
			Burst:     cfg.GitHubIssueBurst,
		},
		ValidateToken: jwtManager.Validate,
	}, services, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown stops components in order: HTTP server, tracer, Kafka producer,
// Redis, PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Spans from drained requests are flushed after the HTTP drain.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
