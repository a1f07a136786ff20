package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archie-core-auth-gateway/internal/application"
	"archie-core-auth-gateway/internal/application/webhook_handlers"
	"archie-core-auth-gateway/internal/config"
	apiinfra "archie-core-auth-gateway/internal/infrastructure/api"
	"archie-core-auth-gateway/internal/infrastructure/encryption"
	"archie-core-auth-gateway/internal/infrastructure/flags"
	"archie-core-auth-gateway/internal/infrastructure/metrics"
	"archie-core-auth-gateway/internal/infrastructure/reporting"
	"archie-core-auth-gateway/internal/infrastructure/repository"
	"archie-core-auth-gateway/internal/infrastructure/signature"
	"archie-core-auth-gateway/internal/infrastructure/syncqueue"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger = logger.Level(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to create indexes")
	}
	cancel()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis unreachable at startup; flags and sync will fail until it recovers")
	}

	// Initialize infrastructure (implementations)
	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	environmentRepo := repository.NewMongoEnvironmentRepository(db)
	providerConfigRepo := repository.NewMongoProviderConfigRepository(db)
	connectionRepo := repository.NewMongoConnectionRepository(db, encryptionService)
	activityLogRepo := repository.NewMongoActivityLogRepository(db)

	promMetrics := metrics.NewPrometheus()
	reporter := reporting.NewLogReporter(logger)
	analytics := reporting.NewStreamAnalytics(rdb, cfg.AnalyticsStream, logger)
	featureFlags := flags.NewRedisFlags(rdb, cfg.FlagPrefix)
	syncClient := syncqueue.NewRedisSyncClient(rdb, cfg.SyncQueue, logger)

	// Initialize application services
	tasks := application.NewTaskRunner(logger, promMetrics)
	accountService := application.NewAccountService(environmentRepo, logger, cfg.StageTimeout)

	pipeline := application.NewCredentialPipeline(application.CredentialPipelineDeps{
		Recorder:    application.NewActivityRecorder(activityLogRepo, reporter, logger, cfg.StageTimeout),
		Gate:        application.NewSecurityGate(signature.NewVerifier(environmentRepo)),
		Resolver:    application.NewProviderResolver(providerConfigRepo),
		Connections: connectionRepo,
		SyncClient:  syncClient,
		Analytics:   analytics,
		Reporter:    reporter,
		Metrics:     promMetrics,
		Tasks:       tasks,
	}, application.PipelineOptions{
		StageTimeout: cfg.StageTimeout,
		SyncTimeout:  cfg.SyncTimeout,
	}, logger)

	// Initialize webhook dispatcher and register handlers
	dispatcher := application.NewWebhookDispatcher(environmentRepo, providerConfigRepo, logger)
	dispatcher.RegisterHandler(webhook_handlers.NewShopifyHandler(logger,
		webhook_handlers.NewOrderHandler(logger),
		webhook_handlers.NewProductHandler(logger),
		webhook_handlers.NewCustomerHandler(logger),
		webhook_handlers.NewAppUninstalledHandler(logger),
	))
	dispatcher.RegisterHandler(webhook_handlers.NewSlackHandler(logger))

	webhookRouter := application.NewWebhookRouter(environmentRepo, featureFlags, dispatcher, promMetrics, logger, cfg.StageTimeout)

	router := apiinfra.NewRouter(apiinfra.RouterDeps{
		Accounts:       accountService,
		Authorizer:     pipeline,
		Webhooks:       webhookRouter,
		MetricsHandler: promMetrics.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.SyncTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Background tasks still running at exit")
	}
}
