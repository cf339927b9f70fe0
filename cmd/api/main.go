// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stocklot-be/internal/adapters/db"
	redis_a "github.com/ammerola/stocklot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stocklot-be/internal/adapters/storage"
	"github.com/ammerola/stocklot-be/internal/core/ports"
	"github.com/ammerola/stocklot-be/internal/core/services"
	"github.com/ammerola/stocklot-be/internal/handlers"
	"github.com/ammerola/stocklot-be/internal/handlers/middleware"
	"github.com/ammerola/stocklot-be/internal/pkg/config"
	"github.com/ammerola/stocklot-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	appLogger := logger.SetupLogger("debug", "json")
	slogger := appLogger.Logger

	slogger.Info("starting stocklot batch costing service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger = appLogger.Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Warn("failed to run migrations", slog.String("error", err.Error()))
		}
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database           *db.Database
	redisClient        *redis.Client
	redisCache         ports.CacheRepository
	storage            storage.StorageClient
	asynqClient        *asynq.Client
	asynqInspector     *asynq.Inspector
	costingService     ports.CostingService
	productHandler     *handlers.ProductHandler
	batchHandler       *handlers.BatchHandler
	consumptionHandler *handlers.ConsumptionHandler
	dashboardHandler   *handlers.DashboardHandler
	importHandler      *handlers.ImportHandler
	healthHandler      *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	deps.storage = store

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	productRepo := db.NewProductRepository(database, slogger)
	batchRepo := db.NewBatchRepository(database, slogger)

	deps.costingService = services.NewCostingService(productRepo, batchRepo, database, deps.redisCache, slogger)

	deps.productHandler = handlers.NewProductHandler(deps.costingService, productRepo, slogger)
	deps.batchHandler = handlers.NewBatchHandler(deps.costingService, slogger)
	deps.consumptionHandler = handlers.NewConsumptionHandler(deps.costingService, slogger)
	deps.dashboardHandler = handlers.NewDashboardHandler(database, deps.redisCache, slogger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg, slogger)

	maxFileSize := int64(cfg.FileProcessing.ExcelMaxSizeMB) * 1024 * 1024
	deps.importHandler = handlers.NewImportHandler(deps.asynqClient, store, slogger, maxFileSize)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps)

	var handler http.Handler = mux

	// Innermost first
	appLogger := logger.NewLogger(&logger.LogConfig{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})
	handler = middleware.RequestID(handler)
	handler = middleware.Logger(appLogger)(handler)
	handler = middleware.Recovery(slogger)(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}
	handler = middleware.SecureHeaders(handler)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	apiV1 := "/api/v1"

	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)

	// Products
	mux.HandleFunc("POST "+apiV1+"/products", deps.productHandler.CreateProduct)
	mux.HandleFunc("GET "+apiV1+"/products", deps.productHandler.ListProducts)
	mux.HandleFunc("GET "+apiV1+"/products/{id}", deps.productHandler.GetProduct)
	mux.HandleFunc("PATCH "+apiV1+"/products/{id}/status", deps.productHandler.SetStatus)
	mux.HandleFunc("POST "+apiV1+"/products/{id}/recompute", deps.productHandler.Recompute)

	// Batches
	mux.HandleFunc("POST "+apiV1+"/products/{id}/batches", deps.batchHandler.AddBatch)
	mux.HandleFunc("GET "+apiV1+"/products/{id}/batches", deps.batchHandler.ListBatches)
	mux.HandleFunc("GET "+apiV1+"/products/{id}/batches/next", deps.batchHandler.NextBatch)
	mux.HandleFunc("GET "+apiV1+"/batches/{batchId}", deps.batchHandler.GetBatch)
	mux.HandleFunc("PUT "+apiV1+"/batches/{batchId}", deps.batchHandler.UpdateBatch)
	mux.HandleFunc("DELETE "+apiV1+"/batches/{batchId}", deps.batchHandler.DeleteBatch)

	// Consumption
	mux.HandleFunc("POST "+apiV1+"/products/{id}/consume", deps.consumptionHandler.Consume)

	// Imports
	mux.HandleFunc("POST "+apiV1+"/import/batches", deps.importHandler.ImportBatches)
	mux.HandleFunc("POST "+apiV1+"/import/invoice", deps.importHandler.ImportInvoice)

	// Dashboard
	mux.HandleFunc("GET "+apiV1+"/dashboard", deps.dashboardHandler.GetDashboard)
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrator, err := db.NewMigrator(&db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, slogger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up(ctx)
}
