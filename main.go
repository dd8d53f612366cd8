package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/config"
	"github.com/doctrace/review-engine/pkg/database"
	"github.com/doctrace/review-engine/pkg/handlers"
	"github.com/doctrace/review-engine/pkg/middleware"
	"github.com/doctrace/review-engine/pkg/notify"
	"github.com/doctrace/review-engine/pkg/repositories"
	"github.com/doctrace/review-engine/pkg/retry"
	"github.com/doctrace/review-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database.Database),
		zap.String("db_host", cfg.Database.Host),
		zap.Bool("notify_enabled", cfg.Notify.Enabled),
		zap.Bool("notify_mock", cfg.Notify.Mock))

	ctx := context.Background()

	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.URL(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if err := database.SeedIfEmpty(ctx, db, cfg.SeedFile, logger); err != nil {
		logger.Fatal("Failed to seed database", zap.Error(err))
	}

	// Repositories
	documentRepo := repositories.NewDocumentRepository(db)
	versionRepo := repositories.NewVersionRepository(db)
	attributeRepo := repositories.NewAttributeRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)

	// Services
	attributionService := services.NewAttributionService(versionRepo, attributeRepo,
		time.Duration(cfg.AttributionCacheTTLSeconds)*time.Second, logger)
	documentService := services.NewDocumentService(documentRepo, versionRepo, attributeRepo,
		attributionService, logger)

	notifier := notify.NewClient(notify.Config{
		Enabled:    cfg.Notify.Enabled,
		Mock:       cfg.Notify.Mock,
		BaseURL:    cfg.Notify.BaseURL,
		ReviewPath: cfg.Notify.ReviewPath,
		Timeout:    time.Duration(cfg.Notify.TimeoutSeconds) * time.Second,
		APIKey:     cfg.Notify.APIKey,
		OutputFile: cfg.Notify.OutputFile,
		RetryCount: cfg.Notify.RetryCount,
	}, logger)

	reviewService := services.NewReviewService(db, documentRepo, versionRepo, attributeRepo,
		reviewRepo, deliveryRepo, attributionService, notifier, cfg.Notify.Async, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewDocumentsHandler(documentService, logger).RegisterRoutes(mux)
	handlers.NewAttributesHandler(documentService, logger).RegisterRoutes(mux)
	handlers.NewReviewHandler(reviewService, logger).RegisterRoutes(mux)

	if cfg.ContractsDir != "" {
		if _, err := os.Stat(cfg.ContractsDir); err == nil {
			fs := http.FileServer(http.Dir(cfg.ContractsDir))
			mux.Handle("/contracts/", http.StripPrefix("/contracts/", fs))
			logger.Info("Serving contract PDFs", zap.String("dir", cfg.ContractsDir))
		} else {
			logger.Warn("Contracts directory not found, static serving disabled",
				zap.String("dir", cfg.ContractsDir))
		}
	}

	handler := middleware.CORS(&cfg.CORS)(middleware.RequestLogger(logger)(mux))

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting review-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runMigrations opens a database/sql connection for golang-migrate and
// applies pending migrations.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}
