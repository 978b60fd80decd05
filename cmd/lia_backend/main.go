package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	_ "github.com/openbooks/ledger_ingest_app/cmd/docs"
	"github.com/openbooks/ledger_ingest_app/internal/artifacts"
	"github.com/openbooks/ledger_ingest_app/internal/core/services"
	"github.com/openbooks/ledger_ingest_app/internal/handlers"
	"github.com/openbooks/ledger_ingest_app/internal/middleware"
	"github.com/openbooks/ledger_ingest_app/internal/platform/config"
	"github.com/openbooks/ledger_ingest_app/internal/repositories/database/pgsql"
	"github.com/openbooks/ledger_ingest_app/internal/utils"
	"github.com/openbooks/ledger_ingest_app/pkg/database"
)

// @title Ledger Ingest Backend API
// @version 1.0
// @description Transaction cache and deduplication backend.

// @host localhost:8080
// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	artifactStore, err := artifacts.NewFSStore(cfg.ArtifactRoot)
	if err != nil {
		logger.Error("Failed to initialize artifact store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos, artifactStore)

	if cfg.CacheWarmOnStart {
		// A cold store at boot is not fatal; the first read retries the load.
		if err := container.Cache.Warm(context.Background()); err != nil {
			logger.Warn("Snapshot cache warm-up failed", slog.String("error", err.Error()))
		} else {
			logger.Info("Snapshot cache warmed")
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, artifactStore, posthogClient, logger)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
