package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/latoulicious/holocron/internal/config"
	mw "github.com/latoulicious/holocron/internal/middleware"
	"github.com/latoulicious/holocron/internal/version"
	"github.com/latoulicious/holocron/internal/web"
	"github.com/latoulicious/holocron/pkg/catalog"
	"github.com/latoulicious/holocron/pkg/common"
	"github.com/latoulicious/holocron/pkg/database"
	"github.com/latoulicious/holocron/pkg/database/migration"
	"github.com/latoulicious/holocron/pkg/database/repository"
	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/latoulicious/holocron/pkg/swapi"
)

func main() {
	// Initialize application with proper error handling
	if err := initializeApplication(); err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}
}

// initializeApplication wires configuration, logging, the SWAPI client and the web server
func initializeApplication() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logOpts := logging.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format}
	logging.SetGlobalLoggerFactory(logging.NewLoggerFactoryWithOptions(logOpts))

	// Optional log persistence
	var retention *database.RetentionJob
	if cfg.PersistLogs() {
		job, closeDB, err := initializeCentralizedLogging(cfg, logOpts)
		if err != nil {
			return fmt.Errorf("failed to initialize centralized logging: %w", err)
		}
		defer closeDB()
		retention = job
	}

	factory := logging.GetGlobalLoggerFactory()
	systemLogger := factory.CreateLogger("system")
	systemLogger.Info("Starting holocron", map[string]interface{}{
		"version":      version.Get().String(),
		"api_base_url": cfg.API.BaseURL,
		"persist_logs": cfg.PersistLogs(),
	})

	metrics := swapi.NewFetchMetrics()
	client, err := swapi.NewClient(cfg.API.BaseURL,
		swapi.WithTimeout(cfg.API.Timeout),
		swapi.WithMetrics(metrics),
		swapi.WithLogger(factory.CreateLogger("swapi")),
	)
	if err != nil {
		return fmt.Errorf("failed to create SWAPI client: %w", err)
	}

	probe, err := web.NewUpstreamProbe(client, cfg.API.ProbeSchedule, cfg.API.Timeout, factory.CreateLogger("probe"))
	if err != nil {
		return fmt.Errorf("failed to create upstream probe: %w", err)
	}

	signer, ephemeral := mw.NewSigner(cfg.Session.SigningKey)
	if ephemeral {
		systemLogger.Warn("No session signing key configured, using an ephemeral key; favorites reset on restart", nil)
	}

	health := web.NewHealth(metrics, probe)
	health.Database = cfg.PersistLogs()

	server, err := web.NewServer(web.Deps{
		Catalog: catalog.NewCatalogService(client, cfg.API.ImageBaseURL, factory.CreateViewLogger("catalog")),
		Detail: catalog.NewDetailService(client, cfg.API.ImageBaseURL,
			common.NewTimeoutManager(cfg.API.DetailTimeout),
			catalog.DetailOptions{
				FetchLimit:        cfg.API.FetchConcurrency,
				ResolveReferences: cfg.API.ResolveReferences,
			},
			factory.CreateViewLogger("detail")),
		Cookies:        mw.NewCookies(signer, cfg.Session.SecureCookie),
		Health:         health,
		LoggerFactory:  factory,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	probe.Start()
	if retention != nil {
		retention.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		systemLogger.Info("HTTP server listening", map[string]interface{}{"addr": cfg.Server.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case sig := <-sc:
		systemLogger.Info("Shutting down gracefully", map[string]interface{}{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			systemLogger.Error("HTTP server failed", err, nil)
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		systemLogger.Error("HTTP server shutdown error", err, nil)
	}
	probe.Stop(ctx)
	if retention != nil {
		retention.Stop(ctx)
	}

	systemLogger.Info("Application shutdown complete", nil)
	return nil
}

// initializeCentralizedLogging connects the database, migrates the log table and
// swaps in the database-backed logger factory
func initializeCentralizedLogging(cfg *config.Config, opts logging.Options) (*database.RetentionJob, func(), error) {
	db, err := database.NewGormDBFromConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	closeDB := func() { _ = sqlDB.Close() }

	if err := migration.RunMigration(db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logRepo := repository.NewLogRepository(db)
	loggerFactory := logging.NewDatabaseLoggerFactory(logRepo, opts, cfg.Logger.DBLevel)
	logging.SetGlobalLoggerFactory(loggerFactory)

	systemLogger := loggerFactory.CreateLogger("system")
	systemLogger.Info("Centralized logging system initialized successfully", map[string]interface{}{
		"database_connected": true,
		"logger_type":        "database",
		"min_level":          cfg.Logger.DBLevel,
	})

	job, err := database.NewRetentionJob(logRepo, cfg.Database.Retention, cfg.Database.RetentionSchedule, loggerFactory.CreateLogger("retention"))
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return job, closeDB, nil
}
