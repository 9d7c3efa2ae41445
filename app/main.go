package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tokvault/tokvault/app/api"
	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/database"
	"github.com/tokvault/tokvault/app/ingest"
	"github.com/tokvault/tokvault/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting TokVault server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	itemRepo := database.NewItemRepository(db)
	blobRepo := database.NewBlobRepository(db)
	tagRepo := database.NewTagRepository(db)

	ingester := ingest.NewIngester(itemRepo)
	if appCfg.ExportFile != "" {
		stats, err := ingester.RunFile(appCfg.ExportFile)
		if err != nil {
			slog.Error("Startup ingestion failed", "file", appCfg.ExportFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Startup ingestion completed", "file", appCfg.ExportFile,
			"total", stats.Total, "inserted", stats.Inserted, "skipped", stats.Skipped, "errors", stats.Errors)
	}

	resources := tasks.NewResources()

	scheduler := tasks.NewScheduler(resources, itemRepo, blobRepo, tagRepo)
	scheduler.Start()
	defer scheduler.Stop()

	coordinator := tasks.NewCoordinator(itemRepo, scheduler)
	if appCfg.SchedulerEnabled {
		coordinator.Start()
		defer coordinator.Stop()
		slog.Info("Coordinator started", "interval_seconds", appCfg.SchedulerInterval)
	} else {
		slog.Info("Coordinator disabled, stages run via the admin API only")
	}

	apiHandler := api.NewHandler(itemRepo, blobRepo, tagRepo, ingester, scheduler, coordinator)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Coordinator and scheduler are stopped via defer
	slog.Info("Shutdown complete")
}
