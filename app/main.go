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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lysyi3m/argot/app/api"
	"github.com/lysyi3m/argot/app/cfg"
	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/extensions"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
	"github.com/lysyi3m/argot/app/ping"
	"github.com/lysyi3m/argot/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}
	defer cfg.Reset()

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Argot server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	registry := extensions.Default()
	slog.Debug("Extension registry initialized", "extensions", registry.Len())

	configCache := feed.NewConfigCache(appCfg.FeedsDir, registry)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load resource configurations", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded resource configurations", "count", configCache.GetConfigCount())

	resourceRepo := database.NewResourceStore(db)
	pingRepo := database.NewPingStore(db)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewWithRegistry(promRegistry)

	httpClient := &http.Client{Timeout: appCfg.ClientTimeoutDuration()}
	notifier := &tasks.Notifier{
		Trackback: ping.NewTrackbackClient(httpClient, appCfg.UserAgent),
		Pingback:  ping.NewPingbackClient(httpClient, appCfg.UserAgent),
		BlogName:  appCfg.BlogName,
		Timeout:   appCfg.ClientTimeoutDuration(),
	}

	scheduler := tasks.NewScheduler(configCache, resourceRepo, pingRepo, httpClient,
		feed.NewParser(), feed.NewFilterer(), notifier, collector)
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(configCache, resourceRepo, pingRepo, scheduler, collector)
	server := api.NewServer(handler, appCfg.APIAccessKey, promRegistry)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "base_url", appCfg.BaseUrl)
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

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
