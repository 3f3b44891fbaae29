// Package main is the entry point for the newsdesk curation service.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/internal/cache"
	"newsdesk/internal/config"
	"newsdesk/internal/curation"
	"newsdesk/internal/database"
	"newsdesk/internal/handlers"
	"newsdesk/internal/middleware"
	"newsdesk/internal/router"
)

func main() {
	// Structured logger for the whole process.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"featured_cap", cfg.Curation.FeaturedCap,
		"editors_pick_cap", cfg.Curation.EditorsPickCap,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey. The service runs without it — the feed cache is
	// an optimization, never a source of truth.
	var feedCache *cache.FeedCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable — feed caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		feedCache = cache.NewFeedCache(valkeyClient, cfg.Curation.FeedCacheTTL)
	}

	// Assemble the curation engine.
	registry := curation.NewRegistry(db)
	lists := curation.NewLists(db, cfg.Curation.FeaturedCap, cfg.Curation.EditorsPickCap)
	deriver := curation.NewDeriver(db, lists)

	var invalidator curation.FeedInvalidator
	if feedCache != nil {
		invalidator = feedCache
	}
	gateway := curation.NewGateway(db, registry, lists, invalidator)

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(gateway, deriver)
	publicHandlers := handlers.NewPublic(deriver, gateway, feedCache)

	// Rate-limit the admin API: 120 mutations per minute per client IP.
	adminLimiter := middleware.NewRateLimiter(120, time.Minute)
	defer adminLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(adminHandlers, publicHandlers, adminLimiter)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
