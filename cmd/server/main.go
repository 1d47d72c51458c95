/*
main.go - Application entry point

PURPOSE:
  Starts the club engine server: loads configuration, connects the
  upstream client and the snapshot cache, wires the handlers and runs the
  HTTP server with graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env then environment)
  2. Build the zap logger
  3. Build the upstream client and snapshot cache
  4. Wire handler, metrics and router
  5. Serve until SIGINT/SIGTERM, then drain

ENVIRONMENT:
  PORT                      HTTP port (default 8090)
  CORS_ORIGINS              Comma-separated SPA origins
  UPSTREAM_BASE_URL         Club API base (default http://localhost:8000/api)
  COMPENSATION_SHARE_RATIO  Staff share override (default 0.70)
  CACHE_PATH                Snapshot cache path (default club-cache.db)
  CACHE_TTL_SECONDS         Snapshot freshness window (default 60)
  LOG_LEVEL                 zap level (default info)

SEE ALSO:
  - config/config.go: Full variable list and defaults
  - api/server.go:    Router configuration
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/club-engine/api"
	"github.com/warp/club-engine/clubapi"
	"github.com/warp/club-engine/config"
	"github.com/warp/club-engine/store/cache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := clubapi.New(cfg.Upstream.BaseURL,
		clubapi.WithTimeout(cfg.Upstream.Timeout()),
		clubapi.WithLogger(logger))
	if err != nil {
		logger.Fatal("upstream client init failed", zap.Error(err))
	}

	snapshots, err := cache.New(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		logger.Fatal("snapshot cache init failed", zap.Error(err))
	}
	defer snapshots.Close()

	handler := api.NewHandler(client, snapshots, logger)
	handler.ShareRatio = cfg.Upstream.ShareRatio

	router := api.NewRouter(handler, api.NewMetrics(), cfg.App.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.App.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.App.Addr()),
			zap.String("upstream", cfg.Upstream.BaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
