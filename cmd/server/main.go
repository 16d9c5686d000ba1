package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bundlescout/bundlescout/internal/config"
	"github.com/bundlescout/bundlescout/internal/handler"
	"github.com/bundlescout/bundlescout/internal/logger"
	"github.com/bundlescout/bundlescout/internal/model"
	"github.com/bundlescout/bundlescout/internal/registry"
	"github.com/bundlescout/bundlescout/internal/service"
	"github.com/bundlescout/bundlescout/pkg/gitsrc"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load the curated suggestion map, syncing its repo first if configured
	suggestionsPath := cfg.Suggestions.Path
	if cfg.Suggestions.RepoURL != "" {
		source := gitsrc.NewSource(cfg.Suggestions.RepoURL, cfg.Storage.Path, log)
		if err := source.Sync(); err != nil {
			log.Fatal("failed to sync suggestions repo", zap.Error(err))
		}
		suggestionsPath = source.File("suggestions.yaml")
	}
	suggestions, err := model.LoadSuggestions(suggestionsPath)
	if err != nil {
		log.Fatal("failed to load suggestion map", zap.Error(err))
	}
	log.Info("suggestion map loaded",
		zap.Int("originals", len(suggestions)),
		zap.Int("scrape_set", len(suggestions.ScrapeSet())),
	)

	// Initialize the size-lookup client and catalog service
	fetcher := registry.NewClient(cfg.Registry.SizeAPI, cfg.Builder.RequestTimeout, log)
	catalogService, err := service.NewCatalogService(cfg, log, fetcher, suggestions)
	if err != nil {
		log.Fatal("failed to create catalog service", zap.Error(err))
	}
	defer catalogService.Close()

	// Initialize API handler
	api, err := handler.NewAPI(cfg, log, catalogService)
	if err != nil {
		log.Fatal("failed to create API handler", zap.Error(err))
	}
	defer api.Close()

	// Create router
	r := chi.NewRouter()
	api.RegisterRoutes(r)

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	buildCtx, cancelBuilds := context.WithCancel(context.Background())
	defer cancelBuilds()

	// Start server in a goroutine
	go func() {
		log.Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Initial build (freshness checks skip packages scraped recently),
	// then periodic builds
	go func() {
		if err := catalogService.RunBuild(buildCtx); err != nil {
			log.Error("initial build failed", zap.Error(err))
		}

		ticker := time.NewTicker(cfg.Builder.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-buildCtx.Done():
				return
			case <-ticker.C:
				if err := catalogService.RunBuild(buildCtx); err != nil {
					log.Error("periodic build failed", zap.Error(err))
				}
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("shutting down server...")
	cancelBuilds()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited properly")
}
