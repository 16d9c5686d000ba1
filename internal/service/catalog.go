package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bundlescout/bundlescout/internal/config"
	"github.com/bundlescout/bundlescout/internal/model"
	"github.com/bundlescout/bundlescout/internal/store"
	"go.uber.org/zap"
)

// CatalogService owns the catalog lifecycle: it loads the persisted
// snapshot at startup, runs builder passes, persists the result, and hands
// out immutable snapshots to readers.
type CatalogService struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       *store.SQLiteStore
	builder     *Builder
	suggestions model.SuggestionMap

	mu      sync.RWMutex
	current *model.Catalog
	onBuild func()
}

// NewCatalogService opens the store and loads the last persisted catalog.
func NewCatalogService(cfg *config.Config, logger *zap.Logger, fetcher SizeFetcher, suggestions model.SuggestionMap) (*CatalogService, error) {
	dbStore, err := store.NewSQLiteStore(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	catalog, err := dbStore.Load()
	if err != nil {
		dbStore.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("packages", len(catalog.Packages)))

	return &CatalogService{
		cfg:         cfg,
		logger:      logger,
		store:       dbStore,
		builder:     NewBuilder(cfg.Builder, fetcher, logger),
		suggestions: suggestions,
		current:     catalog,
	}, nil
}

// Close closes the service and its resources
func (s *CatalogService) Close() error {
	return s.store.Close()
}

// Snapshot returns the current catalog. Readers must treat it as immutable;
// it is replaced wholesale after each build run.
func (s *CatalogService) Snapshot() *model.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Suggestions returns the suggestion map loaded at startup.
func (s *CatalogService) Suggestions() model.SuggestionMap {
	return s.suggestions
}

// SetOnBuildCallback registers a hook invoked after every successful build run.
func (s *CatalogService) SetOnBuildCallback(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBuild = fn
}

// RunBuild executes one builder pass against the current snapshot, persists
// the updated catalog, and publishes it to readers.
func (s *CatalogService) RunBuild(ctx context.Context) error {
	updated, err := s.builder.BuildCatalog(ctx, s.suggestions, s.Snapshot())
	if err != nil {
		return err
	}

	if err := s.store.Save(updated); err != nil {
		return fmt.Errorf("failed to persist catalog: %w", err)
	}

	s.mu.Lock()
	s.current = updated
	callback := s.onBuild
	s.mu.Unlock()

	if callback != nil {
		callback()
	}

	s.logger.Info("catalog build completed", zap.Int("packages", len(updated.Packages)))
	return nil
}

// Audit runs the matching engine for one detected-library feed against the
// current catalog snapshot.
func (s *CatalogService) Audit(detected []model.DetectedLibrary) []model.Pairing {
	return Match(detected, s.suggestions, s.Snapshot())
}
