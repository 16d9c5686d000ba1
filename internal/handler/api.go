package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/bundlescout/bundlescout/internal/config"
	"github.com/bundlescout/bundlescout/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// packageCacheSize bounds the per-package response cache.
const packageCacheSize = 512

// CatalogProvider is the slice of the catalog service the API needs.
type CatalogProvider interface {
	Snapshot() *model.Catalog
	Suggestions() model.SuggestionMap
	Audit(detected []model.DetectedLibrary) []model.Pairing
	RunBuild(ctx context.Context) error
	SetOnBuildCallback(fn func())
}

// API handles HTTP requests
type API struct {
	cfg          *config.Config
	logger       *zap.Logger
	catalog      CatalogProvider
	rateLimiter  *RateLimiter
	packageCache *lru.Cache[string, []byte]
}

// NewAPI creates a new API instance
func NewAPI(cfg *config.Config, logger *zap.Logger, catalog CatalogProvider) (*API, error) {
	packageCache, err := lru.New[string, []byte](packageCacheSize)
	if err != nil {
		return nil, err
	}

	api := &API{
		cfg:          cfg,
		logger:       logger,
		catalog:      catalog,
		rateLimiter:  NewRateLimiter(float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		packageCache: packageCache,
	}

	catalog.SetOnBuildCallback(func() {
		api.packageCache.Purge()
		logger.Info("package cache invalidated after build")
	})

	return api, nil
}

// Close releases the API's resources.
func (a *API) Close() error {
	a.rateLimiter.Close()
	return nil
}

// RegisterRoutes registers the API routes
func (a *API) RegisterRoutes(r chi.Router) {
	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// API routes with rate limiting
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.rateLimiter.RateLimit)
		r.Post("/audit", a.audit)
		r.Get("/catalog", a.listCatalog)
		r.Get("/catalog/{name}", a.getPackage)
		r.Get("/suggestions", a.listSuggestions)
	})

	// Admin routes (localhost only)
	r.Route("/admin", func(r chi.Router) {
		r.Use(LocalOnly)
		r.Post("/build", a.triggerBuild)
	})
}

// audit accepts a detected-library feed and returns ranked pairings.
func (a *API) audit(w http.ResponseWriter, r *http.Request) {
	var detected []model.DetectedLibrary
	if err := json.NewDecoder(r.Body).Decode(&detected); err != nil {
		http.Error(w, "invalid detected-library feed", http.StatusBadRequest)
		return
	}

	pairings := a.catalog.Audit(detected)
	if pairings == nil {
		pairings = []model.Pairing{}
	}

	a.writeJSON(w, struct {
		Pairings []model.Pairing `json:"pairings"`
	}{Pairings: pairings})
}

// catalogSummary is one row of the catalog listing.
type catalogSummary struct {
	Name        string `json:"name"`
	Gzip        int64  `json:"gzip,omitempty"`
	Versions    int    `json:"versions"`
	LastScrape  int64  `json:"lastScrape,omitempty"`
	ScrapeError string `json:"scrapeError,omitempty"`
}

// listCatalog returns every tracked package with its latest size and
// freshness state.
func (a *API) listCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := a.catalog.Snapshot()

	summaries := make([]catalogSummary, 0, len(catalog.Packages))
	for name, entry := range catalog.Packages {
		summary := catalogSummary{
			Name:        name,
			Versions:    len(entry.Versions),
			ScrapeError: entry.ScrapeError,
		}
		if !entry.LastScrape.IsZero() {
			summary.LastScrape = entry.LastScrape.Unix()
		}
		if latest, ok := catalog.Latest(name); ok {
			summary.Gzip = latest.Gzip
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	a.writeJSON(w, summaries)
}

// getPackage returns the full version map for one package. Marshaled
// responses are cached until the next build run.
func (a *API) getPackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		http.Error(w, "package name is required", http.StatusBadRequest)
		return
	}

	if cached, ok := a.packageCache.Get(name); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	entry := a.catalog.Snapshot().Entry(name)
	if entry == nil {
		http.Error(w, "package not found", http.StatusNotFound)
		return
	}

	body, err := json.Marshal(entry)
	if err != nil {
		a.logger.Error("failed to marshal package entry",
			zap.String("package", name),
			zap.Error(err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.packageCache.Add(name, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// listSuggestions returns the curated suggestion map.
func (a *API) listSuggestions(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, a.catalog.Suggestions())
}

// triggerBuild runs a builder pass immediately.
func (a *API) triggerBuild(w http.ResponseWriter, r *http.Request) {
	if err := a.catalog.RunBuild(r.Context()); err != nil {
		a.logger.Error("manual build failed", zap.Error(err))
		http.Error(w, "build failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", zap.Error(err))
	}
}
