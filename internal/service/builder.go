package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bundlescout/bundlescout/internal/config"
	"github.com/bundlescout/bundlescout/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SizeFetcher is the slice of the size-lookup client the builder needs.
type SizeFetcher interface {
	// LatestSize fetches the size record of the package's current release.
	LatestSize(ctx context.Context, name string) (model.PackageSizeRecord, error)
	// PackageHistory fetches up to limit recent version records, newest first.
	PackageHistory(ctx context.Context, name string, limit int) ([]model.PackageSizeRecord, error)
}

// Builder keeps the catalog fresh for every package the suggestion map
// references. Scrapes run sequentially, throttled by a token bucket and
// capped by a per-request timeout, so the external size service is never
// hammered and one stalled package cannot block the rest of the run.
type Builder struct {
	fetcher      SizeFetcher
	limiter      *rate.Limiter
	logger       *zap.Logger
	freshness    time.Duration
	timeout      time.Duration
	historyLimit int
	now          func() time.Time
}

// NewBuilder creates a Builder from the builder section of the config.
func NewBuilder(cfg config.Builder, fetcher SizeFetcher, logger *zap.Logger) *Builder {
	return &Builder{
		fetcher:      fetcher,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		logger:       logger,
		freshness:    cfg.FreshnessWindow,
		timeout:      cfg.RequestTimeout,
		historyLimit: cfg.HistoryLimit,
		now:          time.Now,
	}
}

// BuildCatalog scrapes every package in the suggestion map's scrape set and
// merges the results into a copy of existing. Packages scraped within the
// freshness window are skipped without a network call. A fetch failure marks
// only that package's entry with the error sentinel; the run continues. The
// input catalog is never mutated. The returned error is non-nil only when
// the run itself was cancelled.
func (b *Builder) BuildCatalog(ctx context.Context, suggestions model.SuggestionMap, existing *model.Catalog) (*model.Catalog, error) {
	updated := existing.Clone()

	for _, name := range suggestions.ScrapeSet() {
		if updated.Entry(name).Fresh(b.freshness, b.now()) {
			b.logger.Debug("skipping fresh package", zap.String("package", name))
			continue
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return updated, fmt.Errorf("build run cancelled: %w", err)
		}

		b.scrapePackage(ctx, suggestions, updated, name)

		if err := ctx.Err(); err != nil {
			return updated, fmt.Errorf("build run cancelled: %w", err)
		}
	}

	return updated, nil
}

// scrapePackage fetches, validates, and merges size records for one package.
// Failures never escape: they become the package's error sentinel.
func (b *Builder) scrapePackage(ctx context.Context, suggestions model.SuggestionMap, catalog *model.Catalog, name string) {
	scrapeCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var records []model.PackageSizeRecord
	var err error
	if suggestions.IsOriginal(name) {
		// A detected page may pin an old version of an oversized package,
		// so keep a bounded history. Alternatives are always compared at
		// latest.
		records, err = b.fetcher.PackageHistory(scrapeCtx, name, b.historyLimit)
	} else {
		var rec model.PackageSizeRecord
		rec, err = b.fetcher.LatestSize(scrapeCtx, name)
		if err == nil {
			records = []model.PackageSizeRecord{rec}
		}
	}
	if err != nil {
		b.logger.Warn("scrape failed",
			zap.String("package", name),
			zap.Error(err),
		)
		catalog.MarkError(name, err.Error(), b.now())
		return
	}

	valid := records[:0:0]
	for _, rec := range records {
		if verr := rec.Validate(); verr != nil {
			var validationErr *model.ValidationError
			if errors.As(verr, &validationErr) {
				b.logger.Warn("discarding invalid size record",
					zap.String("package", name),
					zap.String("version", rec.Version),
					zap.String("field", validationErr.Field),
				)
			}
			continue
		}
		valid = append(valid, rec)
	}

	if len(valid) == 0 {
		catalog.MarkError(name, "no valid size records returned", b.now())
		return
	}

	catalog.MergeScrape(name, valid, b.now())
	b.logger.Info("package scraped",
		zap.String("package", name),
		zap.Int("versions", len(valid)),
		zap.Int64("gzip", valid[0].Gzip),
	)
}
