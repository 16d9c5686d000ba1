package model

import (
	"testing"
	"time"
)

func TestCatalogResolveFallback(t *testing.T) {
	now := time.Now()
	catalog := NewCatalog()
	catalog.MergeScrape("moment", []PackageSizeRecord{
		{Name: "moment", Version: "2.30.1", Gzip: 20000},
		{Name: "moment", Version: "2.29.0", Gzip: 21000},
	}, now)

	if rec, ok := catalog.Resolve("moment", "2.29.0"); !ok || rec.Gzip != 21000 {
		t.Errorf("exact version lookup failed: %+v", rec)
	}
	if rec, ok := catalog.Resolve("moment", "1.0.0"); !ok || rec.Gzip != 20000 {
		t.Errorf("expected latest fallback for unknown version, got %+v", rec)
	}
	if rec, ok := catalog.Resolve("moment", ""); !ok || rec.Gzip != 20000 {
		t.Errorf("expected latest for empty version, got %+v", rec)
	}
	if _, ok := catalog.Resolve("unknown", "1.0.0"); ok {
		t.Error("expected miss for unknown package")
	}
}

func TestCatalogLatestAliasAlwaysPresent(t *testing.T) {
	catalog := NewCatalog()
	catalog.MergeScrape("dayjs", []PackageSizeRecord{
		{Name: "dayjs", Version: "1.11.10", Gzip: 3000},
	}, time.Now())

	if _, ok := catalog.Latest("dayjs"); !ok {
		t.Error("latest alias missing after successful scrape")
	}
}

func TestCatalogMarkErrorPreservesVersions(t *testing.T) {
	now := time.Now()
	catalog := NewCatalog()
	catalog.MergeScrape("moment", []PackageSizeRecord{
		{Name: "moment", Version: "2.30.1", Gzip: 20000},
	}, now.Add(-time.Hour))
	catalog.MarkError("moment", "service unavailable", now)

	entry := catalog.Entry("moment")
	if entry.ScrapeError == "" {
		t.Fatal("error sentinel not set")
	}
	if _, ok := catalog.Latest("moment"); !ok {
		t.Error("marking an error dropped previously scraped versions")
	}
}

func TestEntryFreshness(t *testing.T) {
	now := time.Now()
	window := 7 * 24 * time.Hour

	var nilEntry *PackageEntry
	if nilEntry.Fresh(window, now) {
		t.Error("nil entry reported fresh")
	}

	fresh := &PackageEntry{LastScrape: now.Add(-time.Hour)}
	if !fresh.Fresh(window, now) {
		t.Error("hour-old entry reported stale with 7 day window")
	}

	stale := &PackageEntry{LastScrape: now.Add(-8 * 24 * time.Hour)}
	if stale.Fresh(window, now) {
		t.Error("8 day old entry reported fresh with 7 day window")
	}

	errored := &PackageEntry{LastScrape: now.Add(-time.Minute), ScrapeError: "boom"}
	if errored.Fresh(window, now) {
		t.Error("errored entry must never be fresh")
	}
}

func TestCatalogCloneIsIndependent(t *testing.T) {
	now := time.Now()
	catalog := NewCatalog()
	catalog.MergeScrape("moment", []PackageSizeRecord{
		{Name: "moment", Version: "2.30.1", Gzip: 20000},
	}, now)

	clone := catalog.Clone()
	clone.MergeScrape("moment", []PackageSizeRecord{
		{Name: "moment", Version: "3.0.0", Gzip: 15000},
	}, now)
	clone.MarkError("dayjs", "boom", now)

	if latest, _ := catalog.Latest("moment"); latest.Version != "2.30.1" {
		t.Error("mutating a clone changed the original catalog")
	}
	if catalog.Entry("dayjs") != nil {
		t.Error("new entry on clone leaked into the original")
	}
}
