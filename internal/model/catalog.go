package model

import (
	"time"
)

// PackageEntry holds every scraped version of one package plus scrape
// metadata. Versions is keyed by version string; the Latest key aliases
// the most recently scraped version.
type PackageEntry struct {
	Versions    map[string]PackageSizeRecord `json:"versions"`
	LastScrape  time.Time                    `json:"lastScrape"`
	ScrapeError string                       `json:"scrapeError,omitempty"`
}

// Fresh reports whether the entry was scraped successfully within the
// window. An entry carrying a scrape error is never fresh, so a failed
// package is retried on the next run regardless of elapsed time.
func (e *PackageEntry) Fresh(window time.Duration, now time.Time) bool {
	if e == nil || e.ScrapeError != "" || e.LastScrape.IsZero() {
		return false
	}
	return now.Sub(e.LastScrape) < window
}

// Catalog maps package names to their scraped size entries. The Builder is
// the only writer; between builder runs any number of engine callers may
// read the same snapshot concurrently.
type Catalog struct {
	Packages map[string]*PackageEntry `json:"packages"`
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{Packages: make(map[string]*PackageEntry)}
}

// Entry returns the entry for name, or nil if the package was never scraped.
func (c *Catalog) Entry(name string) *PackageEntry {
	if c == nil {
		return nil
	}
	return c.Packages[name]
}

func (c *Catalog) ensure(name string) *PackageEntry {
	entry, ok := c.Packages[name]
	if !ok {
		entry = &PackageEntry{Versions: make(map[string]PackageSizeRecord)}
		c.Packages[name] = entry
	}
	return entry
}

// Resolve returns the record for the given version, falling back to the
// latest alias when that exact version was never scraped. The second return
// is false when the package has no usable record at all.
func (c *Catalog) Resolve(name, version string) (PackageSizeRecord, bool) {
	entry := c.Entry(name)
	if entry == nil {
		return PackageSizeRecord{}, false
	}
	if version != "" {
		if rec, ok := entry.Versions[version]; ok {
			return rec, true
		}
	}
	rec, ok := entry.Versions[Latest]
	return rec, ok
}

// Latest returns the latest-alias record for name.
func (c *Catalog) Latest(name string) (PackageSizeRecord, bool) {
	return c.Resolve(name, Latest)
}

// MergeScrape records the outcome of a successful scrape. Every record is
// written under its version key; the first record additionally becomes the
// latest alias. Versions not present in records are left untouched, and any
// previous scrape error is cleared.
func (c *Catalog) MergeScrape(name string, records []PackageSizeRecord, at time.Time) {
	entry := c.ensure(name)
	for i, rec := range records {
		entry.Versions[rec.Version] = rec
		if i == 0 {
			entry.Versions[Latest] = rec
		}
	}
	entry.LastScrape = at
	entry.ScrapeError = ""
}

// MarkError records a failed scrape attempt without disturbing previously
// scraped versions.
func (c *Catalog) MarkError(name, reason string, at time.Time) {
	entry := c.ensure(name)
	entry.LastScrape = at
	entry.ScrapeError = reason
}

// Clone returns a deep copy. The Builder works on a clone so that readers
// of the previous snapshot are never exposed to a half-finished run.
func (c *Catalog) Clone() *Catalog {
	out := NewCatalog()
	if c == nil {
		return out
	}
	for name, entry := range c.Packages {
		copied := &PackageEntry{
			Versions:    make(map[string]PackageSizeRecord, len(entry.Versions)),
			LastScrape:  entry.LastScrape,
			ScrapeError: entry.ScrapeError,
		}
		for version, rec := range entry.Versions {
			copied.Versions[version] = rec
		}
		out.Packages[name] = copied
	}
	return out
}
