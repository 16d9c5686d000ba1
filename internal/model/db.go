package model

import (
	"time"
)

// DBPackage is a row of per-package scrape metadata.
type DBPackage struct {
	Name        string    `db:"name"`
	LastScrape  time.Time `db:"last_scrape"`
	ScrapeError string    `db:"scrape_error"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// DBSize is a persisted size measurement for one package version. The
// latest alias is stored as an ordinary row with version = "latest".
type DBSize struct {
	ID          int64     `db:"id"`
	Package     string    `db:"package"`
	Version     string    `db:"version"`
	Gzip        int64     `db:"gzip"`
	Raw         int64     `db:"raw"`
	Description string    `db:"description"`
	Repository  string    `db:"repository"`
	ScrapedAt   time.Time `db:"scraped_at"`
}

// Schema contains the SQL schema for the catalog database.
const Schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY,
    last_scrape TIMESTAMP,
    scrape_error TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sizes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    version TEXT NOT NULL,
    gzip INTEGER NOT NULL,
    raw INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    repository TEXT NOT NULL DEFAULT '',
    scraped_at TIMESTAMP NOT NULL,
    FOREIGN KEY (package) REFERENCES packages(name) ON DELETE CASCADE,
    UNIQUE(package, version)
);

CREATE INDEX IF NOT EXISTS idx_sizes_package ON sizes(package);
`
