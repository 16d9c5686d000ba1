package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bundlescout/bundlescout/internal/model"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore persists the catalog. The builder saves a full snapshot at
// the end of each run; the API loads it once at startup.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the catalog database under dataPath.
func NewSQLiteStore(dataPath string, logger *zap.Logger) (*SQLiteStore, error) {
	dbPath := filepath.Join(dataPath, "bundlescout.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(model.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full catalog.
func (s *SQLiteStore) Load() (*model.Catalog, error) {
	catalog := model.NewCatalog()

	rows, err := s.db.Query(`SELECT name, last_scrape, scrape_error FROM packages`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, scrapeError string
		var lastScrape sql.NullTime
		if err := rows.Scan(&name, &lastScrape, &scrapeError); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		entry := &model.PackageEntry{
			Versions:    make(map[string]model.PackageSizeRecord),
			ScrapeError: scrapeError,
		}
		if lastScrape.Valid {
			entry.LastScrape = lastScrape.Time
		}
		catalog.Packages[name] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read packages: %w", err)
	}

	sizeRows, err := s.db.Query(`SELECT package, version, gzip, raw, description, repository, scraped_at FROM sizes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sizes: %w", err)
	}
	defer sizeRows.Close()

	for sizeRows.Next() {
		var size model.DBSize
		if err := sizeRows.Scan(
			&size.Package,
			&size.Version,
			&size.Gzip,
			&size.Raw,
			&size.Description,
			&size.Repository,
			&size.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan size: %w", err)
		}
		entry, ok := catalog.Packages[size.Package]
		if !ok {
			// orphan row, skip rather than invent metadata
			continue
		}
		entry.Versions[size.Version] = model.PackageSizeRecord{
			Name:        size.Package,
			Version:     size.Version,
			Gzip:        size.Gzip,
			Size:        size.Raw,
			Description: size.Description,
			Repository:  size.Repository,
			ScrapedAt:   size.ScrapedAt,
		}
	}
	if err := sizeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sizes: %w", err)
	}

	return catalog, nil
}

// Save writes the full catalog snapshot in one transaction, so an
// interrupted run never leaves a partially persisted catalog behind.
func (s *SQLiteStore) Save(catalog *model.Catalog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsertPackage, err := tx.Prepare(`
		INSERT INTO packages (name, last_scrape, scrape_error, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			last_scrape = excluded.last_scrape,
			scrape_error = excluded.scrape_error,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare package upsert: %w", err)
	}
	defer upsertPackage.Close()

	upsertSize, err := tx.Prepare(`
		INSERT INTO sizes (package, version, gzip, raw, description, repository, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(package, version) DO UPDATE SET
			gzip = excluded.gzip,
			raw = excluded.raw,
			description = excluded.description,
			repository = excluded.repository,
			scraped_at = excluded.scraped_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare size upsert: %w", err)
	}
	defer upsertSize.Close()

	now := time.Now()
	for name, entry := range catalog.Packages {
		var lastScrape any
		if !entry.LastScrape.IsZero() {
			lastScrape = entry.LastScrape
		}
		if _, err := upsertPackage.Exec(name, lastScrape, entry.ScrapeError, now); err != nil {
			return fmt.Errorf("failed to upsert package %s: %w", name, err)
		}
		for version, rec := range entry.Versions {
			if _, err := upsertSize.Exec(
				name,
				version,
				rec.Gzip,
				rec.Size,
				rec.Description,
				rec.Repository,
				rec.ScrapedAt,
			); err != nil {
				return fmt.Errorf("failed to upsert size %s@%s: %w", name, version, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	s.logger.Debug("catalog persisted", zap.Int("packages", len(catalog.Packages)))
	return nil
}
