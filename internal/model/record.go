package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Latest is the catalog version key that aliases a package's most
// recently scraped version.
const Latest = "latest"

// PackageSizeRecord represents one scraped size measurement of a package
// version as reported by the size-lookup service.
type PackageSizeRecord struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Gzip        int64     `json:"gzip"`
	Size        int64     `json:"size,omitempty"`
	Description string    `json:"description,omitempty"`
	Repository  string    `json:"repository,omitempty"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// ValidationError describes why a scraped record was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid size record: %s %s", e.Field, e.Reason)
}

// metadataVersion matches the registry artifact the size service sometimes
// returns in place of a version, e.g. "16 packages".
var metadataVersion = regexp.MustCompile(`^\d+\s+packages?$`)

// Validate checks that the record is a usable measurement. Records with a
// missing name, a missing or non-positive gzip size, or a version string
// that is a registry-metadata artifact rather than a genuine version are
// rejected.
func (r *PackageSizeRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is empty"}
	}
	if strings.TrimSpace(r.Version) == "" {
		return &ValidationError{Field: "version", Reason: "is empty"}
	}
	if metadataVersion.MatchString(strings.TrimSpace(r.Version)) {
		return &ValidationError{Field: "version", Reason: fmt.Sprintf("%q is registry metadata, not a version", r.Version)}
	}
	if r.Gzip <= 0 {
		return &ValidationError{Field: "gzip", Reason: "must be a positive byte count"}
	}
	return nil
}
