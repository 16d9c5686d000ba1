package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bundlescout/bundlescout/internal/model"
	"go.uber.org/zap"
)

// FetchError reports a failed size-lookup request for one package. The
// builder isolates it to that package's catalog entry.
type FetchError struct {
	Package string
	Status  int
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("size lookup failed for %s: %v", e.Package, e.Err)
	}
	return fmt.Sprintf("size lookup failed for %s: status %d", e.Package, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client queries a bundlephobia-style size-lookup service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a size-lookup client. timeout caps every request,
// including tarball fallback downloads, so one stalled call can never block
// the rest of a builder run.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// sizeResponse is the wire shape of one measurement.
type sizeResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Gzip        int64  `json:"gzip"`
	Size        int64  `json:"size"`
	Description string `json:"description"`
	Repository  string `json:"repository"`
	Tarball     string `json:"tarball"`
}

// LatestSize fetches the size record of the package's most recent release.
func (c *Client) LatestSize(ctx context.Context, name string) (model.PackageSizeRecord, error) {
	endpoint := fmt.Sprintf("%s/api/size?package=%s", c.baseURL, url.QueryEscape(name))
	var resp sizeResponse
	if err := c.getJSON(ctx, name, endpoint, &resp); err != nil {
		return model.PackageSizeRecord{}, err
	}
	return c.toRecord(ctx, name, resp), nil
}

// PackageHistory fetches up to limit recent version records, newest first.
// The first element is the package's current release.
func (c *Client) PackageHistory(ctx context.Context, name string, limit int) ([]model.PackageSizeRecord, error) {
	endpoint := fmt.Sprintf("%s/api/package-history?package=%s&limit=%s",
		c.baseURL, url.QueryEscape(name), strconv.Itoa(limit))
	var resp []sizeResponse
	if err := c.getJSON(ctx, name, endpoint, &resp); err != nil {
		return nil, err
	}
	if limit > 0 && len(resp) > limit {
		resp = resp[:limit]
	}
	records := make([]model.PackageSizeRecord, 0, len(resp))
	for _, r := range resp {
		records = append(records, c.toRecord(ctx, name, r))
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, name, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Package: name, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Package: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Package: name, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Package: name, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// toRecord converts a wire measurement, filling in sizes from the dist
// tarball when the service did not report them.
func (c *Client) toRecord(ctx context.Context, name string, resp sizeResponse) model.PackageSizeRecord {
	rec := model.PackageSizeRecord{
		Name:        resp.Name,
		Version:     resp.Version,
		Gzip:        resp.Gzip,
		Size:        resp.Size,
		Description: resp.Description,
		Repository:  resp.Repository,
		ScrapedAt:   time.Now(),
	}
	if rec.Name == "" {
		rec.Name = name
	}
	if rec.Gzip == 0 && resp.Tarball != "" {
		gzip, raw, err := c.MeasureTarball(ctx, resp.Tarball)
		if err != nil {
			c.logger.Warn("tarball measurement failed",
				zap.String("package", name),
				zap.String("tarball", resp.Tarball),
				zap.Error(err),
			)
		} else {
			rec.Gzip = gzip
			rec.Size = raw
		}
	}
	return rec
}
