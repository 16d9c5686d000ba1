package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"
)

// countingReader counts bytes as they pass through, so a tarball can be
// measured in one streaming pass without buffering it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// MeasureTarball downloads a dist tarball and measures it: the gzip size is
// the byte count on the wire, the raw size is the decompressed byte count.
func (c *Client) MeasureTarball(ctx context.Context, tarballURL string) (gzipSize, rawSize int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tarballURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build tarball request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to download tarball: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("tarball download returned status %d", resp.StatusCode)
	}

	counter := &countingReader{r: resp.Body}
	gz, err := gzip.NewReader(counter)
	if err != nil {
		return 0, 0, fmt.Errorf("tarball is not gzip data: %w", err)
	}
	defer gz.Close()

	raw, err := io.Copy(io.Discard, gz)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decompress tarball: %w", err)
	}

	return counter.n, raw, nil
}
