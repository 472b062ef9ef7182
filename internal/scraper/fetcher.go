// Package scraper fetches product pages and extracts name and price readings.
//
// Fetch failures are kept distinct from "parsed but no price found": the
// former signals systemic breakage (site down, blocking), the latter is an
// expected outcome for pages without a listed price.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrFetchFailed wraps timeouts, connection errors and non-2xx responses
var ErrFetchFailed = errors.New("page fetch failed")

// Browser-like headers reduce trivial bot blocking
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
)

// maxBodySize caps how much of a page is read (product pages are well under this)
const maxBodySize = 4 << 20 // 4 MiB

// Fetcher retrieves raw page content over HTTP
type Fetcher struct {
	client *http.Client
	log    zerolog.Logger
}

// NewFetcher creates a new page fetcher
func NewFetcher(timeout time.Duration, log zerolog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "fetcher").Logger(),
	}
}

// Get fetches the page at url. Any transport error or non-2xx status is
// reported as ErrFetchFailed.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request for %s: %v", ErrFetchFailed, url, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", ErrFetchFailed, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}

	return body, nil
}

// CheckPage fetches and extracts in one step. A fetch failure is returned as
// an error; a page without a recognizable price is NOT an error and comes
// back as a Result with a nil Price.
func (f *Fetcher) CheckPage(ctx context.Context, url string) (Result, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return Result{}, err
	}
	return Extract(body), nil
}
