// Package fetch implements the Fetcher interface.
// HTTPFetcher performs GET requests that look like a browser; FileFetcher
// reads a saved HTML page from disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gaurav-prasanna/docmark/core"
)

const defaultTimeout = 30 * time.Second

// maxPageBytes caps a fetched page.
const maxPageBytes = 50 << 20

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// New creates an HTTPFetcher. A zero timeout takes the default.
func New(userAgent string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves the HTML content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.E(core.KindUnsupportedInput, "creating request", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, core.E(core.KindNetworkFailure, "fetching "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.Errorf(core.KindNetworkFailure, "unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, core.E(core.KindNetworkFailure, "reading response body", err)
	}

	return &core.FetchResult{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

// FileFetcher reads HTML from the local filesystem.
type FileFetcher struct{}

// NewFileFetcher creates a FileFetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Fetch reads the file at path.
func (f *FileFetcher) Fetch(ctx context.Context, path string) (*core.FetchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.Errorf(core.KindNotFound, "html file not found: %s", path)
		}
		return nil, core.E(core.KindNotFound, fmt.Sprintf("reading %s", path), err)
	}
	return &core.FetchResult{URL: path, HTML: string(data)}, nil
}
