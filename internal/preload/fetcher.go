package preload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// maxImageSize caps the number of bytes read for one image.
const maxImageSize = 64 << 20

// Fetcher retrieves the bytes of the image identified by a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, locator string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

// FileFetcher reads images from a directory, treating locators as paths
// relative to Root.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Cleaning a rooted path strips any leading "..", keeping reads within
	// Root.
	name := filepath.Join(f.Root, filepath.FromSlash(path.Clean("/"+locator)))
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// HTTPFetcher retrieves images over HTTP. Locators that are absolute URLs
// are fetched as-is; all others are resolved against BaseURL.
type HTTPFetcher struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
}

// NewHTTPFetcher creates a new HTTP image fetcher.
func NewHTTPFetcher(baseURL string) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme: %q", u.Scheme)
	}
	return &HTTPFetcher{
		BaseURL: u,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	ref, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("parsing locator: %w", err)
	}
	if !ref.IsAbs() {
		// Resolve relative to a base path ending in a slash so that the base
		// path is kept, e.g. http://host/book + /1.jpg -> http://host/book/1.jpg
		base := *f.BaseURL
		base.Path = strings.TrimSuffix(base.Path, "/") + "/"
		ref.Path = strings.TrimPrefix(ref.Path, "/")
		ref = base.ResolveReference(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}
