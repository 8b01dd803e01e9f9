package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// Fetcher retrieves the raw HTML of a page. A non-empty credential is an
// opaque session value to attach to the request.
type Fetcher interface {
	Fetch(ctx context.Context, url, credential string) (string, error)
}

// FetchError describes a transport failure or a non-200 response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher fetches pages over HTTP. It does not retry.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout and
// User-Agent. An empty userAgent uses DefaultUserAgent.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch performs a GET request and returns the response body. The
// credential, when set, is sent verbatim as the Cookie header.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, credential string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if credential != "" {
		req.Header.Set("Cookie", credential)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return string(body), nil
}
