package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent identifies the crawler to the site.
	DefaultUserAgent = "gridkit-indexer/1.0"
	// DefaultMaxBytes caps the size of a fetched page.
	DefaultMaxBytes = 5 * 1024 * 1024
)

// Document is a fetched page.
type Document struct {
	URL         string
	FinalURL    string // after redirects
	ContentType string
	Body        []byte
	Rendered    bool // produced by a browser rather than a plain GET
	FetchTime   time.Duration
}

// Fetcher retrieves page markup.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// HTTPFetcher fetches pages with plain GET requests, retrying transport
// errors and 429/5xx responses with backoff.
type HTTPFetcher struct {
	Client     *http.Client
	UserAgent  string
	MaxBytes   int64
	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Log        *slog.Logger
}

// NewHTTPFetcher returns a fetcher with the package defaults.
func NewHTTPFetcher(userAgent string, timeout time.Duration, log *slog.Logger) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		MaxBytes:   DefaultMaxBytes,
		MaxRetries: MaxRetries,
		Backoff:    Backoff,
		Log:        log,
	}
}

// Fetch retrieves url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	attempts := max(f.MaxRetries, 1)
	var lastErr error
	for attempt := range attempts {
		doc, err := f.fetchOnce(ctx, url)
		if err == nil || !IsRetryable(err) {
			return doc, err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}
		if f.Log != nil {
			f.Log.Warn("retryable fetch error", "url", url, "attempt", attempt, "error", err)
		}
		wait := time.Duration(0)
		if f.Backoff != nil {
			wait = f.Backoff(attempt)
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w", url, attempts, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (*Document, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/markdown;q=0.9,*/*;q=0.5")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("GET %s: %w", url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		statusErr := &StatusError{URL: url, Code: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &RetryableError{Err: statusErr}
		}
		return nil, statusErr
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("reading %s: %w", url, err)}
	}

	return &Document{
		URL:         url,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchTime:   time.Since(start),
	}, nil
}
