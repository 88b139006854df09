package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultReadyTimeout  = 30 * time.Second
	DefaultReadyInterval = time.Second
)

// ErrNotReady is returned when the site did not answer the readiness probe
// in time.
var ErrNotReady = errors.New("site not ready")

// WaitReady polls probe until it answers with a 2xx status, the timeout
// elapses, or ctx ends.
func WaitReady(ctx context.Context, client *http.Client, probe string, timeout, interval time.Duration) error {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		lastErr = probeOnce(ctx, client, probe)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s after %s: %v", ErrNotReady, probe, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func probeOnce(ctx context.Context, client *http.Client, probe string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
