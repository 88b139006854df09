package crawl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBackoffFetcher() *HTTPFetcher {
	f := NewHTTPFetcher("test-agent", 5*time.Second, discardLogger())
	f.Backoff = func(int) time.Duration { return 0 }
	return f
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "test-agent", r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<p>ok</p>")
	}))
	defer srv.Close()

	doc, err := noBackoffFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", string(doc.Body))
	assert.Equal(t, "text/html", doc.ContentType)
	assert.Equal(t, int64(3), calls.Load())
}

func TestHTTPFetcher_GivesUp(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := noBackoffFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int64(MaxRetries), calls.Load())
}

func TestHTTPFetcher_NotFoundIsFinal(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := noBackoffFetcher().Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, int64(1), calls.Load())
}

func TestHTTPFetcher_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "0123456789")
	}))
	defer srv.Close()

	f := noBackoffFetcher()
	f.MaxBytes = 4
	doc, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(doc.Body))
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 45*time.Second)
	}
}
