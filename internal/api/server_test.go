package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/gridkit/internal/config"
	"github.com/dgallion1/gridkit/internal/extract"
	"github.com/dgallion1/gridkit/internal/pipeline"
	"github.com/dgallion1/gridkit/internal/record"
	"github.com/dgallion1/gridkit/internal/search"
)

const testKey = "test-key"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		SearchAPIKey: testKey,
		WorkerCount:  1,
		MaxQueueSize: 1,
		JobTTL:       time.Hour,
	}
}

func newSearchService(t *testing.T) *search.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.json")
	require.NoError(t, search.WriteArtifact(path, search.NewArtifact([]record.Record{
		{URL: "/grid", Anchor: "virtualization", Lvl0: "Data Grid", Lvl1: "Virtualization", Text: "Only visible rows are rendered."},
		{URL: "/filters", Lvl0: "Filter Builder", Text: "Compose rules into groups."},
	})))
	return search.NewService(path, search.Options{}, discardLogger())
}

func do(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv := NewServer(newSearchService(t), nil, discardLogger(), testConfig())

	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestSearch(t *testing.T) {
	srv := NewServer(newSearchService(t), nil, discardLogger(), testConfig())

	rec := do(t, srv, http.MethodGet, "/api/search?q=visible", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []struct {
			Doc      record.Record `json:"doc"`
			Score    float64       `json:"score"`
			Snippets map[string]struct {
				Parts []string `json:"parts"`
			} `json:"snippets"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "/grid", body.Results[0].Doc.URL)
	assert.Greater(t, body.Results[0].Score, 0.0)
	assert.Equal(t, []string{"Only ", "visible", " rows are rendered."}, body.Results[0].Snippets["text"].Parts)
}

func TestSearch_EmptyQuery(t *testing.T) {
	srv := NewServer(newSearchService(t), nil, discardLogger(), testConfig())

	for _, target := range []string{"/api/search", "/api/search?q=", "/api/search?q=the"} {
		rec := do(t, srv, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.JSONEq(t, `{"results":[]}`, rec.Body.String(), target)
	}
}

func TestSearch_NoArtifact(t *testing.T) {
	svc := search.NewService(filepath.Join(t.TempDir(), "missing.json"), search.Options{}, discardLogger())
	srv := NewServer(svc, nil, discardLogger(), testConfig())

	rec := do(t, srv, http.MethodGet, "/api/search?q=grid", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "search index unavailable", decode(t, rec)["error"])
}

func TestSearchStats(t *testing.T) {
	srv := NewServer(newSearchService(t), nil, discardLogger(), testConfig())
	do(t, srv, http.MethodGet, "/api/search?q=grid", "")
	do(t, srv, http.MethodGet, "/api/search?q=filter", "")

	body := decode(t, do(t, srv, http.MethodGet, "/api/stats/search", ""))
	assert.Equal(t, true, body["index_loaded"])
	assert.Equal(t, 2.0, body["records"])
	assert.Equal(t, 2.0, body["stats"].(map[string]any)["count"])
}

func TestReindex_RequiresAuth(t *testing.T) {
	srv := NewServer(newSearchService(t), nil, discardLogger(), testConfig())

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodPost, "/api/reindex", "").Code)
	rec := do(t, srv, http.MethodPost, "/api/reindex", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid api key", decode(t, rec)["error"])
}

func TestReindex_NotConfigured(t *testing.T) {
	srv := NewServer(newSearchService(t), nil, discardLogger(), testConfig())

	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, http.MethodPost, "/api/reindex", testKey).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, http.MethodGet, "/api/reindex/x/status", testKey).Code)
}

func TestReindex_QueueAndPoll(t *testing.T) {
	docs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><h1 id="sparkline">Sparkline</h1><p>Inline trend charts.</p></body></html>`)
	}))
	defer docs.Close()

	site := &config.Site{
		Origin:        docs.URL,
		OutputPath:    filepath.Join(t.TempDir(), "search.json"),
		Root:          "/",
		Concurrency:   1,
		ReadyTimeout:  config.Duration(2 * time.Second),
		ReadyInterval: config.Duration(10 * time.Millisecond),
		Renderer:      config.RendererHTTP,
		Selectors:     extract.DefaultSelectors(),
	}
	svc := newSearchService(t)
	cfg := testConfig()
	orch := pipeline.NewOrchestrator(cfg, site, svc, discardLogger())
	orch.Start(context.Background())
	defer orch.Stop()

	srv := NewServer(svc, orch, discardLogger(), cfg)

	rec := do(t, srv, http.MethodPost, "/api/reindex", testKey)
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	jobID := body["job_id"].(string)
	assert.Equal(t, "/api/reindex/"+jobID+"/status", body["poll_url"])

	require.Eventually(t, func() bool {
		var snap pipeline.JobSnapshot
		rec := do(t, srv, http.MethodGet, "/api/reindex/"+jobID+"/status", testKey)
		return json.Unmarshal(rec.Body.Bytes(), &snap) == nil && snap.Status == pipeline.StatusCompleted
	}, 10*time.Second, 20*time.Millisecond)

	results := decode(t, do(t, srv, http.MethodGet, "/api/search?q=sparkline", ""))["results"].([]any)
	assert.Len(t, results, 1)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/reindex/nope/status", testKey).Code)
}
