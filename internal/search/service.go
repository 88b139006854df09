package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/gridkit/internal/record"
)

// ErrNoArtifact is returned by queries when no artifact could be loaded.
var ErrNoArtifact = errors.New("search artifact not available")

// Options tunes query results. Zero fields take their defaults.
type Options struct {
	Limit         int
	SnippetSize   int
	SnippetMargin int
	StatsWindow   time.Duration
}

// Result is one ranked record with a snippet per matched field.
type Result struct {
	Doc      record.Record      `json:"doc"`
	Score    float64            `json:"score"`
	Snippets map[string]Snippet `json:"snippets"`
}

// Service answers queries against the live artifact. The artifact at path is
// loaded on the first query; Swap replaces it after a reindex.
type Service struct {
	path string
	opts Options
	log  *slog.Logger

	once    sync.Once
	loadErr error
	live    atomic.Pointer[Artifact]
	stats   *QueryStats
}

// NewService creates a service backed by the artifact at path.
func NewService(path string, opts Options, log *slog.Logger) *Service {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.SnippetSize <= 0 {
		opts.SnippetSize = DefaultSnippetSize
	}
	if opts.SnippetMargin <= 0 {
		opts.SnippetMargin = DefaultSnippetMargin
	}
	if opts.SnippetMargin >= opts.SnippetSize {
		opts.SnippetMargin = opts.SnippetSize / 2
	}
	return &Service{
		path:  path,
		opts:  opts,
		log:   log,
		stats: NewQueryStats(opts.StatsWindow),
	}
}

func (s *Service) artifact() (*Artifact, error) {
	if a := s.live.Load(); a != nil {
		return a, nil
	}
	s.once.Do(func() {
		start := time.Now()
		a, err := ReadArtifact(s.path)
		if err != nil {
			s.loadErr = err
			s.log.Error("search artifact load failed", "path", s.path, "error", err)
			return
		}
		// A reindex may have swapped in a newer artifact meanwhile.
		if s.live.CompareAndSwap(nil, a) {
			s.log.Info("search artifact loaded",
				"path", s.path,
				"records", len(a.Corpus),
				"terms", a.Index.TermCount(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	})
	if a := s.live.Load(); a != nil {
		return a, nil
	}
	return nil, errors.Join(ErrNoArtifact, s.loadErr)
}

// Swap installs a as the live artifact.
func (s *Service) Swap(a *Artifact) {
	s.live.Store(a)
	s.log.Info("search artifact swapped", "records", len(a.Corpus), "terms", a.Index.TermCount())
}

// Loaded reports whether an artifact is live.
func (s *Service) Loaded() bool { return s.live.Load() != nil }

// Records returns the number of records in the live artifact.
func (s *Service) Records() int {
	if a := s.live.Load(); a != nil {
		return len(a.Corpus)
	}
	return 0
}

// Stats summarizes the queries answered within the stats window.
func (s *Service) Stats() QuerySummary { return s.stats.Summary() }

// Query runs q and builds snippets for each hit. A blank query returns an
// empty list without touching the artifact.
func (s *Service) Query(ctx context.Context, q string) ([]Result, error) {
	if strings.TrimSpace(q) == "" {
		return []Result{}, nil
	}
	a, err := s.artifact()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	hits := a.Index.Search(q, s.opts.Limit)
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.Doc < 0 || h.Doc >= len(a.Corpus) {
			continue
		}
		rec := a.Corpus[h.Doc]
		snippets := make(map[string]Snippet, len(h.Matches))
		for field, positions := range h.Matches {
			snippets[field] = BuildSnippet(rec.Field(field), positions, s.opts.SnippetSize, s.opts.SnippetMargin)
		}
		results = append(results, Result{Doc: rec, Score: h.Score, Snippets: snippets})
	}
	s.stats.Observe(time.Since(start), len(results))
	return results, nil
}
