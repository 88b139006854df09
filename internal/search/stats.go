package search

import (
	"math"
	"slices"
	"sort"
	"sync"
	"time"
)

type queryEntry struct {
	at      time.Time
	took    time.Duration
	results int
}

// QuerySummary aggregates the queries answered within the stats window.
// Latencies are in microseconds since an in-memory search rarely takes a
// whole millisecond.
type QuerySummary struct {
	Queries     int     `json:"count"`
	Empty       int     `json:"empty"`
	EmptyRate   float64 `json:"empty_rate"`
	MeanResults float64 `json:"mean_results"`
	P50Us       int64   `json:"p50_us"`
	P90Us       int64   `json:"p90_us"`
	P99Us       int64   `json:"p99_us"`
	MaxUs       int64   `json:"max_us"`
}

// QueryStats keeps a time-ordered log of recent queries. Entries older than
// the window are dropped on every access.
type QueryStats struct {
	mu     sync.Mutex
	window time.Duration
	log    []queryEntry
	now    func() time.Time
}

func NewQueryStats(window time.Duration) *QueryStats {
	if window <= 0 {
		window = time.Hour
	}
	return &QueryStats{window: window, now: time.Now}
}

// Observe records one answered query and how many results it returned.
func (s *QueryStats) Observe(took time.Duration, results int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)
	s.log = append(s.log, queryEntry{at: now, took: max(took, 0), results: results})
}

func (s *QueryStats) Summary() QuerySummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire(s.now())
	n := len(s.log)
	if n == 0 {
		return QuerySummary{}
	}

	var sum QuerySummary
	took := make([]time.Duration, n)
	total := 0
	for i, e := range s.log {
		took[i] = e.took
		total += e.results
		if e.results == 0 {
			sum.Empty++
		}
	}
	slices.Sort(took)

	sum.Queries = n
	sum.EmptyRate = float64(sum.Empty) / float64(n)
	sum.MeanResults = float64(total) / float64(n)
	sum.P50Us = nearestRank(took, 0.50).Microseconds()
	sum.P90Us = nearestRank(took, 0.90).Microseconds()
	sum.P99Us = nearestRank(took, 0.99).Microseconds()
	sum.MaxUs = took[n-1].Microseconds()
	return sum
}

// expire drops the prefix of entries older than the window. Entries are
// appended under the lock with a clock read inside it, so the log is sorted.
func (s *QueryStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i := sort.Search(len(s.log), func(i int) bool { return !s.log[i].at.Before(cutoff) })
	if i > 0 {
		s.log = slices.Delete(s.log, 0, i)
	}
}

func nearestRank(sorted []time.Duration, p float64) time.Duration {
	i := int(math.Ceil(p*float64(len(sorted)))) - 1
	return sorted[max(i, 0)]
}
