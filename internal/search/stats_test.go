package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStats(window time.Duration) (*QueryStats, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewQueryStats(window)
	s.now = clock.now
	return s, clock
}

func TestQueryStats_Summary(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	for i := 1; i <= 10; i++ {
		results := 3
		if i%5 == 0 {
			results = 0
		}
		s.Observe(time.Duration(i)*time.Millisecond, results)
	}

	sum := s.Summary()
	assert.Equal(t, 10, sum.Queries)
	assert.Equal(t, 2, sum.Empty)
	assert.InDelta(t, 0.2, sum.EmptyRate, 1e-9)
	assert.InDelta(t, 2.4, sum.MeanResults, 1e-9)
	assert.Equal(t, int64(5000), sum.P50Us)
	assert.Equal(t, int64(9000), sum.P90Us)
	assert.Equal(t, int64(10000), sum.P99Us)
	assert.Equal(t, int64(10000), sum.MaxUs)
}

func TestQueryStats_SubMillisecond(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	s.Observe(250*time.Microsecond, 1)

	sum := s.Summary()
	assert.Equal(t, int64(250), sum.P50Us)
	assert.Equal(t, int64(250), sum.MaxUs)
}

func TestQueryStats_ExpiresOldQueries(t *testing.T) {
	s, clock := newTestStats(time.Minute)
	s.Observe(time.Millisecond, 0)
	clock.t = clock.t.Add(30 * time.Second)
	s.Observe(2*time.Millisecond, 4)

	assert.Equal(t, 2, s.Summary().Queries)

	clock.t = clock.t.Add(45 * time.Second)
	sum := s.Summary()
	assert.Equal(t, 1, sum.Queries)
	assert.Zero(t, sum.Empty)
	assert.Equal(t, int64(2000), sum.MaxUs)

	clock.t = clock.t.Add(time.Hour)
	assert.Equal(t, QuerySummary{}, s.Summary())
}

func TestQueryStats_ClampsNegative(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	s.Observe(-time.Second, 1)
	assert.Zero(t, s.Summary().MaxUs)
}
