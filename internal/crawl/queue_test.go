package crawl

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RespectsConcurrencyLimit(t *testing.T) {
	q := NewQueue[int](2, 0)
	defer q.Close()

	var running, peak atomic.Int64
	var futs []*Future[int]
	for i := range 8 {
		futs = append(futs, q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(15 * time.Millisecond)
			running.Add(-1)
			return i * 10, nil
		}))
	}
	q.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(2))
	for i, f := range futs {
		v, err := f.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i*10, v)
	}
	assert.Equal(t, 0, q.Running())
	assert.Equal(t, 0, q.Pending())
}

func TestQueue_StartsInSubmissionOrder(t *testing.T) {
	q := NewQueue[struct{}](1, 0)
	defer q.Close()

	var mu sync.Mutex
	var order []int
	for i := range 10 {
		q.Enqueue(context.Background(), func(ctx context.Context) (struct{}, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return struct{}{}, nil
		})
	}
	q.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestQueue_FailureIsIsolated(t *testing.T) {
	q := NewQueue[string](3, 0)
	defer q.Close()

	boom := errors.New("boom")
	ok1 := q.Enqueue(context.Background(), func(context.Context) (string, error) { return "a", nil })
	bad := q.Enqueue(context.Background(), func(context.Context) (string, error) { return "", boom })
	ok2 := q.Enqueue(context.Background(), func(context.Context) (string, error) { return "b", nil })
	q.Wait()

	v, err := ok1.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	_, err = bad.Wait(context.Background())
	assert.ErrorIs(t, err, boom)

	v, err = ok2.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestQueue_CancelledJobNeverRuns(t *testing.T) {
	q := NewQueue[int](1, 0)
	defer q.Close()

	release := make(chan struct{})
	blocker := q.Enqueue(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	dropped := q.Enqueue(ctx, func(context.Context) (int, error) {
		ran.Store(true)
		return 2, nil
	})
	cancel()
	close(release)
	q.Wait()

	_, err := dropped.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())

	v, err := blocker.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestQueue_JobTimeout(t *testing.T) {
	q := NewQueue[int](1, 20*time.Millisecond)
	defer q.Close()

	f := q.Enqueue(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_PanicBecomesError(t *testing.T) {
	q := NewQueue[int](1, 0)
	defer q.Close()

	f := q.Enqueue(context.Background(), func(context.Context) (int, error) {
		panic("bad page")
	})
	_, err := f.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad page")

	// The slot is released after a panic.
	f = q.Enqueue(context.Background(), func(context.Context) (int, error) { return 7, nil })
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestQueue_ClosedRejects(t *testing.T) {
	q := NewQueue[int](1, 0)
	q.Close()

	f := q.Enqueue(context.Background(), func(context.Context) (int, error) { return 1, nil })
	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_JobsCanEnqueueMore(t *testing.T) {
	q := NewQueue[int](2, 0)
	defer q.Close()

	var count atomic.Int64
	var spawn func(depth int) Job[int]
	spawn = func(depth int) Job[int] {
		return func(ctx context.Context) (int, error) {
			count.Add(1)
			if depth < 3 {
				q.Enqueue(ctx, spawn(depth+1))
				q.Enqueue(ctx, spawn(depth+1))
			}
			return depth, nil
		}
	}
	q.Enqueue(context.Background(), spawn(0))
	q.Wait()

	assert.Equal(t, int64(15), count.Load())
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	q := NewQueue[int](1, 0)
	defer q.Close()

	release := make(chan struct{})
	defer close(release)
	f := q.Enqueue(context.Background(), func(context.Context) (int, error) {
		<-release
		return 0, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
