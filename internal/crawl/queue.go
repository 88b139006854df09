// Package crawl collects the same-origin pages of a site and turns them
// into search records.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of jobs a queue runs at once when not
// configured.
const DefaultConcurrency = 5

// ErrQueueClosed is returned for jobs enqueued after Close.
var ErrQueueClosed = errors.New("crawl queue closed")

// Job is a unit of work run by a Queue.
type Job[T any] func(ctx context.Context) (T, error)

// Future is the pending result of an enqueued job.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the job has finished.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the job finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

type task[T any] struct {
	ctx context.Context
	job Job[T]
	fut *Future[T]
}

// Queue runs jobs in submission order with at most a fixed number running
// at once. Jobs may finish out of order; a failing job only fails its own
// Future.
type Queue[T any] struct {
	sem     *semaphore.Weighted
	timeout time.Duration

	mu      sync.Mutex
	pending []*task[T]
	closed  bool
	wake    chan struct{}

	inflight sync.WaitGroup
	running  atomic.Int64
}

// NewQueue starts a queue running up to concurrency jobs at once. A positive
// jobTimeout bounds every job's context.
func NewQueue[T any](concurrency int, jobTimeout time.Duration) *Queue[T] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	q := &Queue[T]{
		sem:     semaphore.NewWeighted(int64(concurrency)),
		timeout: jobTimeout,
		wake:    make(chan struct{}, 1),
	}
	go q.dispatch()
	return q
}

// Enqueue submits job. Cancelling ctx cancels the job, or drops it if it
// has not started yet.
func (q *Queue[T]) Enqueue(ctx context.Context, job Job[T]) *Future[T] {
	fut := newFuture[T]()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		var zero T
		fut.resolve(zero, ErrQueueClosed)
		return fut
	}
	q.pending = append(q.pending, &task[T]{ctx: ctx, job: job, fut: fut})
	q.inflight.Add(1)
	q.mu.Unlock()

	q.signal()
	return fut
}

// Running returns the number of jobs currently executing.
func (q *Queue[T]) Running() int { return int(q.running.Load()) }

// Pending returns the number of jobs waiting for a slot.
func (q *Queue[T]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wait blocks until every enqueued job has finished, including jobs
// enqueued by running jobs.
func (q *Queue[T]) Wait() {
	q.inflight.Wait()
}

// Close stops accepting jobs. Jobs already enqueued still run.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) next() (*task[T], bool) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			t := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return t, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		<-q.wake
	}
}

func (q *Queue[T]) dispatch() {
	for {
		t, ok := q.next()
		if !ok {
			return
		}
		// Admission happens here, in submission order.
		if err := q.sem.Acquire(t.ctx, 1); err != nil {
			q.finish(t, err)
			continue
		}
		q.running.Add(1)
		go q.run(t)
	}
}

func (q *Queue[T]) run(t *task[T]) {
	var (
		v   T
		err error
	)
	if err = t.ctx.Err(); err == nil {
		ctx := t.ctx
		if q.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, q.timeout)
			defer cancel()
		}
		v, err = call(ctx, t.job)
	}
	q.running.Add(-1)
	q.sem.Release(1)
	t.fut.resolve(v, err)
	q.inflight.Done()
}

func (q *Queue[T]) finish(t *task[T], err error) {
	var zero T
	t.fut.resolve(zero, err)
	q.inflight.Done()
}

func call[T any](ctx context.Context, job Job[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job(ctx)
}
