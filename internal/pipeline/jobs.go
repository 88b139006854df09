package pipeline

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dgallion1/gridkit/internal/crawl"
)

// JobStatus represents the state of a reindex job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusStarting  JobStatus = "starting"
	StatusWaiting   JobStatus = "waiting"
	StatusCrawling  JobStatus = "crawling"
	StatusIndexing  JobStatus = "indexing"
	StatusWriting   JobStatus = "writing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Done reports whether s is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Job tracks the state of a single reindex run.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	Origin string `json:"origin"`
	Output string `json:"output_path"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks crawl and index counts.
type Progress struct {
	PagesCrawled int      `json:"pages_crawled"`
	PagesFailed  int      `json:"pages_failed"`
	Duplicates   int      `json:"duplicates"`
	Records      int      `json:"records"`
	Terms        int      `json:"terms"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job with a fresh ULID.
func NewJob(origin, output string) *Job {
	now := time.Now()
	return &Job{
		ID:        ulid.Make().String(),
		Origin:    origin,
		Output:    output,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status.Done() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetCrawl records the outcome of the crawl phase.
func (j *Job) SetCrawl(res *crawl.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesCrawled = len(res.Pages)
	j.Progress.PagesFailed = len(res.Failures)
	j.Progress.Duplicates = res.Duplicates
	j.UpdatedAt = time.Now()
}

// SetIndex records the size of the built index.
func (j *Job) SetIndex(records, terms int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Records = records
	j.Progress.Terms = terms
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Origin    string    `json:"origin"`
	Output    string    `json:"output_path"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Origin:    j.Origin,
		Output:    j.Output,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
