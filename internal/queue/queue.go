// Package queue provides an in-memory job queue with a worker pool
// for generating round reports concurrently.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// JobStatus represents the state of a round report job
type JobStatus string

// Job status constants define the lifecycle states
const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

var (
	// ErrJobNotFound is returned when a job ID is unknown
	ErrJobNotFound = errors.New("job not found")
	// ErrQueueFull is returned when the pending buffer has no room
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueClosed is returned by Enqueue after Shutdown
	ErrQueueClosed = errors.New("queue is shut down")
)

// Job represents a round report job
type Job struct {
	ID           string
	RoundID      string
	Status       JobStatus
	QueuedAt     time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage string
	Result       *JobResult
}

// JobResult contains the output of a completed round report
type JobResult struct {
	CSVPath          string
	TotalShots       int
	AverageDistance  int
	Accuracy         int
	MostUsedClub     string
	ProcessingTimeMS int64
}

// ProcessFunc is a function that processes a job
type ProcessFunc func(ctx context.Context, job *Job) (*JobResult, error)

// StatusHook is called after every job status transition
type StatusHook func(status JobStatus)

// Option configures a Queue
type Option func(*Queue)

// WithStatusHook registers a callback for job status transitions
func WithStatusHook(hook StatusHook) Option {
	return func(q *Queue) { q.hook = hook }
}

// WithCapacity sets the size of the pending buffer
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// Queue manages round report jobs with a worker pool
type Queue struct {
	mu           sync.RWMutex
	jobs         map[string]*Job
	pendingQueue chan *Job
	capacity     int
	workers      int
	processor    ProcessFunc
	hook         StatusHook
	closed       bool

	// stop tells workers to take no new jobs; ctx is handed to the processor
	// and is only canceled once in-flight jobs have had their drain time
	stop     chan struct{}
	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewQueue creates a new job queue with the specified number of workers
func NewQueue(workers int, processor ProcessFunc, opts ...Option) *Queue {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		jobs:      make(map[string]*Job),
		capacity:  100,
		workers:   workers,
		processor: processor,
		stop:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.pendingQueue = make(chan *Job, q.capacity)

	// Start worker pool
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	return q
}

// Enqueue adds a report job for the round to the queue
func (q *Queue) Enqueue(roundID string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", ErrQueueClosed
	}

	job := &Job{
		ID:       uuid.New().String(),
		RoundID:  roundID,
		Status:   StatusQueued,
		QueuedAt: time.Now().UTC(),
	}

	q.jobs[job.ID] = job

	// Add to pending queue (non-blocking)
	select {
	case q.pendingQueue <- job:
		q.notify(StatusQueued)
		return job.ID, nil
	default:
		job.Status = StatusFailed
		job.ErrorMessage = ErrQueueFull.Error()
		q.notify(StatusFailed)
		return "", ErrQueueFull
	}
}

// GetJob retrieves a copy of a job by ID
func (q *Queue) GetJob(jobID string) (*Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, exists := q.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	return copyJob(job), nil
}

// ListJobs returns jobs filtered by status, newest first, and the total
// number of jobs matching the filter before pagination.
func (q *Queue) ListJobs(status JobStatus, limit, offset int) ([]*Job, int) {
	q.mu.RLock()
	filtered := make([]*Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		if status == "" || job.Status == status {
			filtered = append(filtered, copyJob(job))
		}
	}
	q.mu.RUnlock()

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].QueuedAt.Equal(filtered[j].QueuedAt) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].QueuedAt.After(filtered[j].QueuedAt)
	})

	total := len(filtered)

	// Apply pagination
	start := offset
	if start < 0 {
		start = 0
	}
	if start > total {
		return []*Job{}, total
	}

	end := start + limit
	if limit <= 0 || end > total {
		end = total
	}

	return filtered[start:end], total
}

// GetStats returns queue statistics
func (q *Queue) GetStats() map[string]int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := map[string]int{
		"total":      len(q.jobs),
		"queued":     0,
		"processing": 0,
		"completed":  0,
		"failed":     0,
	}

	for _, job := range q.jobs {
		stats[string(job.Status)]++
	}

	return stats
}

func copyJob(job *Job) *Job {
	jobCopy := *job
	if job.StartedAt != nil {
		startedCopy := *job.StartedAt
		jobCopy.StartedAt = &startedCopy
	}
	if job.CompletedAt != nil {
		completedCopy := *job.CompletedAt
		jobCopy.CompletedAt = &completedCopy
	}
	if job.Result != nil {
		resultCopy := *job.Result
		jobCopy.Result = &resultCopy
	}
	return &jobCopy
}

func (q *Queue) notify(status JobStatus) {
	if q.hook != nil {
		q.hook(status)
	}
}

// worker processes jobs from the queue
func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stop:
			return
		default:
		}

		select {
		case <-q.stop:
			return
		case job := <-q.pendingQueue:
			q.processJob(id, job)
		}
	}
}

// processJob executes a single job
func (q *Queue) processJob(workerID int, job *Job) {
	startTime := time.Now()

	// Update status to processing; the processor receives a snapshot
	q.mu.Lock()
	job.Status = StatusProcessing
	now := time.Now().UTC()
	job.StartedAt = &now
	snapshot := copyJob(job)
	q.mu.Unlock()
	q.notify(StatusProcessing)

	result, err := q.processor(q.ctx, snapshot)

	q.mu.Lock()
	completedAt := time.Now().UTC()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = StatusFailed
		job.ErrorMessage = err.Error()
	} else {
		job.Status = StatusCompleted
		job.Result = result
		if result != nil {
			result.ProcessingTimeMS = time.Since(startTime).Milliseconds()
		}
	}
	final := job.Status
	q.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Int("worker", workerID).Str("job_id", job.ID).Str("round_id", job.RoundID).Msg("Report job failed")
	} else {
		log.Info().Int("worker", workerID).Str("job_id", job.ID).Str("round_id", job.RoundID).Msg("Report job completed")
	}
	q.notify(final)
}

// Shutdown stops accepting jobs and waits up to timeout for in-flight jobs
// to finish. Jobs still running at the deadline have their context canceled.
// Jobs that never started are marked failed.
func (q *Queue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.stopOnce.Do(func() { close(q.stop) })

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(timeout):
		err = fmt.Errorf("shutdown timeout exceeded")
	}

	q.cancel()
	q.abandonPending()

	return err
}

// abandonPending fails every job left in the pending buffer
func (q *Queue) abandonPending() {
	for {
		select {
		case job := <-q.pendingQueue:
			q.mu.Lock()
			completedAt := time.Now().UTC()
			job.Status = StatusFailed
			job.ErrorMessage = ErrQueueClosed.Error()
			job.CompletedAt = &completedAt
			q.mu.Unlock()
			q.notify(StatusFailed)
			log.Warn().Str("job_id", job.ID).Str("round_id", job.RoundID).Msg("Report job abandoned at shutdown")
		default:
			return
		}
	}
}
