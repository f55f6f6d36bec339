package queue

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

// waitForStatus polls until the job reaches the status or the deadline passes
func waitForStatus(t *testing.T, q *Queue, jobID string, status JobStatus) *Job {
	t.Helper()

	var job *Job
	require.Eventually(t, func() bool {
		var err error
		job, err = q.GetJob(jobID)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached %s", jobID, status)

	return job
}

func TestNewQueue(t *testing.T) {
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		return &JobResult{CSVPath: "/data/reports/test.csv"}, nil
	}

	q := NewQueue(3, processor)
	defer func() { _ = q.Shutdown(time.Second) }()

	if q.workers != 3 {
		t.Errorf("expected 3 workers, got %d", q.workers)
	}
	if len(q.jobs) != 0 {
		t.Errorf("expected empty jobs map, got %d jobs", len(q.jobs))
	}
	if cap(q.pendingQueue) != 100 {
		t.Errorf("expected default capacity 100, got %d", cap(q.pendingQueue))
	}
}

func TestNewQueue_NonPositiveWorkers(t *testing.T) {
	q := NewQueue(0, func(_ context.Context, _ *Job) (*JobResult, error) { return nil, nil })
	defer func() { _ = q.Shutdown(time.Second) }()

	assert.Equal(t, 1, q.workers)
}

func TestEnqueue(t *testing.T) {
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		return &JobResult{CSVPath: "/data/reports/round_r1.csv"}, nil
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()

	jobID, err := q.Enqueue("round-1")
	if err != nil {
		t.Fatalf("Enqueue() failed: %v", err)
	}

	if jobID == "" {
		t.Error("expected non-empty job ID")
	}

	job, err := q.GetJob(jobID)
	if err != nil {
		t.Fatalf("GetJob() failed: %v", err)
	}

	if job.RoundID != "round-1" {
		t.Errorf("expected round_id 'round-1', got '%s'", job.RoundID)
	}
	if job.QueuedAt.IsZero() {
		t.Error("expected QueuedAt to be set")
	}
}

func TestEnqueue_QueueFull(t *testing.T) {
	release := make(chan struct{})
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		<-release
		return &JobResult{}, nil
	}

	q := NewQueue(1, processor, WithCapacity(1))
	defer func() { _ = q.Shutdown(time.Second) }()
	defer close(release)

	first, err := q.Enqueue("round-1")
	require.NoError(t, err)
	waitForStatus(t, q, first, StatusProcessing)

	_, err = q.Enqueue("round-2")
	require.NoError(t, err)

	_, err = q.Enqueue("round-3")
	assert.ErrorIs(t, err, ErrQueueFull)

	stats := q.GetStats()
	assert.Equal(t, 1, stats["failed"])
}

func TestGetJob_NotFound(t *testing.T) {
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		return nil, nil
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()

	_, err := q.GetJob("non-existent-id")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGetJob_ReturnsCopy(t *testing.T) {
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		return &JobResult{TotalShots: 4}, nil
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()

	jobID, err := q.Enqueue("round-1")
	require.NoError(t, err)

	job := waitForStatus(t, q, jobID, StatusCompleted)
	job.Result.TotalShots = 99
	job.Status = StatusFailed

	again, err := q.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, again.Status)
	assert.Equal(t, 4, again.Result.TotalShots)
}

func TestListJobs(t *testing.T) {
	release := make(chan struct{})
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		<-release
		return &JobResult{CSVPath: "/data/reports/test.csv"}, nil
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()
	defer close(release)

	var ids []string
	for _, round := range []string{"round-1", "round-2", "round-3"} {
		id, err := q.Enqueue(round)
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(2 * time.Millisecond)
	}

	jobs, total := q.ListJobs("", 10, 0)
	assert.Equal(t, 3, total)
	require.Len(t, jobs, 3)
	assert.Equal(t, ids[2], jobs[0].ID, "newest job should be listed first")
	assert.Equal(t, ids[0], jobs[2].ID)

	jobs, total = q.ListJobs("", 1, 1)
	assert.Equal(t, 3, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, ids[1], jobs[0].ID)

	jobs, _ = q.ListJobs("", 10, 100)
	assert.Empty(t, jobs)

	jobs, total = q.ListJobs(StatusCompleted, 10, 0)
	assert.Empty(t, jobs)
	assert.Equal(t, 0, total)
}

func TestProcessJob_Success(t *testing.T) {
	var processorCalled atomic.Bool
	processor := func(_ context.Context, job *Job) (*JobResult, error) {
		processorCalled.Store(true)
		return &JobResult{
			CSVPath:         "/data/reports/round_" + job.RoundID + ".csv",
			TotalShots:      72,
			AverageDistance: 183,
			Accuracy:        67,
			MostUsedClub:    "Driver",
		}, nil
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()

	jobID, err := q.Enqueue("r1")
	require.NoError(t, err)

	job := waitForStatus(t, q, jobID, StatusCompleted)

	assert.True(t, processorCalled.Load())
	require.NotNil(t, job.Result)
	assert.Equal(t, "/data/reports/round_r1.csv", job.Result.CSVPath)
	assert.Equal(t, 183, job.Result.AverageDistance)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
}

func TestProcessJob_Failure(t *testing.T) {
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		return nil, errors.New("processing failed")
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()

	jobID, err := q.Enqueue("r1")
	require.NoError(t, err)

	job := waitForStatus(t, q, jobID, StatusFailed)
	assert.Equal(t, "processing failed", job.ErrorMessage)
	assert.Nil(t, job.Result)
}

func TestStatusHook(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []JobStatus
	)
	hook := func(status JobStatus) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, status)
	}

	q := NewQueue(1, func(_ context.Context, _ *Job) (*JobResult, error) {
		return &JobResult{}, nil
	}, WithStatusHook(hook))
	defer func() { _ = q.Shutdown(time.Second) }()

	jobID, err := q.Enqueue("r1")
	require.NoError(t, err)
	waitForStatus(t, q, jobID, StatusCompleted)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []JobStatus{StatusQueued, StatusProcessing, StatusCompleted}, seen)
}

func TestGetStats(t *testing.T) {
	release := make(chan struct{})
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		<-release
		return &JobResult{}, nil
	}

	q := NewQueue(1, processor)
	defer func() { _ = q.Shutdown(time.Second) }()
	defer close(release)

	_, _ = q.Enqueue("r1")
	_, _ = q.Enqueue("r2")

	stats := q.GetStats()
	if stats["total"] != 2 {
		t.Errorf("expected total 2, got %d", stats["total"])
	}
	assert.Equal(t, 2, stats["queued"]+stats["processing"])
}

func TestShutdown(t *testing.T) {
	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		return &JobResult{}, nil
	}

	q := NewQueue(3, processor)

	err := q.Shutdown(time.Second)
	if err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}

	select {
	case <-q.ctx.Done():
		// Expected
	default:
		t.Error("expected context to be canceled")
	}
}

func TestShutdown_DrainsInFlightJobs(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var ctxErr atomic.Value

	processor := func(ctx context.Context, _ *Job) (*JobResult, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			ctxErr.Store(err)
		}
		return &JobResult{TotalShots: 3}, nil
	}

	q := NewQueue(1, processor)

	jobID, err := q.Enqueue("round-1")
	require.NoError(t, err)
	<-started

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- q.Shutdown(2 * time.Second) }()

	// Shutdown must not cancel the running job while it is still draining
	<-q.stop
	close(release)

	require.NoError(t, <-shutdownErr)
	assert.Nil(t, ctxErr.Load(), "processor context canceled before the drain deadline")

	job, err := q.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
}

func TestShutdown_CancelsAfterDeadline(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})

	processor := func(ctx context.Context, _ *Job) (*JobResult, error) {
		close(started)
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	}

	q := NewQueue(1, processor)

	jobID, err := q.Enqueue("round-1")
	require.NoError(t, err)
	<-started

	err = q.Shutdown(30 * time.Millisecond)
	assert.Error(t, err)

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("processor context was never canceled")
	}

	waitForStatus(t, q, jobID, StatusFailed)
}

func TestShutdown_RejectsNewJobs(t *testing.T) {
	q := NewQueue(1, func(_ context.Context, _ *Job) (*JobResult, error) { return &JobResult{}, nil })
	require.NoError(t, q.Shutdown(time.Second))

	_, err := q.Enqueue("round-1")
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Shutdown is idempotent
	assert.NoError(t, q.Shutdown(time.Second))
}

func TestShutdown_FailsPendingJobs(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	processor := func(_ context.Context, _ *Job) (*JobResult, error) {
		once.Do(func() { close(started) })
		<-release
		return &JobResult{}, nil
	}

	q := NewQueue(1, processor)

	first, err := q.Enqueue("round-1")
	require.NoError(t, err)
	<-started
	pending, err := q.Enqueue("round-2")
	require.NoError(t, err)

	go func() {
		<-q.stop
		close(release)
	}()
	require.NoError(t, q.Shutdown(2*time.Second))

	done, err := q.GetJob(first)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	abandoned, err := q.GetJob(pending)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, abandoned.Status)
	assert.Equal(t, ErrQueueClosed.Error(), abandoned.ErrorMessage)
}
