package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs post-commit side effects (notification delivery) off the request path
// on a fixed pool of processors fed by a bounded queue
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	maxConcurrent int

	mu     sync.RWMutex
	closed bool

	stats   WorkerStats
	statsMu sync.RWMutex
}

// WorkerStats holds statistics about the worker.
// CompletedJobs counts every finished job; FailedJobs is the failing subset.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

const defaultQueueSize = 100

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	return newWorker(numWorkers, defaultQueueSize)
}

func newWorker(numWorkers, queueSize int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, queueSize),
		maxConcurrent: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool.
// A full queue runs the job on the caller's goroutine.
// It returns false when the worker is shutting down.
func (w *Worker) Enqueue(job Job) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		logger.Warn("[Worker] Job rejected, worker is shut down")
		return false
	}

	select {
	case w.queue <- job:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously")
		w.run("sync", job)
	}
	return true
}

// process handles jobs from the queue until it is closed
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for job := range w.queue {
		w.run(fmt.Sprintf("%d", workerID), job)
	}
}

func (w *Worker) run(name string, job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[Worker %s] Job panic: %v", name, r))
			w.trackJobFailure()
		}
	}()

	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error(fmt.Sprintf("[Worker %s] Job error: %v", name, err))
		w.trackJobFailure()
		return
	}
	logger.Debug(fmt.Sprintf("[Worker %s] Job completed in %v", name, time.Since(start)))
}

// Shutdown stops accepting jobs, drains queued and in-flight ones, then cancels the job context
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	w.cancel()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
