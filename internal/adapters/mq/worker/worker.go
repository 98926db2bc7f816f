// Package worker runs batch recommendation tasks pulled off the job queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/internal/domain/recommend"
	"github.com/okian/coachmatch/pkg/logger"
	"github.com/okian/coachmatch/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Task is what workers read off the queue.
type Task = model.BatchTask

// Recommender produces recommendations for a stored learner.
type Recommender interface {
	RecommendForLearnerID(ctx context.Context, learnerID string) (recommend.Recommendations, error)
}

// JobStore records job progress.
type JobStore interface {
	MarkRunning(ctx context.Context, id string) error
	Finish(ctx context.Context, id string, items []model.JobItem) (model.Job, error)
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Task
}

// Worker processes tasks until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the task in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue       Queue
	recommender Recommender
	store       JobStore
	name        string
	processed   *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, rec Recommender, store JobStore, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       queue,
		recommender: rec,
		store:       store,
		name:        "worker",
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.processTask(ctx, t); err != nil {
				w.logger.Error(ctx, "error processing task", logger.String("job_id", t.JobID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processTask runs every learner of a job. A failing learner marks only its
// own item failed. A cancelled context abandons the job without finishing it.
func (w *InMemoryWorker) processTask(ctx context.Context, t Task) error { //nolint:gocritic // hugeParam: Task travels by value over the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.store.MarkRunning(ctx, t.JobID); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "job_store_error")
		return fmt.Errorf("mark job %s running: %w", t.JobID, err)
	}

	items := make([]model.JobItem, len(t.LearnerIDs))
	for i, id := range t.LearnerIDs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("job %s abandoned: %w", t.JobID, err)
		}
		items[i] = w.runItem(ctx, t.JobID, id)
	}

	job, err := w.store.Finish(ctx, t.JobID, items)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "job_store_error")
		return fmt.Errorf("finish job %s: %w", t.JobID, err)
	}
	metrics.RecordJobFinished(string(job.Status))
	if w.processed != nil {
		w.processed.Add(1)
	}
	w.logger.Debug(ctx, "job finished",
		logger.String("job_id", t.JobID),
		logger.String("status", string(job.Status)),
		logger.Int("items", len(items)),
	)
	return nil
}

func (w *InMemoryWorker) runItem(ctx context.Context, jobID, learnerID string) (item model.JobItem) {
	item.LearnerID = learnerID
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordJobItemError()
			metrics.RecordErrorByComponent("worker", "panic")
			w.logger.Error(ctx, "recommendation panicked",
				logger.String("job_id", jobID),
				logger.String("learner_id", learnerID),
				logger.Any("panic", r),
			)
			item.Status = model.JobFailed
			item.Error = fmt.Sprintf("internal error: %v", r)
			item.Result = nil
		}
	}()

	rec, err := w.recommender.RecommendForLearnerID(ctx, learnerID)
	if err != nil {
		metrics.RecordJobItemError()
		metrics.RecordErrorByComponent("worker", "recommendation_error")
		w.logger.Warn(ctx, "recommendation failed",
			logger.String("job_id", jobID),
			logger.String("learner_id", learnerID),
			logger.Error(err),
		)
		item.Status = model.JobFailed
		item.Error = err.Error()
		return item
	}
	item.Status = model.JobCompleted
	item.Result = rec
	return item
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}

	processed         atomic.Int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below one uses a multiple of
// the CPU count.
func NewPool(workerCount int, queue Queue, rec Recommender, store JobStore) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(queue, rec, store,
			WithName("worker-"+strconv.Itoa(i)),
			withProcessedCounter(&p.processed),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerMessagesPerSecond(0.0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	if elapsed := now.Sub(p.lastProcessedTime).Seconds(); elapsed > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(p.processed.Swap(0)) / elapsed)
	}
	p.lastProcessedTime = now
}

// Shutdown closes the queue, then waits for workers to finish the tasks
// already queued or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
