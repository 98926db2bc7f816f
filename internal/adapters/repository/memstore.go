package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/metrics"
)

const (
	defaultRetention     = time.Hour
	defaultSweepInterval = time.Minute
)

// MemoryStore is a JobStore held in process memory. Finished jobs are
// dropped once they are older than the retention window.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job

	retention     time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// NewMemoryStore creates a store and starts its sweeper. Call Close to stop it.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:          make(map[string]*model.Job),
		retention:     defaultRetention,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.sweepLoop(ctx)
	return s
}

// Create implements JobStore.
func (s *MemoryStore) Create(ctx context.Context, job model.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.ID == "" {
		return fmt.Errorf("create job: empty id")
	}
	now := s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = model.JobPending
	}
	job.Items = cloneItems(job.Items)

	s.mu.Lock()
	if _, ok := s.jobs[job.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}
	s.jobs[job.ID] = &job
	n := len(s.jobs)
	s.mu.Unlock()

	metrics.UpdateJobsTracked(n)
	return nil
}

// Get implements JobStore.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Job, error) {
	if err := ctx.Err(); err != nil {
		return model.Job{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyJob(j), nil
}

// MarkRunning implements JobStore. Jobs that already left the pending state
// are left untouched.
func (s *MemoryStore) MarkRunning(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status == model.JobPending {
		j.Status = model.JobRunning
		j.UpdatedAt = s.now()
	}
	return nil
}

// Finish implements JobStore.
func (s *MemoryStore) Finish(ctx context.Context, id string, items []model.JobItem) (model.Job, error) {
	if err := ctx.Err(); err != nil {
		return model.Job{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	j.Items = cloneItems(items)
	j.Settle()
	j.UpdatedAt = s.now()
	return copyJob(j), nil
}

// Delete implements JobStore.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.jobs, id)
	n := len(s.jobs)
	s.mu.Unlock()

	metrics.UpdateJobsTracked(n)
	return nil
}

// Count implements JobStore.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Close stops the sweeper and waits for it to exit.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

func (s *MemoryStore) sweepLoop(ctx context.Context) {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes finished jobs older than the retention window and returns
// how many were dropped.
func (s *MemoryStore) Sweep() int {
	if s.retention == 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)
	s.mu.Lock()
	removed := 0
	for id, j := range s.jobs {
		if finished(j.Status) && j.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	n := len(s.jobs)
	s.mu.Unlock()

	metrics.UpdateJobsTracked(n)
	return removed
}

func finished(st model.JobStatus) bool {
	switch st {
	case model.JobCompleted, model.JobPartial, model.JobFailed:
		return true
	default:
		return false
	}
}

func copyJob(j *model.Job) model.Job {
	out := *j
	out.Items = cloneItems(j.Items)
	return out
}

func cloneItems(items []model.JobItem) []model.JobItem {
	out := make([]model.JobItem, len(items))
	copy(out, items)
	return out
}
