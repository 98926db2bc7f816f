package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/coachmatch/internal/adapters/mq/queue"
	"github.com/okian/coachmatch/internal/adapters/repository"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/logger"
	"github.com/okian/coachmatch/pkg/metrics"
)

// SubmitBatch queues a recommendation job for the given learners. When
// idempotencyKey matches an earlier submission that is still tracked, that
// job is returned with duplicate set and nothing new is queued.
func (s *Service) SubmitBatch(ctx context.Context, idempotencyKey string, learnerIDs []string) (job model.Job, duplicate bool, err error) {
	ids, err := s.validateBatch(learnerIDs)
	if err != nil {
		return model.Job{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Job{}, false, ErrNotStarted
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	jobID := uuid.NewString()
	key := strings.TrimSpace(idempotencyKey)
	if key != "" {
		if firstID, seen := s.deduper.SeenAndRecord(ctx, key, jobID); seen {
			existing, err := s.jobs.Get(ctx, firstID)
			if err == nil {
				metrics.RecordJobDuplicate()
				return existing, true, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return model.Job{}, false, fmt.Errorf("lookup job %s: %w", firstID, err)
			}
			// the earlier job was swept; let this submission take the key
			s.deduper.Unrecord(ctx, key, firstID)
			s.deduper.SeenAndRecord(ctx, key, jobID)
		}
	}

	items := make([]model.JobItem, len(ids))
	for i, id := range ids {
		items[i] = model.JobItem{LearnerID: id, Status: model.JobPending}
	}
	job = model.Job{ID: jobID, IdempotencyKey: key, Status: model.JobPending, Items: items}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.forget(ctx, key, jobID)
		return model.Job{}, false, fmt.Errorf("create job: %w", err)
	}

	task := model.BatchTask{JobID: jobID, LearnerIDs: ids, Submitted: s.now()}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		_ = s.jobs.Delete(ctx, jobID)
		s.forget(ctx, key, jobID)
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
			s.logger.Warn(ctx, "batch rejected", logger.String("job_id", jobID), logger.Error(err))
			return model.Job{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return model.Job{}, false, fmt.Errorf("enqueue job: %w", err)
	}

	metrics.RecordJobSubmitted()
	stored, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return job, false, nil //nolint:nilerr // the job may already be swept; the submission itself succeeded
	}
	return stored, false, nil
}

// Job returns a batch job by id.
func (s *Service) Job(ctx context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Job{}, ErrNotStarted
	}
	job, err := s.jobs.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, err
}

func (s *Service) validateBatch(learnerIDs []string) ([]string, error) {
	if len(learnerIDs) == 0 {
		return nil, fmt.Errorf("%w: learner_ids must not be empty", ErrBadRequest)
	}
	if len(learnerIDs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: at most %d learners per batch", ErrBadRequest, s.maxBatchSize)
	}
	if s.catalog == nil {
		return nil, ErrNoCatalog
	}
	ids := make([]string, 0, len(learnerIDs))
	for _, id := range learnerIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: learner_ids must not contain blanks", ErrBadRequest)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// forget releases key if jobID still holds it.
func (s *Service) forget(ctx context.Context, key, jobID string) {
	if key != "" {
		s.deduper.Unrecord(ctx, key, jobID)
	}
}
