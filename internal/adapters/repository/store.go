// Package repository keeps the state of asynchronous batch jobs.
package repository

import (
	"context"

	"github.com/okian/coachmatch/internal/domain/model"
)

// JobStore provides read/write access to batch jobs. Returned jobs are
// copies; mutating them does not change the store.
type JobStore interface {
	// Create stores a new job. It returns ErrDuplicateJob when the ID is taken.
	Create(ctx context.Context, job model.Job) error

	// Get returns the job with id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Job, error)

	// MarkRunning moves a pending job to running.
	MarkRunning(ctx context.Context, id string) error

	// Finish records the item outcomes and settles the job status.
	Finish(ctx context.Context, id string, items []model.JobItem) (model.Job, error)

	// Delete removes a job. Deleting an unknown job is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of jobs held.
	Count(ctx context.Context) int
}
