package model

import "time"

// JobStatus is the lifecycle state of a batch job or one of its items.
type JobStatus string

// Job states.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobPartial   JobStatus = "partial"
	JobFailed    JobStatus = "failed"
)

// BatchTask is the payload flowing through the job queue.
type BatchTask struct {
	JobID      string
	LearnerIDs []string
	Submitted  time.Time
}

// JobItem is the outcome for one learner of a batch job.
type JobItem struct {
	LearnerID string    `json:"learner_id"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Result    any       `json:"result,omitempty"`
}

// Job tracks an asynchronous batch recommendation request.
type Job struct {
	ID             string    `json:"id"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	Status         JobStatus `json:"status"`
	Items          []JobItem `json:"items"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Settle derives the job status from its items once all have run.
func (j *Job) Settle() {
	if len(j.Items) == 0 {
		j.Status = JobCompleted
		return
	}
	failed := 0
	for _, it := range j.Items {
		if it.Status == JobFailed {
			failed++
		}
	}
	switch {
	case failed == 0:
		j.Status = JobCompleted
	case failed == len(j.Items):
		j.Status = JobFailed
	default:
		j.Status = JobPartial
	}
}
