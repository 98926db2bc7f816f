package repository

import "errors"

// Sentinel errors for the job store.
var (
	ErrNotFound     = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already exists")
)
