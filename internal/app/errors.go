package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("job queue is full")
	ErrNoCatalog    = errors.New("no catalog configured")
	ErrNotStarted   = errors.New("service not started")
)
