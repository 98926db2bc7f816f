// Package dedupe tracks idempotency keys so a batch submission is accepted
// at most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper maps idempotency keys to the job that first claimed them.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// for jobID if not. When key was already recorded it returns the job ID
	// stored for it and true.
	SeenAndRecord(ctx context.Context, key, jobID string) (string, bool)

	// Unrecord forgets key if it is still recorded for jobID, so a later
	// claim by another job is left alone. It reports whether key was removed.
	Unrecord(ctx context.Context, key, jobID string) bool

	Size() int64
}

type entry struct {
	key   string
	jobID string
}

// inMemoryDeduper keeps keys in insertion order so the oldest can be
// evicted in constant time.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		return el.Value.(*entry).jobID, true //nolint:forcetypeassert // only *entry is stored
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(&entry{key: key, jobID: jobID})
	d.size.Store(int64(len(d.seen)))
	return jobID, false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key, jobID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[key]
	if !ok || el.Value.(*entry).jobID != jobID { //nolint:forcetypeassert // only *entry is stored
		return false
	}
	d.order.Remove(el)
	delete(d.seen, key)
	d.size.Store(int64(len(d.seen)))
	return true
}

// evictOldest drops the earliest recorded key. Callers hold d.mu.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(*entry).key) //nolint:forcetypeassert // only *entry is stored
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
