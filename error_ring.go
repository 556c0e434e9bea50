package mend

import (
	"sync"
	"time"
)

// ErrorRecord is an error retained in a Reconciler's error history.
type ErrorRecord struct {
	Time time.Time
	Err  error
}

// errorRing is a thread-safe ring buffer of recent error records.
type errorRing struct {
	mu      sync.RWMutex
	records []ErrorRecord
	head    int
	count   int
}

// newErrorRing creates a ring holding up to size records.
// If size is 0, the ring is disabled and all methods are no-ops.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{records: make([]ErrorRecord, size)}
}

// push records err, overwriting the oldest record when full.
func (r *errorRing) push(at time.Time, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[r.head] = ErrorRecord{Time: at, Err: err}
	r.head = (r.head + 1) % len(r.records)
	if r.count < len(r.records) {
		r.count++
	}
}

// all returns the retained records, oldest first.
func (r *errorRing) all() []ErrorRecord {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	size := len(r.records)
	out := make([]ErrorRecord, r.count)
	start := (r.head - r.count + size) % size
	for i := range out {
		out[i] = r.records[(start+i)%size]
	}
	return out
}
