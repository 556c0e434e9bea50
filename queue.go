package mend

import "errors"

// ErrEmptyQueue is returned by RemoveNext when no regions are pending.
var ErrEmptyQueue = errors.New("dirty region queue is empty")

// DirtyRegionQueue is an ordered collection of pending dirty regions.
// Consecutive edits of the same kind that touch are coalesced so strategies
// do not re-process every keystroke individually.
//
// The queue is not safe for concurrent use; the Reconciler serializes access.
type DirtyRegionQueue struct {
	regions []DirtyRegion
}

// NewDirtyRegionQueue creates an empty queue.
func NewDirtyRegionQueue() *DirtyRegionQueue {
	return &DirtyRegionQueue{}
}

// Add appends region, merging it into the most recently queued region when
// possible. Empty regions are dropped.
func (q *DirtyRegionQueue) Add(region DirtyRegion) {
	if region.length <= 0 {
		return
	}
	if n := len(q.regions); n > 0 {
		if merged, ok := q.regions[n-1].merge(region); ok {
			q.regions[n-1] = merged
			return
		}
	}
	q.regions = append(q.regions, region)
}

// RemoveNext pops and returns the earliest queued region.
func (q *DirtyRegionQueue) RemoveNext() (DirtyRegion, error) {
	if len(q.regions) == 0 {
		return DirtyRegion{}, ErrEmptyQueue
	}
	next := q.regions[0]
	q.regions[0] = DirtyRegion{}
	q.regions = q.regions[1:]
	return next, nil
}

// Size returns the number of pending regions.
func (q *DirtyRegionQueue) Size() int {
	return len(q.regions)
}

// Regions returns a copy of the pending regions in queue order.
func (q *DirtyRegionQueue) Regions() []DirtyRegion {
	if len(q.regions) == 0 {
		return nil
	}
	out := make([]DirtyRegion, len(q.regions))
	copy(out, q.regions)
	return out
}

// Clear discards every pending region.
func (q *DirtyRegionQueue) Clear() {
	q.regions = nil
}

// prepend puts the regions still pending in other ahead of q's own,
// without merging across the boundary.
func (q *DirtyRegionQueue) prepend(other *DirtyRegionQueue) {
	if other == nil || len(other.regions) == 0 {
		return
	}
	regions := make([]DirtyRegion, 0, len(other.regions)+len(q.regions))
	regions = append(regions, other.regions...)
	regions = append(regions, q.regions...)
	q.regions = regions
	other.regions = nil
}
