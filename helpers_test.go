package mend

import (
	"context"
	"sync"
	"testing"
	"time"
)

// call is one strategy invocation.
type call struct {
	dirty  *DirtyRegion
	region TypedRegion
}

type recordingStrategy struct {
	mu      sync.Mutex
	calls   []call
	docs    []Document
	closed  int
	err     error
	onDirty func(DirtyRegion)
}

func (s *recordingStrategy) SetDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

func (s *recordingStrategy) Reconcile(_ context.Context, region TypedRegion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{region: region})
	return s.err
}

func (s *recordingStrategy) ReconcileDirty(_ context.Context, dirty DirtyRegion, region TypedRegion) error {
	s.mu.Lock()
	s.calls = append(s.calls, call{dirty: &dirty, region: region})
	hook, err := s.onDirty, s.err
	s.mu.Unlock()
	if hook != nil {
		hook(dirty)
	}
	return err
}

func (s *recordingStrategy) CloseReconciler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

func (s *recordingStrategy) Calls() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

func (s *recordingStrategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

type recordingPartitioner struct {
	mu          sync.Mutex
	requests    []Region
	contentType string
	fixed       *TypedRegion
}

func (p *recordingPartitioner) ComputePartitioning(offset, length int) []TypedRegion {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, Region{Offset: offset, Length: length})
	if p.fixed != nil {
		return []TypedRegion{*p.fixed}
	}
	return []TypedRegion{{Offset: offset, Length: length, ContentType: p.contentType}}
}

func (p *recordingPartitioner) Requests() []Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Region(nil), p.requests...)
}

type fakeEditor struct {
	mu      sync.Mutex
	dirty   bool
	saves   int
	saveErr error
	block   bool
	onSave  func()
}

func (e *fakeEditor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

func (e *fakeEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	e.saves++
	block, err, hook := e.block, e.saveErr, e.onSave
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.dirty = false
	e.mu.Unlock()
	return nil
}

func (e *fakeEditor) Saves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saves
}

// waitFor polls condition until it holds or the timeout passes.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}

// newSyncReconciler builds a sync-mode reconciler bound to doc with one
// strategy for "text".
func newSyncReconciler(doc *TextDocument) (*Reconciler, *recordingStrategy, *recordingPartitioner) {
	partitioner := &recordingPartitioner{contentType: "text"}
	strategy := &recordingStrategy{}
	r := New("test", partitioner).SyncMode()
	r.AddReconcilingStrategy("text", strategy)
	r.SetDocumentHandle(doc)
	doc.OnChange(r.OnDocumentChange)
	return r, strategy, partitioner
}
