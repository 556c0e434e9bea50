// Package testing provides test utilities and helpers for mend reconciler testing.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/mend"
)

// Call is one strategy invocation. Dirty is nil for whole-document passes.
type Call struct {
	Dirty  *mend.DirtyRegion
	Region mend.TypedRegion
}

// RecordingStrategy is a mend.Strategy that records every call it receives.
// Set Err to make it fail.
type RecordingStrategy struct {
	mu     sync.Mutex
	calls  []Call
	docs   []mend.Document
	closed int
	Err    error
}

// SetDocument implements mend.Strategy.
func (s *RecordingStrategy) SetDocument(doc mend.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

// Reconcile implements mend.Strategy.
func (s *RecordingStrategy) Reconcile(_ context.Context, region mend.TypedRegion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Region: region})
	return s.Err
}

// ReconcileDirty implements mend.Strategy.
func (s *RecordingStrategy) ReconcileDirty(_ context.Context, dirty mend.DirtyRegion, region mend.TypedRegion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Dirty: &dirty, Region: region})
	return s.Err
}

// CloseReconciler implements mend.Strategy.
func (s *RecordingStrategy) CloseReconciler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

// Calls returns a copy of the recorded calls.
func (s *RecordingStrategy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Documents returns the documents handed to SetDocument, in order.
func (s *RecordingStrategy) Documents() []mend.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mend.Document(nil), s.docs...)
}

// Closed returns how often CloseReconciler was called.
func (s *RecordingStrategy) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FakeEditor is an in-memory mend.Editor.
type FakeEditor struct {
	mu      sync.Mutex
	dirty   bool
	saves   int
	saveErr error
}

// NewFakeEditor creates an editor that reports dirty until saved.
func NewFakeEditor(dirty bool) *FakeEditor {
	return &FakeEditor{dirty: dirty}
}

// IsDirty implements mend.Editor.
func (e *FakeEditor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Save implements mend.Editor. A failing save leaves the editor dirty.
func (e *FakeEditor) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saves++
	if e.saveErr != nil {
		return e.saveErr
	}
	e.dirty = false
	return nil
}

// MarkDirty flags unsaved edits.
func (e *FakeEditor) MarkDirty() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = true
}

// FailSaves makes every later Save return err. Pass nil to recover.
func (e *FakeEditor) FailSaves(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saveErr = err
}

// Saves returns the number of Save calls.
func (e *FakeEditor) Saves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saves
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the reconciler reaches the expected state or timeout occurs.
func WaitForState(t *testing.T, r *mend.Reconciler, expected mend.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return r.State() == expected
	})
}

// RequireState fails the test immediately if the reconciler is not in the expected state.
func RequireState(t *testing.T, r *mend.Reconciler, expected mend.State) {
	t.Helper()
	if got := r.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// NewTestReconciler creates a sync-mode reconciler bound to a new document
// holding text, with a RecordingStrategy registered for the default content
// type. Cycles run when the test calls Flush.
func NewTestReconciler(t *testing.T, text string) (*mend.Reconciler, *mend.TextDocument, *RecordingStrategy) {
	t.Helper()
	doc := mend.NewTextDocument(text)
	strategy := &RecordingStrategy{}

	r := mend.New("test", nil).SyncMode()
	r.AddReconcilingStrategy(mend.DefaultContentType, strategy)
	r.SetDocumentHandle(doc)
	unsubscribe := doc.OnChange(r.OnDocumentChange)

	t.Cleanup(func() {
		unsubscribe()
		r.Uninstall()
	})
	return r, doc, strategy
}
