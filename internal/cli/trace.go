package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/zoobzio/mend"
)

// syncWriter serializes writes from the reconciler goroutine and the command.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// traceStrategy prints every dispatch it receives.
type traceStrategy struct {
	mend.NoOpStrategy
	out io.Writer
}

func (s *traceStrategy) Reconcile(_ context.Context, region mend.TypedRegion) error {
	fmt.Fprintf(s.out, "  reconcile [%d,%d] %s\n", region.Offset, region.Length, region.ContentType)
	return nil
}

func (s *traceStrategy) ReconcileDirty(_ context.Context, dirty mend.DirtyRegion, region mend.TypedRegion) error {
	fmt.Fprintf(s.out, "  reconcile %s in [%d,%d] %s\n", dirty, region.Offset, region.Length, region.ContentType)
	return nil
}

func (s *traceStrategy) CloseReconciler() {
	fmt.Fprintln(s.out, "  close")
}

// memoryEditor is an Editor whose saves only snapshot the document.
type memoryEditor struct {
	doc   *mend.TextDocument
	out   io.Writer
	saved string
}

func newMemoryEditor(doc *mend.TextDocument, out io.Writer) *memoryEditor {
	return &memoryEditor{doc: doc, out: out, saved: doc.Contents()}
}

func (e *memoryEditor) IsDirty() bool {
	return e.doc.Contents() != e.saved
}

func (e *memoryEditor) Save(_ context.Context) error {
	e.saved = e.doc.Contents()
	fmt.Fprintf(e.out, "  save (%d bytes)\n", len(e.saved))
	return nil
}
