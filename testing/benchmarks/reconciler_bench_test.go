package benchmarks

import (
	"context"
	"testing"

	"github.com/zoobzio/mend"
)

func BenchmarkQueue_CoalescedTyping(b *testing.B) {
	q := mend.NewDirtyRegionQueue()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Add(mend.InsertRegion(i, "x"))
	}
	if q.Size() != 1 {
		b.Fatalf("expected 1 coalesced region, got %d", q.Size())
	}
}

func BenchmarkQueue_ScatteredEdits(b *testing.B) {
	q := mend.NewDirtyRegionQueue()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Add(mend.InsertRegion(i*2, "x"))
		if q.Size() > 1024 {
			q.Clear()
		}
	}
}

func BenchmarkReconciler_EditAndFlush(b *testing.B) {
	ctx := context.Background()
	doc := mend.NewTextDocument("")
	r := mend.New("bench", nil).SyncMode()
	r.AddReconcilingStrategy(mend.DefaultContentType, mend.NoOpStrategy{})
	r.SetDocumentHandle(doc)
	doc.OnChange(r.OnDocumentChange)
	r.Install(ctx, nil)
	defer r.Uninstall()

	if err := r.Flush(ctx); err != nil {
		b.Fatalf("Flush() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := doc.Insert(ctx, doc.Length(), "x"); err != nil {
			b.Fatalf("Insert() error = %v", err)
		}
		if err := r.Flush(ctx); err != nil {
			b.Fatalf("Flush() error = %v", err)
		}
	}
}

func BenchmarkReconciler_BurstThenFlush(b *testing.B) {
	ctx := context.Background()
	doc := mend.NewTextDocument("")
	r := mend.New("bench", nil).SyncMode()
	r.AddReconcilingStrategy(mend.DefaultContentType, mend.NoOpStrategy{})
	r.SetDocumentHandle(doc)
	doc.OnChange(r.OnDocumentChange)
	r.Install(ctx, nil)
	defer r.Uninstall()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 64; j++ {
			_ = doc.Insert(ctx, 0, "y")
		}
		if err := r.Flush(ctx); err != nil {
			b.Fatalf("Flush() error = %v", err)
		}
	}
}
