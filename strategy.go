package mend

import "context"

// Strategy analyzes one content type of a document, for example syntax
// highlighting or diagnostics.
type Strategy interface {
	// SetDocument hands the strategy the document it will reconcile.
	SetDocument(doc Document)

	// Reconcile performs a full analysis of region.
	Reconcile(ctx context.Context, region TypedRegion) error

	// ReconcileDirty analyzes region knowing that dirty is the edit that
	// changed it, which allows incremental work.
	ReconcileDirty(ctx context.Context, dirty DirtyRegion, region TypedRegion) error

	// CloseReconciler releases resources when the reconciler is uninstalled.
	CloseReconciler()
}

// NoOpStrategy is a no-op implementation of Strategy.
// Use this as an embedded type to implement only the methods you need.
type NoOpStrategy struct{}

func (NoOpStrategy) SetDocument(_ Document)                                               {}
func (NoOpStrategy) Reconcile(_ context.Context, _ TypedRegion) error                     { return nil }
func (NoOpStrategy) ReconcileDirty(_ context.Context, _ DirtyRegion, _ TypedRegion) error { return nil }
func (NoOpStrategy) CloseReconciler()                                                     {}
