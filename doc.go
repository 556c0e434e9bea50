// Package mend provides incremental reconciliation for editor documents.
//
// A Reconciler tracks edits to a document, batches them into dirty regions,
// partitions every region by content type and hands each partition to the
// Strategy registered for that type. Strategies are where parsing, syntax
// highlighting or diagnostics live; mend only decides when they run and on
// which range.
//
// # Pipeline
//
//	edit → OnDocumentChange → DirtyRegionQueue → debounce → autosave → drain
//	     → Partitioner → Strategy.ReconcileDirty / Strategy.Reconcile
//
// Every edit resets the debounce timer, so only the last edit of a burst
// starts a cycle. The cycle saves the editor when autosave is enabled and
// the editor is dirty, then drains every region queued so far. Edits that
// arrive while a cycle drains wait for the next one.
//
// # Dirty Regions
//
// A DirtyRegion is an Insert or a Remove. The queue coalesces consecutive
// edits of the same kind that touch, so typing "foo" yields one region
// rather than three. A replace is recorded as a Remove followed by an Insert
// at the same offset.
//
// # State Machine
//
// A Reconciler is in one of five states:
//
//   - Uninstalled: not bound to an editor, changes are ignored
//   - Installed: bound and idle
//   - Pending: the debounce timer is armed
//   - Saving: a cycle waits for the autosave
//   - Processing: a cycle drains dirty regions
//
// Uninstall returns to Uninstalled from any state; a later Install starts
// over with an empty queue.
//
// # Observability
//
// Lifecycle, autosave and cycle events are emitted as capitan signals:
//
//	capitan.Hook(mend.AutoSaveFailed, func(_ context.Context, e *capitan.Event) {
//	    msg, _ := mend.KeyError.From(e)
//	    log.Printf("autosave failed: %s", msg)
//	})
//
// # Example
//
//	doc := mend.NewTextDocument(source)
//
//	r := mend.New("go", partitioner).Debounce(500 * time.Millisecond)
//	r.AddReconcilingStrategy("go_code", highlighter)
//	r.SetDocumentHandle(doc)
//	doc.OnChange(r.OnDocumentChange)
//
//	r.Install(ctx, editor)
//	defer r.Uninstall()
package mend
