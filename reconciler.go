package mend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the quiet period after the last edit before a
// reconcile cycle runs.
const DefaultDebounce = 2 * time.Second

// Reconciler tracks edits to a document, batches them into dirty regions and
// dispatches each region, partitioned by content type, to the Strategy
// registered for that type. Before each cycle it optionally saves the editor.
//
// Only the last edit within the debounce window schedules a cycle; the
// regions of earlier edits stay queued and are drained together.
type Reconciler struct {
	partitioning string
	partitioner  Partitioner
	debounce     time.Duration
	saveTimeout  time.Duration
	syncMode     bool
	clock        clockz.Clock
	metrics      MetricsProvider
	notifier     Notifier
	onError      func(error)

	state        atomic.Int32
	lastError    atomic.Pointer[error]
	errorHistory *errorRing

	// cycle serializes reconcile cycles between the timer loop and Flush.
	cycle sync.Mutex

	mu            sync.Mutex
	strategies    map[string]Strategy
	handle        DocumentHandle
	editor        Editor
	queue         *DirtyRegionQueue
	installed     bool
	autoSave      bool
	wholeDocument bool
	armed         bool
	generation    uint64

	// Timer loop, present between Install and Uninstall unless in sync mode.
	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Reconciler for the named document partitioning. A nil
// partitioner assigns DefaultContentType to the whole document.
//
// Example:
//
//	r := mend.New("java", partitioner).Debounce(500 * time.Millisecond)
//	r.AddReconcilingStrategy("java_code", highlighter)
//	r.SetDocumentHandle(doc)
//	doc.OnChange(r.OnDocumentChange)
//	r.Install(ctx, editor)
//	defer r.Uninstall()
func New(partitioning string, partitioner Partitioner) *Reconciler {
	if partitioner == nil {
		partitioner = DefaultPartitioner{}
	}
	r := &Reconciler{
		partitioning: partitioning,
		partitioner:  partitioner,
		debounce:     DefaultDebounce,
		clock:        clockz.RealClock,
		strategies:   make(map[string]Strategy),
		queue:        NewDirtyRegionQueue(),
		autoSave:     true,
	}
	r.state.Store(int32(StateUninstalled))
	return r
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Debounce sets the quiet period after the last edit before a cycle runs.
// Default: 2s. Must be called before Install().
func (r *Reconciler) Debounce(d time.Duration) *Reconciler {
	r.debounce = d
	return r
}

// SyncMode disables the timer goroutine. Cycles only run when Flush is
// called, which makes tests deterministic. Must be called before Install().
func (r *Reconciler) SyncMode() *Reconciler {
	r.syncMode = true
	return r
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Install().
func (r *Reconciler) Clock(clock clockz.Clock) *Reconciler {
	r.clock = clock
	return r
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Install().
func (r *Reconciler) Metrics(provider MetricsProvider) *Reconciler {
	r.metrics = provider
	return r
}

// Notifier sets the collaborator that surfaces autosave failures to the
// user. Must be called before Install().
func (r *Reconciler) Notifier(n Notifier) *Reconciler {
	r.notifier = n
	return r
}

// SaveTimeout bounds how long a cycle waits for the editor to save. The
// editor's Save must honor its context for the bound to take effect.
// Default: no timeout. Must be called before Install().
func (r *Reconciler) SaveTimeout(d time.Duration) *Reconciler {
	r.saveTimeout = d
	return r
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Install().
func (r *Reconciler) ErrorHistorySize(n int) *Reconciler {
	r.errorHistory = newErrorRing(n)
	return r
}

// OnError sets a callback invoked with every save or strategy error a cycle
// records. Must be called before Install().
func (r *Reconciler) OnError(fn func(error)) *Reconciler {
	r.onError = fn
	return r
}

// -----------------------------------------------------------------------------
// Registry and accessors
// -----------------------------------------------------------------------------

// DocumentPartitioning returns the partitioning name.
func (r *Reconciler) DocumentPartitioning() string {
	return r.partitioning
}

// AddReconcilingStrategy registers s for contentType, replacing any strategy
// registered earlier for the same type.
func (r *Reconciler) AddReconcilingStrategy(contentType string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[contentType] = s
}

// ReconcilingStrategy returns the strategy registered for contentType, or nil.
func (r *Reconciler) ReconcilingStrategy(contentType string) Strategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strategies[contentType]
}

// DocumentHandle returns the bound document handle.
func (r *Reconciler) DocumentHandle() DocumentHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

// SetDocumentHandle binds the document whose changes are reconciled. Changes
// from any other document are ignored. When installed, the document is
// handed to every registered strategy.
func (r *Reconciler) SetDocumentHandle(handle DocumentHandle) {
	r.mu.Lock()
	r.handle = handle
	installed := r.installed
	strategies := r.strategyListLocked()
	r.mu.Unlock()

	if installed && handle != nil {
		doc := handle.Document()
		for _, s := range strategies {
			s.SetDocument(doc)
		}
	}
}

// State returns the current state of the Reconciler.
func (r *Reconciler) State() State {
	return State(r.state.Load())
}

// QueueSize returns the number of dirty regions waiting for the next cycle.
func (r *Reconciler) QueueSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Size()
}

// PendingRegions returns a copy of the dirty regions waiting for the next cycle.
func (r *Reconciler) PendingRegions() []DirtyRegion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Regions()
}

// LastError returns the last error recorded by a cycle, or nil.
func (r *Reconciler) LastError() error {
	ptr := r.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent error history, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (r *Reconciler) ErrorHistory() []ErrorRecord {
	return r.errorHistory.all()
}

// IsAutoSaveEnabled reports whether cycles save the editor first.
func (r *Reconciler) IsAutoSaveEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.autoSave
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Install binds the Reconciler to editor, resets the dirty region queue,
// marks the whole document dirty and arms the debounce timer. Installing an
// installed Reconciler stops its timer and starts over with an empty queue.
//
// The timer goroutine runs until Uninstall or until ctx is canceled.
func (r *Reconciler) Install(ctx context.Context, editor Editor) {
	r.stopLoop()

	r.mu.Lock()
	r.editor = editor
	r.queue = NewDirtyRegionQueue()
	r.installed = true
	r.wholeDocument = true
	r.armed = false
	if !r.syncMode {
		loopCtx, cancel := context.WithCancel(ctx)
		r.wake = make(chan struct{}, 1)
		r.done = make(chan struct{})
		r.cancel = cancel
		go r.run(loopCtx, r.wake, r.done)
	}
	r.transition(ctx, StateInstalled)
	state := r.State()
	handle := r.handle
	strategies := r.strategyListLocked()
	r.mu.Unlock()

	docID := ""
	if handle != nil {
		if doc := handle.Document(); doc != nil {
			docID = doc.ID()
			for _, s := range strategies {
				s.SetDocument(doc)
			}
		}
	}

	capitan.Emit(ctx, ReconcilerInstalled,
		KeyPartitioning.Field(r.partitioning),
		KeyDocument.Field(docID),
		KeyDebounce.Field(r.debounce),
		KeyState.Field(state.String()),
	)

	r.mu.Lock()
	if r.installed {
		r.armLocked(ctx)
	}
	r.mu.Unlock()
}

// Uninstall cancels any pending cycle, stops the timer goroutine and calls
// CloseReconciler on every registered strategy. A cycle already draining
// runs to completion first. Uninstall is safe to call without Install; the
// Reconciler ignores changes until it is installed again.
//
// Uninstall must not be called from within a Strategy callback.
func (r *Reconciler) Uninstall() {
	ctx := context.Background()

	r.mu.Lock()
	wasInstalled := r.installed
	r.installed = false
	r.armed = false
	r.generation++
	r.editor = nil
	r.queue = NewDirtyRegionQueue()
	r.wholeDocument = false
	r.transition(ctx, StateUninstalled)
	strategies := r.strategyListLocked()
	r.mu.Unlock()

	r.stopLoop()

	// Wait for a cycle started by Flush.
	r.cycle.Lock()
	r.cycle.Unlock() //nolint:staticcheck // empty critical section

	for _, s := range strategies {
		s.CloseReconciler()
	}

	if wasInstalled {
		capitan.Emit(ctx, ReconcilerUninstalled,
			KeyPartitioning.Field(r.partitioning),
			KeyState.Field(StateUninstalled.String()),
		)
	}
}

// EnableAutoSave turns autosave on and arms the debounce timer.
func (r *Reconciler) EnableAutoSave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoSave = true
	if r.installed {
		r.armLocked(context.Background())
	}
}

// DisableAutoSave turns autosave off and cancels any pending cycle. No save
// is requested by a timer fire after DisableAutoSave returns.
func (r *Reconciler) DisableAutoSave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoSave = false
	r.disarmLocked(context.Background())
}

// -----------------------------------------------------------------------------
// Change tracking
// -----------------------------------------------------------------------------

// OnDocumentChange queues the dirty regions of event and resets the debounce
// timer. Events for a document other than the bound one, events received
// while uninstalled, and events with a negative span are ignored. An event
// that yields no non-empty region leaves the timer alone.
//
// OnDocumentChange never waits for a running cycle; edits that arrive while
// a cycle drains are processed by the next one.
func (r *Reconciler) OnDocumentChange(ctx context.Context, event DocumentChangeEvent) {
	r.mu.Lock()
	if !r.installed || r.handle == nil || !r.handle.IsSameAs(event.Document) {
		r.mu.Unlock()
		r.ignoreChange(ctx, event, nil)
		return
	}

	regions, err := event.dirtyRegions()
	if err != nil {
		r.mu.Unlock()
		r.ignoreChange(ctx, event, err)
		return
	}

	added := 0
	for _, region := range regions {
		if region.length == 0 {
			continue
		}
		r.queue.Add(region)
		added++
		if r.metrics != nil {
			r.metrics.OnRegionQueued(region.kind, region.length)
		}
	}
	if added == 0 {
		r.mu.Unlock()
		return
	}
	size := r.queue.Size()
	docID := r.documentIDLocked()
	r.armLocked(ctx)
	r.mu.Unlock()

	capitan.Emit(ctx, ChangeReceived,
		KeyDocument.Field(docID),
		KeyOffset.Field(event.Offset),
		KeyLength.Field(event.Length),
		KeyRemoved.Field(event.RemoveCharCount),
		KeyKind.Field(event.kind()),
		KeyQueueSize.Field(size),
	)
}

func (r *Reconciler) ignoreChange(ctx context.Context, event DocumentChangeEvent, err error) {
	if r.metrics != nil {
		r.metrics.OnChangeIgnored()
	}
	fields := []capitan.Field{KeyOffset.Field(event.Offset)}
	if err != nil {
		fields = append(fields, KeyError.Field(err.Error()))
	}
	capitan.Emit(ctx, ChangeIgnored, fields...)
}

// Flush runs a cycle immediately on the calling goroutine and returns the
// first strategy error, if any. Flush runs whenever work is outstanding: a
// pending cycle, queued regions (including those requeued after a strategy
// error or queued while autosave was off), or the whole-document pass. It
// does nothing otherwise. Flush must not be called from within a Strategy
// callback.
func (r *Reconciler) Flush(ctx context.Context) error {
	r.mu.Lock()
	if !r.installed || (!r.armed && r.queue.Size() == 0 && !r.wholeDocument) {
		r.mu.Unlock()
		return nil
	}
	if r.armed {
		r.armed = false
		r.generation++
		r.wakeLocked()
	}
	r.mu.Unlock()

	return r.reconcile(ctx)
}

// Process partitions dirty and hands every partition to the strategy
// registered for its content type. A nil dirty region stands for the whole
// document; strategies then receive Reconcile instead of ReconcileDirty.
// Partitions without a strategy are skipped.
//
// Strategy errors are not swallowed: Process stops at the first one and
// returns it as a *StrategyError.
func (r *Reconciler) Process(ctx context.Context, dirty *DirtyRegion) error {
	var region Region
	if dirty == nil {
		region = Region{Offset: 0, Length: r.documentLength()}
	} else {
		region = dirty.Region()
	}

	for _, part := range r.partitioner.ComputePartitioning(region.Offset, region.Length) {
		strategy := r.ReconcilingStrategy(part.ContentType)
		if strategy == nil {
			continue
		}

		var err error
		if dirty != nil {
			err = strategy.ReconcileDirty(ctx, *dirty, part)
		} else {
			err = strategy.Reconcile(ctx, part)
		}
		if err != nil {
			return &StrategyError{ContentType: part.ContentType, Region: part, Err: err}
		}
		if r.metrics != nil {
			r.metrics.OnDispatch(part.ContentType)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Cycle
// -----------------------------------------------------------------------------

// reconcile runs one cycle: the optional autosave, then the drain of every
// region queued before the drain started.
func (r *Reconciler) reconcile(ctx context.Context) error {
	r.cycle.Lock()
	defer r.cycle.Unlock()

	r.mu.Lock()
	if !r.installed {
		r.mu.Unlock()
		return nil
	}
	editor, autoSave := r.editor, r.autoSave
	docID := r.documentIDLocked()
	r.mu.Unlock()

	if autoSave && editor != nil && editor.IsDirty() {
		r.mu.Lock()
		if r.installed {
			r.transition(ctx, StateSaving)
		}
		r.mu.Unlock()
		r.save(ctx, editor, docID)
	}

	// Detach the queue so edits arriving from here on wait for the next cycle.
	r.mu.Lock()
	if !r.installed {
		r.mu.Unlock()
		return nil
	}
	pending := r.queue
	r.queue = NewDirtyRegionQueue()
	whole := r.wholeDocument
	r.wholeDocument = false
	r.transition(ctx, StateProcessing)
	r.mu.Unlock()

	start := r.clock.Now()
	capitan.Emit(ctx, CycleStarted,
		KeyDocument.Field(docID),
		KeyQueueSize.Field(pending.Size()),
	)

	processed, err := r.drain(ctx, whole, pending)

	r.mu.Lock()
	if r.installed {
		if err != nil {
			r.queue.prepend(pending)
		}
		if r.armed {
			r.transition(ctx, StatePending)
		} else {
			r.transition(ctx, StateInstalled)
		}
	}
	r.mu.Unlock()

	if err != nil {
		r.recordError(err)
		capitan.Emit(ctx, StrategyFailed,
			KeyDocument.Field(docID),
			KeyContentType.Field(contentTypeOf(err)),
			KeyError.Field(err.Error()),
		)
		return err
	}

	elapsed := r.clock.Since(start)
	capitan.Emit(ctx, CycleCompleted,
		KeyDocument.Field(docID),
		KeyRegions.Field(processed),
		KeyDuration.Field(elapsed),
	)
	if r.metrics != nil {
		r.metrics.OnCycleComplete(processed, elapsed)
	}
	return nil
}

// drain processes the whole document when requested, then every region of
// pending in order. On a strategy error the failed region is dropped and the
// rest stay in pending.
func (r *Reconciler) drain(ctx context.Context, whole bool, pending *DirtyRegionQueue) (int, error) {
	processed := 0
	if whole {
		if err := r.Process(ctx, nil); err != nil {
			return processed, err
		}
		processed++
	}
	for pending.Size() > 0 {
		region, err := pending.RemoveNext()
		if err != nil {
			return processed, err
		}
		if err := r.Process(ctx, &region); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// save persists the editor. Failures are recorded and reported but never
// stop the cycle.
func (r *Reconciler) save(ctx context.Context, editor Editor, docID string) {
	saveCtx := ctx
	if r.saveTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = r.clock.WithTimeout(ctx, r.saveTimeout)
		defer cancel()
	}

	capitan.Emit(ctx, AutoSaveStarted, KeyDocument.Field(docID))
	start := r.clock.Now()
	err := editor.Save(saveCtx)
	elapsed := r.clock.Since(start)
	if r.metrics != nil {
		r.metrics.OnSave(elapsed, err)
	}

	if err == nil {
		capitan.Emit(ctx, AutoSaveSucceeded,
			KeyDocument.Field(docID),
			KeyDuration.Field(elapsed),
		)
		return
	}

	saveErr := &SaveError{Document: docID, Err: err}
	r.recordError(saveErr)
	capitan.Emit(ctx, AutoSaveFailed,
		KeyDocument.Field(docID),
		KeyError.Field(err.Error()),
	)
	if r.notifier != nil {
		r.notifier.Notify(ctx, Notification{
			Severity: SeverityError,
			Title:    "Autosave failed",
			Message:  saveErr.Error(),
			Err:      saveErr,
		})
	}
}

// -----------------------------------------------------------------------------
// Timer loop
// -----------------------------------------------------------------------------

// run owns the debounce timer. Arming bumps the generation under r.mu and
// wakes the loop; a fire whose generation is stale re-arms instead of
// running, and a fire after cancellation is ignored.
func (r *Reconciler) run(ctx context.Context, wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var (
		timer   clockz.Timer
		armedAt uint64
	)

	for {
		// Get timer channel or nil if no timer
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-wake:
			r.mu.Lock()
			armed, generation := r.armed, r.generation
			r.mu.Unlock()
			if armed {
				armedAt = generation
				timer = r.resetTimer(timer)
			} else {
				stopTimer(timer)
			}

		case <-timerC:
			r.mu.Lock()
			if !r.armed {
				r.mu.Unlock()
				continue
			}
			if r.generation != armedAt {
				armedAt = r.generation
				r.mu.Unlock()
				timer = r.resetTimer(timer)
				continue
			}
			r.armed = false
			r.mu.Unlock()

			_ = r.reconcile(ctx) //nolint:errcheck // Errors stored via recordError
		}
	}
}

// resetTimer starts the debounce timer, or restarts it if it exists.
func (r *Reconciler) resetTimer(timer clockz.Timer) clockz.Timer {
	if timer == nil {
		return r.clock.NewTimer(r.debounce)
	}
	stopTimer(timer)
	timer.Reset(r.debounce)
	return timer
}

// stopTimer stops timer and drains a fire that was not received yet.
func stopTimer(timer clockz.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C():
		default:
		}
	}
}

// stopLoop cancels the timer goroutine and waits for it to exit.
func (r *Reconciler) stopLoop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done, r.wake = nil, nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// armLocked requests a cycle after the debounce period, superseding any
// earlier request. r.mu must be held.
func (r *Reconciler) armLocked(ctx context.Context) {
	r.armed = true
	r.generation++
	if r.State() == StateInstalled {
		r.transition(ctx, StatePending)
	}
	r.wakeLocked()
}

// disarmLocked cancels a requested cycle. r.mu must be held.
func (r *Reconciler) disarmLocked(ctx context.Context) {
	r.armed = false
	r.generation++
	if r.State() == StatePending {
		r.transition(ctx, StateInstalled)
	}
	r.wakeLocked()
}

// wakeLocked notifies the timer goroutine that the armed state changed.
func (r *Reconciler) wakeLocked() {
	if r.wake == nil {
		return
	}
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// transition updates the state and emits a state change event if changed.
func (r *Reconciler) transition(ctx context.Context, to State) {
	from := State(r.state.Swap(int32(to)))
	if from == to {
		return
	}
	capitan.Emit(ctx, ReconcilerStateChanged,
		KeyOldState.Field(from.String()),
		KeyNewState.Field(to.String()),
	)
	if r.metrics != nil {
		r.metrics.OnStateChange(from, to)
	}
}

// recordError stores err as the last error and in the error history.
func (r *Reconciler) recordError(err error) {
	e := err
	r.lastError.Store(&e)
	r.errorHistory.push(r.clock.Now(), err)
	if r.onError != nil {
		r.onError(err)
	}
}

func (r *Reconciler) strategyListLocked() []Strategy {
	out := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	return out
}

func (r *Reconciler) documentIDLocked() string {
	if r.handle == nil {
		return ""
	}
	if doc := r.handle.Document(); doc != nil {
		return doc.ID()
	}
	return ""
}

// documentLength returns the length of the bound document, 0 when unbound.
func (r *Reconciler) documentLength() int {
	r.mu.Lock()
	handle := r.handle
	r.mu.Unlock()

	if handle == nil {
		return 0
	}
	doc := handle.Document()
	if doc == nil {
		return 0
	}
	return doc.Length()
}

func contentTypeOf(err error) string {
	var se *StrategyError
	if errors.As(err, &se) {
		return se.ContentType
	}
	return ""
}
