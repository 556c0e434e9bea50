package mend

import "github.com/zoobzio/capitan"

// Reconciler lifecycle signals.
var (
	// ReconcilerInstalled is emitted when a Reconciler is bound to an editor.
	ReconcilerInstalled = capitan.NewSignal(
		"mend.reconciler.installed",
		"Reconciler installed on an editor",
	)

	// ReconcilerUninstalled is emitted when a Reconciler is unbound.
	ReconcilerUninstalled = capitan.NewSignal(
		"mend.reconciler.uninstalled",
		"Reconciler uninstalled",
	)

	// ReconcilerStateChanged is emitted when a Reconciler transitions between states.
	ReconcilerStateChanged = capitan.NewSignal(
		"mend.reconciler.state.changed",
		"Reconciler state transition",
	)
)

// Change tracking signals.
var (
	// ChangeReceived is emitted when a document change is queued.
	ChangeReceived = capitan.NewSignal(
		"mend.change.received",
		"Document change queued as dirty regions",
	)

	// ChangeIgnored is emitted when a change belongs to another document or
	// arrives while uninstalled.
	ChangeIgnored = capitan.NewSignal(
		"mend.change.ignored",
		"Stale document change ignored",
	)
)

// Autosave signals.
var (
	// AutoSaveStarted is emitted before the editor is saved.
	AutoSaveStarted = capitan.NewSignal(
		"mend.autosave.started",
		"Autosave started",
	)

	// AutoSaveSucceeded is emitted when the editor was saved.
	AutoSaveSucceeded = capitan.NewSignal(
		"mend.autosave.succeeded",
		"Autosave succeeded",
	)

	// AutoSaveFailed is emitted when the save failed. The cycle continues.
	AutoSaveFailed = capitan.NewSignal(
		"mend.autosave.failed",
		"Autosave failed",
	)
)

// Reconcile cycle signals.
var (
	// CycleStarted is emitted when a cycle starts draining dirty regions.
	CycleStarted = capitan.NewSignal(
		"mend.cycle.started",
		"Reconcile cycle started",
	)

	// CycleCompleted is emitted when every detached region was processed.
	CycleCompleted = capitan.NewSignal(
		"mend.cycle.completed",
		"Reconcile cycle completed",
	)

	// StrategyFailed is emitted when a strategy returns an error.
	StrategyFailed = capitan.NewSignal(
		"mend.strategy.failed",
		"Reconciling strategy failed",
	)
)
