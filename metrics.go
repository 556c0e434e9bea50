package mend

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key reconciler events.
// Callbacks may run while the Reconciler holds internal locks and must not
// call back into it.
type MetricsProvider interface {
	// OnStateChange is called when the reconciler transitions between states.
	OnStateChange(from, to State)

	// OnRegionQueued is called for every dirty region added to the queue.
	OnRegionQueued(kind Kind, length int)

	// OnChangeIgnored is called when a stale change notification is dropped.
	OnChangeIgnored()

	// OnSave is called after an autosave. err is nil on success.
	OnSave(duration time.Duration, err error)

	// OnDispatch is called after a strategy reconciled a partition.
	OnDispatch(contentType string)

	// OnCycleComplete is called when a cycle drained its regions.
	OnCycleComplete(regions int, duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)               {}
func (NoOpMetricsProvider) OnRegionQueued(_ Kind, _ int)           {}
func (NoOpMetricsProvider) OnChangeIgnored()                       {}
func (NoOpMetricsProvider) OnSave(_ time.Duration, _ error)        {}
func (NoOpMetricsProvider) OnDispatch(_ string)                    {}
func (NoOpMetricsProvider) OnCycleComplete(_ int, _ time.Duration) {}
