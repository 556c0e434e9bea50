package mend

// State represents the lifecycle state of a Reconciler.
type State int32

const (
	// StateUninstalled indicates the Reconciler is not bound to an editor.
	// Change notifications are ignored.
	StateUninstalled State = iota

	// StateInstalled indicates the Reconciler is bound and idle.
	StateInstalled

	// StatePending indicates the debounce timer is armed.
	StatePending

	// StateSaving indicates a cycle is waiting for the autosave to finish.
	StateSaving

	// StateProcessing indicates a cycle is draining dirty regions.
	StateProcessing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalled:
		return "installed"
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}
