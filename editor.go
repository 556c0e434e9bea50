package mend

import (
	"context"
	"fmt"
)

// Editor is the editor widget a Reconciler is installed on.
type Editor interface {
	// IsDirty reports whether the editor holds unsaved changes.
	IsDirty() bool

	// Save persists the editor contents. The Reconciler waits for Save to
	// return before draining dirty regions.
	Save(ctx context.Context) error
}

// Severity classifies a Notification.
type Severity int

const (
	// SeverityInfo is a purely informational notification.
	SeverityInfo Severity = iota

	// SeverityWarning reports a recoverable problem.
	SeverityWarning

	// SeverityError reports a failure the user should know about.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a user-facing message.
type Notification struct {
	Severity Severity
	Title    string
	Message  string
	Err      error
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// SaveError reports an autosave that failed before a reconcile cycle.
type SaveError struct {
	Document string
	Err      error
}

func (e *SaveError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("autosave failed: %v", e.Err)
	}
	return fmt.Sprintf("autosave of %s failed: %v", e.Document, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// StrategyError reports a strategy that failed while reconciling a region.
type StrategyError struct {
	ContentType string
	Region      TypedRegion
	Err         error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %q failed on [%d,%d]: %v", e.ContentType, e.Region.Offset, e.Region.Length, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}
