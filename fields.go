package mend

import "github.com/zoobzio/capitan"

// Field keys for Reconciler events.
var (
	// KeyState is the state of the Reconciler after install or uninstall.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyDuration is the time a save or cycle took.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyDocument is the identity of the bound document.
	KeyDocument = capitan.NewStringKey("document")

	// KeyPartitioning is the partitioning name of the Reconciler.
	KeyPartitioning = capitan.NewStringKey("partitioning")

	// KeyContentType is the content type of the failing partition.
	KeyContentType = capitan.NewStringKey("content_type")

	// KeyOffset is the offset of a document change.
	KeyOffset = capitan.NewIntKey("offset")

	// KeyLength is the inserted length of a document change.
	KeyLength = capitan.NewIntKey("length")

	// KeyRemoved is the removed length of a document change.
	KeyRemoved = capitan.NewIntKey("removed")

	// KeyKind is the kind of a document change: insert, remove or replace.
	KeyKind = capitan.NewStringKey("kind")

	// KeyQueueSize is the number of pending dirty regions.
	KeyQueueSize = capitan.NewIntKey("queue_size")

	// KeyRegions is the number of regions processed by a cycle.
	KeyRegions = capitan.NewIntKey("regions")
)
