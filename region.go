package mend

import (
	"errors"
	"fmt"
)

// ErrInvalidRegion is returned when a dirty region violates its invariants.
var ErrInvalidRegion = errors.New("invalid dirty region")

// Kind identifies the edit that produced a DirtyRegion.
type Kind int

const (
	// Insert marks text added to the document.
	Insert Kind = iota

	// Remove marks text deleted from the document.
	Remove
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// Region is a span of the document.
type Region struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte of the region.
func (r Region) End() int {
	return r.Offset + r.Length
}

// TypedRegion is a Region tagged with the content type assigned by a Partitioner.
type TypedRegion struct {
	Offset      int
	Length      int
	ContentType string
}

// Region returns the untyped span.
func (r TypedRegion) Region() Region {
	return Region{Offset: r.Offset, Length: r.Length}
}

// DirtyRegion describes a single edit that has not been reconciled yet.
// It is immutable once constructed.
type DirtyRegion struct {
	offset int
	length int
	kind   Kind
	text   string
}

// NewDirtyRegion creates a DirtyRegion. Text must be non-empty for inserts
// and empty for removals.
func NewDirtyRegion(offset, length int, kind Kind, text string) (DirtyRegion, error) {
	if offset < 0 || length < 0 {
		return DirtyRegion{}, fmt.Errorf("%w: negative span [%d,%d]", ErrInvalidRegion, offset, length)
	}
	switch kind {
	case Insert:
		if text == "" {
			return DirtyRegion{}, fmt.Errorf("%w: insert without text", ErrInvalidRegion)
		}
	case Remove:
		if text != "" {
			return DirtyRegion{}, fmt.Errorf("%w: remove with text", ErrInvalidRegion)
		}
	default:
		return DirtyRegion{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidRegion, kind)
	}
	return DirtyRegion{offset: offset, length: length, kind: kind, text: text}, nil
}

// InsertRegion creates an insert region whose length is the byte length of
// text. It panics if offset is negative or text is empty; use NewDirtyRegion
// for untrusted input.
func InsertRegion(offset int, text string) DirtyRegion {
	return mustDirtyRegion(NewDirtyRegion(offset, len(text), Insert, text))
}

// RemoveRegion creates a removal region. It panics if offset or length is
// negative; use NewDirtyRegion for untrusted input.
func RemoveRegion(offset, length int) DirtyRegion {
	return mustDirtyRegion(NewDirtyRegion(offset, length, Remove, ""))
}

func mustDirtyRegion(d DirtyRegion, err error) DirtyRegion {
	if err != nil {
		panic("mend: " + err.Error())
	}
	return d
}

// Offset returns the start of the edit.
func (d DirtyRegion) Offset() int { return d.offset }

// Length returns the number of bytes inserted or removed.
func (d DirtyRegion) Length() int { return d.length }

// Kind returns whether the edit inserted or removed text.
func (d DirtyRegion) Kind() Kind { return d.kind }

// Text returns the inserted text, or "" for removals.
func (d DirtyRegion) Text() string { return d.text }

// End returns the offset one past the edited span.
func (d DirtyRegion) End() int { return d.offset + d.length }

// Region returns the edited span.
func (d DirtyRegion) Region() Region {
	return Region{Offset: d.offset, Length: d.length}
}

// String returns a compact description used in traces and test failures.
func (d DirtyRegion) String() string {
	if d.kind == Insert {
		return fmt.Sprintf("%s[%d,%d]%q", d.kind, d.offset, d.length, d.text)
	}
	return fmt.Sprintf("%s[%d,%d]", d.kind, d.offset, d.length)
}

// merge coalesces next into d when they are of the same kind and touch.
// Inserts merge when next starts inside or at either edge of d. Removals
// merge when next ends at or covers d's start, which is how backspace and
// forward delete runs appear in post-edit coordinates.
func (d DirtyRegion) merge(next DirtyRegion) (DirtyRegion, bool) {
	if d.kind != next.kind {
		return DirtyRegion{}, false
	}

	switch d.kind {
	case Insert:
		if next.offset < d.offset || next.offset > d.End() {
			return DirtyRegion{}, false
		}
		// Splicing needs byte-accurate lengths.
		if len(d.text) != d.length || len(next.text) != next.length {
			return DirtyRegion{}, false
		}
		at := next.offset - d.offset
		return DirtyRegion{
			offset: d.offset,
			length: d.length + next.length,
			kind:   Insert,
			text:   d.text[:at] + next.text + d.text[at:],
		}, true

	case Remove:
		if next.offset > d.offset || next.End() < d.offset {
			return DirtyRegion{}, false
		}
		return DirtyRegion{
			offset: next.offset,
			length: d.length + next.length,
			kind:   Remove,
		}, true
	}

	return DirtyRegion{}, false
}
