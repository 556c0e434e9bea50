package mend

// Document is the read view of a text document handed to the Reconciler and
// its strategies.
type Document interface {
	// ID identifies the document across handles and change events.
	ID() string

	// Contents returns the current text.
	Contents() string

	// Length returns the byte length of the current text.
	Length() int
}

// DocumentHandle references the document a Reconciler is bound to without
// owning it.
type DocumentHandle interface {
	// Document returns the referenced document.
	Document() Document

	// IsSameAs reports whether doc is the referenced document.
	IsSameAs(doc Document) bool
}

// DocumentChangeEvent describes one mutation of a document.
type DocumentChangeEvent struct {
	// Offset is where the change starts.
	Offset int

	// Length is the byte length of the inserted text.
	Length int

	// RemoveCharCount is the number of bytes removed at Offset.
	RemoveCharCount int

	// Text is the inserted text, empty for pure removals.
	Text string

	// Document is the document that changed.
	Document Document
}

// dirtyRegions classifies a change into the regions it produces. A replace
// yields the removal first, then the insertion, both at the same offset.
// An event with a negative span yields ErrInvalidRegion and no regions.
func (e DocumentChangeEvent) dirtyRegions() ([]DirtyRegion, error) {
	length := e.Length
	if length == 0 {
		length = len(e.Text)
	}

	var regions []DirtyRegion
	if e.RemoveCharCount != 0 || e.Text == "" {
		remove, err := NewDirtyRegion(e.Offset, e.RemoveCharCount, Remove, "")
		if err != nil {
			return nil, err
		}
		regions = append(regions, remove)
	}
	if e.Text != "" {
		insert, err := NewDirtyRegion(e.Offset, length, Insert, e.Text)
		if err != nil {
			return nil, err
		}
		regions = append(regions, insert)
	}
	return regions, nil
}

// kind names the change for event fields.
func (e DocumentChangeEvent) kind() string {
	switch {
	case e.Text == "":
		return "remove"
	case e.RemoveCharCount == 0:
		return "insert"
	default:
		return "replace"
	}
}
