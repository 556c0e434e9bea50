package mend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrOutOfRange is returned when an edit falls outside the document.
var ErrOutOfRange = errors.New("edit out of range")

// ChangeListener receives document change events.
type ChangeListener func(ctx context.Context, event DocumentChangeEvent)

// TextDocument is an in-memory document. It implements both Document and
// DocumentHandle, and publishes a DocumentChangeEvent to its listeners after
// every edit.
//
// Typical wiring:
//
//	doc := mend.NewTextDocument("")
//	r.SetDocumentHandle(doc)
//	doc.OnChange(r.OnDocumentChange)
type TextDocument struct {
	id string

	mu        sync.RWMutex
	text      string
	listeners map[uint64]ChangeListener
	nextID    uint64
}

// NewTextDocument creates a document holding text.
func NewTextDocument(text string) *TextDocument {
	return &TextDocument{
		id:        uuid.NewString(),
		text:      text,
		listeners: make(map[uint64]ChangeListener),
	}
}

// ID returns the document identity.
func (d *TextDocument) ID() string {
	return d.id
}

// Contents returns the current text.
func (d *TextDocument) Contents() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Length returns the byte length of the current text.
func (d *TextDocument) Length() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Document returns d.
func (d *TextDocument) Document() Document {
	return d
}

// IsSameAs reports whether doc has the same identity as d.
func (d *TextDocument) IsSameAs(doc Document) bool {
	return doc != nil && doc.ID() == d.id
}

// OnChange registers fn to receive change events and returns a function that
// removes the registration. Listeners run synchronously on the editing
// goroutine, in no particular order.
func (d *TextDocument) OnChange(fn ChangeListener) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}

// Insert adds text at offset.
func (d *TextDocument) Insert(ctx context.Context, offset int, text string) error {
	return d.Replace(ctx, offset, 0, text)
}

// Remove deletes length bytes at offset.
func (d *TextDocument) Remove(ctx context.Context, offset, length int) error {
	return d.Replace(ctx, offset, length, "")
}

// SetContents replaces the whole text.
func (d *TextDocument) SetContents(ctx context.Context, text string) error {
	return d.Replace(ctx, 0, d.Length(), text)
}

// Replace removes removeCount bytes at offset and inserts text in their place.
// A no-op edit publishes nothing.
func (d *TextDocument) Replace(ctx context.Context, offset, removeCount int, text string) error {
	d.mu.Lock()
	if offset < 0 || removeCount < 0 || offset+removeCount > len(d.text) {
		size := len(d.text)
		d.mu.Unlock()
		return fmt.Errorf("%w: [%d,%d] in document of length %d", ErrOutOfRange, offset, removeCount, size)
	}
	if removeCount == 0 && text == "" {
		d.mu.Unlock()
		return nil
	}
	d.text = d.text[:offset] + text + d.text[offset+removeCount:]
	listeners := make([]ChangeListener, 0, len(d.listeners))
	for _, fn := range d.listeners {
		listeners = append(listeners, fn)
	}
	d.mu.Unlock()

	event := DocumentChangeEvent{
		Offset:          offset,
		Length:          len(text),
		RemoveCharCount: removeCount,
		Text:            text,
		Document:        d,
	}
	for _, fn := range listeners {
		fn(ctx, event)
	}
	return nil
}

var (
	_ Document       = (*TextDocument)(nil)
	_ DocumentHandle = (*TextDocument)(nil)
)
