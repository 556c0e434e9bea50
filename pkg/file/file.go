// Package file provides a file-backed mend.Editor.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/mend"
)

// Editor binds a file on disk to a mend.TextDocument. It is dirty while the
// document differs from the contents last read from or written to disk.
type Editor struct {
	path string
	mode os.FileMode
	doc  *mend.TextDocument

	mu    sync.Mutex
	saved string
}

// Open reads path into a new document.
func Open(path string) (*Editor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Editor{
		path:  path,
		mode:  info.Mode().Perm(),
		doc:   mend.NewTextDocument(string(data)),
		saved: string(data),
	}, nil
}

// Path returns the file path.
func (e *Editor) Path() string {
	return e.path
}

// Document returns the document holding the file contents.
func (e *Editor) Document() *mend.TextDocument {
	return e.doc
}

// IsDirty reports whether the document has unsaved edits.
func (e *Editor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Contents() != e.saved
}

// Save writes the document to disk.
func (e *Editor) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	contents := e.doc.Contents()
	if err := os.WriteFile(e.path, []byte(contents), e.mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.path, err)
	}
	e.saved = contents
	return nil
}

// Watch reloads the document whenever the file is modified by another
// process, and emits the reloaded contents. Writes made by Save are not
// reported. The directory is watched rather than the file so that editors
// replacing the file by rename are picked up.
//
// The channel is closed when ctx is canceled.
func (e *Editor) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(e.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", e.path, err)
	}

	target := filepath.Clean(e.path)
	out := make(chan string)

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}

				// Only reload on write or create events
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				contents, changed := e.reload(ctx)
				if !changed {
					continue
				}

				select {
				case out <- contents:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}

// reload replaces the document with the file contents when they differ from
// what was last saved. The file is read under e.mu so a concurrent Save is
// never observed half written.
func (e *Editor) reload(ctx context.Context) (string, bool) {
	e.mu.Lock()
	data, err := os.ReadFile(e.path)
	if err != nil {
		e.mu.Unlock()
		return "", false
	}
	contents := string(data)
	if contents == e.saved {
		e.mu.Unlock()
		return "", false
	}
	e.saved = contents
	e.mu.Unlock()

	if e.doc.Contents() == contents {
		return contents, true
	}
	if err := e.doc.SetContents(ctx, contents); err != nil {
		return "", false
	}
	return contents, true
}

var _ mend.Editor = (*Editor)(nil)
