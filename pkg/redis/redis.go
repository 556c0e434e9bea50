// Package redis provides a mend.Editor that keeps its document in a Redis
// key. External writes to the key are observed through keyspace
// notifications.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/zoobzio/mend"
)

// Editor binds a Redis key to a mend.TextDocument. It is dirty while the
// document differs from the value last read from or written to the key.
//
// Watch requires keyspace notifications:
//
//	CONFIG SET notify-keyspace-events KEA
type Editor struct {
	client *redis.Client
	key    string
	db     int
	doc    *mend.TextDocument

	mu    sync.Mutex
	saved string
}

// Option configures an Editor.
type Option func(*Editor)

// WithDB sets the database index used in keyspace channel names. Default: 0.
func WithDB(db int) Option {
	return func(e *Editor) {
		e.db = db
	}
}

// Open loads key into a new document. A missing key opens an empty document.
func Open(ctx context.Context, client *redis.Client, key string, opts ...Option) (*Editor, error) {
	val, err := client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	e := &Editor{
		client: client,
		key:    key,
		doc:    mend.NewTextDocument(val),
		saved:  val,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Document returns the document holding the key's value.
func (e *Editor) Document() *mend.TextDocument {
	return e.doc
}

// IsDirty reports whether the document has unsaved edits.
func (e *Editor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Contents() != e.saved
}

// Save writes the document to the key.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	contents := e.doc.Contents()
	if err := e.client.Set(ctx, e.key, contents, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %s: %w", e.key, err)
	}
	e.saved = contents
	return nil
}

// Watch reloads the document whenever another client sets the key, and
// emits the reloaded value. Writes made by Save are not reported.
func (e *Editor) Watch(ctx context.Context) (<-chan string, error) {
	channel := fmt.Sprintf("__keyspace@%d__:%s", e.db, e.key)
	pubsub := e.client.Subscribe(ctx, channel)

	// Verify subscription worked
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan string)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				// Only react to set operations
				switch msg.Payload {
				case "set", "setex", "psetex", "setnx", "append", "setrange":
				default:
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
			}
		}
	}()

	return out, nil
}

func (e *Editor) reload(ctx context.Context) (string, bool) {
	e.mu.Lock()
	val, err := e.client.Get(ctx, e.key).Result()
	if err != nil || val == e.saved {
		e.mu.Unlock()
		return "", false
	}
	e.saved = val
	e.mu.Unlock()

	if err := e.doc.SetContents(ctx, val); err != nil {
		return "", false
	}
	return val, true
}

var _ mend.Editor = (*Editor)(nil)
