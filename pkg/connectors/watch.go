package connectors

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EventOp describes what happened to a watched item.
type EventOp string

const (
	// OpWrite means an item was added or updated on disk.
	OpWrite EventOp = "write"

	// OpRemove means an item was deleted from disk.
	OpRemove EventOp = "remove"
)

// Event reports an external change to an item of a file-backed database,
// e.g. another process writing to the same directory.
type Event struct {
	Library Library
	Name    string
	Op      EventOp
}

// Watch reports external changes to the database directory on the returned
// channel until ctx is cancelled. Changes to metadata sidecar files are
// ignored.
func (f *File) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, lib := range Libraries() {
		if err := watcher.Add(f.libraryDir(lib)); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s library: %w", lib, err)
		}
	}

	events := make(chan Event)
	go f.processEvents(ctx, watcher, events)
	return events, nil
}

// processEvents translates file system events into item events.
func (f *File) processEvents(ctx context.Context, watcher *fsnotify.Watcher, events chan<- Event) {
	defer close(events)
	defer func() { _ = watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			ie, ok := f.itemEvent(ev)
			if !ok {
				continue
			}
			select {
			case events <- ie:
			case <-ctx.Done():
				return
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// itemEvent maps a raw file system event onto the item it belongs to.
func (f *File) itemEvent(ev fsnotify.Event) (Event, bool) {
	name, ok := itemName(filepath.Base(ev.Name))
	if !ok {
		return Event{}, false
	}
	lib := Library(filepath.Base(filepath.Dir(ev.Name)))
	if !lib.Valid() {
		return Event{}, false
	}
	switch {
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return Event{Library: lib, Name: name, Op: OpWrite}, true
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return Event{Library: lib, Name: name, Op: OpRemove}, true
	}
	return Event{}, false
}
