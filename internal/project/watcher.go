package project

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event signals that the watched project file changed on disk.
type Event struct {
	Path string
}

// Watcher monitors one project file for external modification using
// fsnotify. The parent directory is watched rather than the file
// itself, because atomic saves replace the inode and would silently
// drop a file-level watch.
type Watcher struct {
	path    string
	Events  <-chan Event // Read-only external channel
	events  chan Event   // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
	started bool
	stop    sync.Once
}

// NewWatcher creates a watcher for the given project file.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 4)
	w := &Watcher{
		path:    path,
		Events:  ch,
		events:  ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	return w, nil
}

// Start begins watching the project file's directory.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the events channel. Safe to call more
// than once, and on a watcher that never started.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done // Wait for loop to exit
		}
		close(w.events)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: editors truncate then write, and atomic saves show up
	// as create+rename bursts. Only the settled state matters.
	const debounce = 100 * time.Millisecond
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	var pendingAt time.Time
	pending := false

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = true
				pendingAt = time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(pendingAt) >= debounce {
				pending = false
				w.emit()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// emit sends a change event without blocking. A full buffer means a
// reload is already queued; the signals coalesce.
func (w *Watcher) emit() {
	select {
	case w.events <- Event{Path: w.path}:
	default:
	}
}
