package docsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher feeds filesystem events for test folders into a Syncer
type Watcher struct {
	syncer   *Syncer
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.Mutex
	pending  map[string]pendingEvent
	onChange func(path string)
}

type pendingEvent struct {
	removed bool
	at      time.Time
}

// NewWatcher creates a Watcher. Events for one path arriving within
// debounce of each other are handled once.
func NewWatcher(syncer *Syncer, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		syncer:   syncer,
		watcher:  fw,
		logger:   logger.Named("watcher"),
		debounce: debounce,
		pending:  make(map[string]pendingEvent),
	}, nil
}

// OnChange registers a callback invoked after a path was synced
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Add watches the workspace root and every test folder below it
func (w *Watcher) Add(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	folder := w.syncer.config.TestFolder
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if d.Name() == folder {
			w.logger.Debug("watching", zap.String("dir", path))
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.debounce / 2
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(true)
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))

		case <-ticker.C:
			w.flush(false)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addDir(event.Name)
			return
		}
	}

	var removed bool
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		removed = true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		removed = false
	default:
		return
	}

	if _, ok := w.syncer.Qualifies(Document{URI: FileURI(event.Name)}); !ok {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = pendingEvent{removed: removed, at: time.Now()}
	w.mu.Unlock()
}

// addDir watches the test folders inside a directory that appeared after
// Add, and queues the test files it already holds. Files moved or copied in
// with their folder produce no events of their own.
func (w *Watcher) addDir(dir string) {
	folder := w.syncer.config.TestFolder
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if d.Name() == folder {
				w.logger.Debug("watching", zap.String("dir", path))
				return w.watcher.Add(path)
			}
			return nil
		}
		if _, ok := w.syncer.Qualifies(Document{URI: FileURI(path)}); ok {
			w.mu.Lock()
			w.pending[path] = pendingEvent{at: time.Now()}
			w.mu.Unlock()
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("failed to watch new folder", zap.String("dir", dir), zap.Error(err))
	}
}

func (w *Watcher) flush(all bool) {
	w.mu.Lock()
	var ready []string
	events := make(map[string]pendingEvent)
	for path, ev := range w.pending {
		if all || time.Since(ev.at) >= w.debounce {
			ready = append(ready, path)
			events[path] = ev
			delete(w.pending, path)
		}
	}
	onChange := w.onChange
	w.mu.Unlock()

	for _, path := range ready {
		w.sync(path, events[path].removed)
		if onChange != nil {
			onChange(path)
		}
	}
}

func (w *Watcher) sync(path string, removed bool) {
	if !removed {
		doc, err := ReadDocument(path)
		if err == nil {
			w.syncer.Update(doc)
			return
		}
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("failed to read changed file", zap.String("file", path), zap.Error(err))
			return
		}
	}
	w.syncer.Delete(Document{URI: FileURI(path)})
}
