package store

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads a Store when its backing file is changed by another
// process. The directory is watched rather than the file because saves
// replace the file by rename.
type Watcher struct {
	watcher  *fsnotify.Watcher
	store    *Store
	path     string
	onChange func()
	logger   *slog.Logger

	mu       sync.Mutex
	debounce *time.Timer
	done     chan struct{}
}

// NewWatcher starts watching the store's backing file. onChange runs after
// every reload that replaced the index.
func NewWatcher(s *Store, onChange func()) (*Watcher, error) {
	absPath, err := filepath.Abs(s.Path())
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		store:    s,
		path:     absPath,
		onChange: onChange,
		logger:   s.logger,
		done:     make(chan struct{}),
	}

	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			// Debounce rapid events
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(watchDebounce, w.reload)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	changed, err := w.store.Reload()
	if err != nil {
		w.logger.Warn("reload failed", "path", w.path, "error", err)
	}
	if changed {
		w.logger.Info("events file changed on disk", "path", w.path)
		if w.onChange != nil {
			w.onChange()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
