package hotreload

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event is a change to one of the watched files.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports changes to individual files. It watches each file's parent
// directory so that editors which replace files by rename are still seen.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *zap.Logger
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu       sync.RWMutex
	files    map[string]struct{}
	dirs     map[string]int
	watching bool
	stopped  bool
}

// NewWatcher creates a watcher. Nothing is reported until Start.
func NewWatcher(logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		fs:     fsw,
		logger: logger,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		files:  make(map[string]struct{}),
		dirs:   make(map[string]int),
	}, nil
}

// Add starts reporting changes to the file at path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}

	w.logger.Debug("Added watch path", zap.String("path", abs))
	return nil
}

// Remove stops reporting changes to the file at path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return fmt.Errorf("path %s is not watched", abs)
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if err := w.fs.Remove(dir); err != nil {
			return fmt.Errorf("failed to unwatch %s: %w", dir, err)
		}
	}

	w.logger.Debug("Removed watch path", zap.String("path", abs))
	return nil
}

// Paths returns the watched files.
func (w *Watcher) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	return paths
}

// Events is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins forwarding events.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching || w.stopped {
		return
	}
	w.watching = true

	w.wg.Add(1)
	go w.watch()
	w.logger.Info("File watcher started")
}

// Stop releases the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasWatching := w.watching
	w.watching = false
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	close(w.events)
	if err := w.fs.Close(); err != nil {
		w.logger.Error("Failed to close file watcher", zap.Error(err))
	}
	if wasWatching {
		w.logger.Info("File watcher stopped")
	}
}

// IsWatching reports whether Start has been called and Stop has not.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("File system event",
				zap.String("path", ev.Name),
				zap.String("operation", ev.Op.String()))
			select {
			case w.events <- Event{Path: ev.Name, Op: ev.Op}:
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || isTemporary(ev.Name) {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}

// isTemporary matches editor swap and backup files.
func isTemporary(path string) bool {
	base := filepath.Base(path)
	switch filepath.Ext(base) {
	case ".tmp", ".swp", ".swx":
		return true
	}
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}
