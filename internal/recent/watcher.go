package recent

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long the watcher waits after the last event before
// reporting a change. GTK rewrites the file via a temp file and rename, which
// produces a burst of events.
const DefaultSettle = 150 * time.Millisecond

// Watcher reports changes to the bookmark file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	settle   time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	timer    *time.Timer
	onChange func()
	done     chan struct{}
}

// NewWatcher creates a watcher for the bookmark file at filePath.
func NewWatcher(filePath string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		filePath: filePath,
		settle:   DefaultSettle,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the function invoked after the file changes.
// It runs on the watcher's goroutine.
func (w *Watcher) SetChangeCallback(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// SetSettle overrides the debounce delay.
func (w *Watcher) SetSettle(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settle = d
}

// Start begins watching. The parent directory is watched so the file may be
// created or replaced after startup.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.filePath)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	go w.watch()
	w.logger.Debug("recent items watcher started", "path", w.filePath)
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.filePath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.trigger()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("recent items watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// trigger restarts the settle timer.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		fn := w.onChange
		running := w.running
		w.mu.Unlock()

		if running && fn != nil {
			w.logger.Debug("recent items changed", "path", w.filePath)
			fn()
		}
	})
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	close(w.done)
	return w.watcher.Close()
}
