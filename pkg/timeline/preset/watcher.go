package preset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a changed preset file is
// reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Watcher keeps a library in sync with a preset file. Readers call Current,
// which never blocks on a reload. A file that fails to load leaves the
// previous library in place.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce *Debouncer
	watcher  *fsnotify.Watcher
	current  atomic.Pointer[Library]
	onChange func(*Library)
	onReload func(error)

	mu      sync.Mutex
	running bool
}

// NewWatcher loads path once and prepares to watch it. The directory is
// watched rather than the file so editors that replace the file on save are
// still seen.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve preset path %q: %w", path, err)
	}
	lib, err := LoadFile(abs)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		logger:   logger.With("component", "timeline.preset"),
		debounce: NewDebouncer(debounce),
		watcher:  fsw,
	}
	w.current.Store(lib)
	return w, nil
}

// Current returns the most recently loaded library.
func (w *Watcher) Current() *Library {
	return w.current.Load()
}

// OnChange registers fn to be called after every successful reload.
func (w *Watcher) OnChange(fn func(*Library)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// OnReload registers fn to be called with the result of every reload
// triggered by a file event.
func (w *Watcher) OnReload(fn func(error)) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

// Reload reads the file again and swaps in the new library.
func (w *Watcher) Reload() error {
	lib, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	w.current.Store(lib)

	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn(lib)
	}
	return nil
}

// Run watches the file until ctx is cancelled. It blocks.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		_ = w.watcher.Close()
	}()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	w.logger.Info("Preset watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Preset watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Preset file event", "path", event.Name, "op", event.Op.String())

			w.debounce.Trigger(w.reloadFromEvent)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Preset watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadFromEvent() {
	err := w.Reload()
	if err != nil {
		w.logger.Error("Preset reload failed, keeping previous presets", "error", err)
	} else {
		w.logger.Info("Presets reloaded", "templates", len(w.Current().templates))
	}

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

// Debouncer collapses a burst of triggers into one callback after a quiet
// period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback, replacing any callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

// Close releases the underlying fsnotify watcher. Run closes it on return,
// so Close is only needed when Run is never started.
func (w *Watcher) Close() error {
	w.debounce.Stop()
	return w.watcher.Close()
}
