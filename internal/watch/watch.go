package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period required before the handler fires.
const DefaultDebounce = 500 * time.Millisecond

// Handler is invoked with the watched path after a debounced change.
type Handler func(path string)

// Watcher watches one file for writes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	handler  Handler

	mu      sync.Mutex
	lastHit time.Time
	armed   bool

	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before the handler fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher for path. The file itself may not exist yet, but
// its directory must. The handler is required.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: handler is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		debounce: DefaultDebounce,
		handler:  handler,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start watches the file's directory and runs the event loop until the
// context is cancelled or Stop is called. Start does not block.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	slog.Debug("watching", "path", w.path, "debounce", w.debounce)

	go w.loop(ctx)
	return nil
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.fsw.Close(); err != nil {
			slog.Error("closing watcher", "error", err)
		}
	})
}

func (w *Watcher) loop(ctx context.Context) {
	// The ticker polls well inside the debounce window so a quiet
	// period is never overshot by much.
	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("watch error", "error", err)

		case <-ticker.C:
			w.fireIfQuiet()
		}
	}
}

// handleEvent arms the debounce timer when the watched file is touched.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	slog.Debug("file changed", "path", w.path, "op", event.Op.String())

	w.mu.Lock()
	w.lastHit = time.Now()
	w.armed = true
	w.mu.Unlock()
}

// fireIfQuiet invokes the handler once the debounce window has passed
// without further writes.
func (w *Watcher) fireIfQuiet() {
	w.mu.Lock()
	ready := w.armed && time.Since(w.lastHit) >= w.debounce
	if ready {
		w.armed = false
	}
	w.mu.Unlock()

	if ready {
		w.handler(w.path)
	}
}
