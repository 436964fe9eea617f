// Package watch reloads site content when files under a directory change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reloading.
const DefaultDebounce = 300 * time.Millisecond

// ReloadFunc is called after a debounced change. Calls never overlap.
type ReloadFunc func(ctx context.Context) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithClock replaces the clock used for debouncing.
func WithClock(clock clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher watches a directory tree and calls a ReloadFunc on change.
type Watcher struct {
	root     string
	reload   ReloadFunc
	debounce time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	fsw     *fsnotify.Watcher
	pending chan struct{}

	mu    sync.Mutex
	timer clockwork.Timer
}

// New creates a watcher over root. Every directory below root is added
// up front; directories created later are picked up as they appear.
func New(root string, reload ReloadFunc, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		root:     root,
		reload:   reload,
		debounce: DefaultDebounce,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		pending:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot watch content directory").
			WithContext("dir", root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.ValidationError("watch root is not a directory").
			WithContext("dir", root).
			Build()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w.fsw = fsw
	w.addRecursive(root)
	return w, nil
}

// Run processes events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	w.logger.Info("Watching content", logfields.Path(w.root))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case <-w.pending:
			w.logger.Info("Content change detected; reloading")
			if err := w.reload(ctx); err != nil {
				w.logger.Warn("Reload failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if Ignored(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

// trigger restarts the debounce timer.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = w.clock.AfterFunc(w.debounce, func() {
		select {
		case w.pending <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("Error closing file watcher", logfields.Error(err))
	}
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && Ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// Ignored reports whether a change to path should not trigger a reload:
// hidden files, editor swap and backup files, and OS metadata files.
func Ignored(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
