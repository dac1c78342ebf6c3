// Package watch runs a function whenever a file changes.
//
// The parent directory is watched rather than the file itself, so that
// editors which replace files by renaming keep triggering events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/foldsort/pkg/log"
)

// DefaultDebounce is the delay between the last event and running the
// function.
const DefaultDebounce = 100 * time.Millisecond

// Func handles a change to the watched file.
type Func func(ctx context.Context, path string) error

// Watcher runs a [Func] when its file changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	fn       Func
	onError  func(error)
	path     string
	debounce time.Duration
}

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDebounce sets the delay between the last event and the function call.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithErrorHandler sets a function that receives errors from the watched
// [Func] and from the file system watcher. Errors are logged by default.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a [Watcher] for path.
func New(path string, fn Func, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	err = fsw.Add(filepath.Dir(absPath))
	if err != nil {
		_ = fsw.Close()

		return nil, fmt.Errorf("add path to watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		fn:       fn,
		path:     absPath,
		debounce: DefaultDebounce,
		onError: func(err error) {
			slog.Error("watch", slog.Any("err", err))
		},
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.WithContext(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if evt.Name != w.path {
				continue
			}

			// Ignore events that are not related to file content changes.
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}

			logger.DebugContext(ctx, "file changed", slog.String("event", evt.String()))

			timer.Reset(w.debounce)

		case <-timer.C:
			err := w.fn(ctx, w.path)
			if err != nil {
				w.onError(err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			w.onError(fmt.Errorf("watcher: %w", err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}
