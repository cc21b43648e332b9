package jsonfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

const defaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the watched file settles.
type ReloadFunc func(ctx context.Context) error

// Watcher calls a ReloadFunc when a file changes on disk.
// It watches the parent directory so editors that replace the file
// by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc

	mu      sync.Mutex
	reloads int
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must be quiet before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, reload ReloadFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		reload:   reload,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reloads returns how many reloads have run.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Run blocks until ctx is cancelled. Reload errors are logged and the
// watcher keeps running.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	logger.Debug("watching %s for changes", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleFsEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			w.runReload(ctx)
		}
	}
}

// handleFsEvent reports whether the event touches the watched file.
func (w *Watcher) handleFsEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) runReload(ctx context.Context) {
	if err := w.reload(ctx); err != nil {
		logger.Warn("reload %s failed, keeping previous data: %v", w.path, err)
		return
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	logger.Info("reloaded %s", w.path)
}
