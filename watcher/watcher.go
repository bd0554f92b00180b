// Package watcher reports changes to a configuration directory, debounced,
// so that a stale container cache can be cleared while an application is
// being configured.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a configuration directory and sends a notification after
// layer files stop changing for the debounce interval.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	logger    *zap.Logger
	onChange  chan struct{}
	done      chan struct{}
	exited    chan struct{}
	started   bool
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Dir         string
	DebounceDur time.Duration
	Logger      *zap.Logger
}

// DefaultConfig watches dir with a 250ms debounce.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		DebounceDur: 250 * time.Millisecond,
	}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		debounce:  cfg.DebounceDur,
		logger:    logger,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}, nil
}

// Start begins watching the directory.
// Returns a channel that receives a signal when layer files change.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	w.started = true
	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher, waits for its goroutine and releases
// resources. Calling Stop more than once is a no-op.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		if w.started {
			<-w.exited
		}
	})
	return err
}

// Watch starts the watcher and calls fn after every debounced change until
// ctx is done.
func (w *Watcher) Watch(ctx context.Context, fn func()) error {
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			fn()
		}
	}
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	defer close(w.exited)

	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !isLayerEvent(event) {
				continue
			}
			w.logger.Debug("configuration changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.String("dir", w.dir), zap.Error(err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isLayerEvent reports whether event touches a YAML file in a way that can
// change the configuration.
func isLayerEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
