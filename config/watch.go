package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/netresearch/chronos/core"
)

// Watcher watches a config file for changes, re-parses and re-validates it,
// and logs the outcome. It never applies a reload itself — per spec.md §9's
// decision not to auto-restart a running scheduler from a file-system event,
// the operator decides whether/when to restart or call facade mutation
// operations in response to a logged reload.
type Watcher struct {
	path     string
	logger   core.Logger
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu         sync.Mutex
	lastReload time.Time
}

// NewWatcher creates a Watcher for path. debounce of zero uses a 1s default.
func NewWatcher(path string, logger core.Logger, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = time.Second
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	return &Watcher{path: abs, logger: logger, fsw: fsw, debounce: debounce}, nil
}

// Run watches the file until ctx is canceled, validating on every Write or
// Create event and logging the result. It blocks; call it from a goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fsw.Add(w.path); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	defer w.fsw.Close()

	w.logger.Noticef("watching config file %s for changes", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.handleChange(event)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warningf("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleChange(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Since(w.lastReload) < w.debounce {
		return
	}
	w.lastReload = time.Now()

	if _, err := Load(w.path); err != nil {
		w.logger.Errorf("config file %s changed but failed to load/validate: %v", event.Name, err)
		return
	}
	w.logger.Noticef("config file %s changed and re-validated successfully; restart or apply manually to pick up changes", event.Name)
}

// Stop closes the underlying file watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}
