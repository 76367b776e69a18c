package spool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one spooled run record file.
type Handler func(ctx context.Context, path string) error

// WatcherConfig contains configuration for the spool watcher.
type WatcherConfig struct {
	// Dir is the spool directory to watch for run record files.
	Dir string

	// Debounce is how long a file must stay quiet after its last write
	// event before it is handed to the handler. Writers that stream a
	// record in several chunks are ingested once, after the last chunk.
	Debounce time.Duration
}

// Watcher watches a spool directory for dropped run record JSON files and
// hands each one to a handler once it has settled. Files already present
// when watching starts are swept first, so records spooled while the
// watcher was down are not lost.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	config  WatcherConfig

	mu      sync.Mutex
	running bool
	timers  map[string]*time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a spool watcher. The directory must exist.
func NewWatcher(cfg WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("spool directory cannot be empty")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default().With("component", "spool")
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("spool directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spool path %q is not a directory", cfg.Dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fsw,
		logger:  logger,
		config:  cfg,
		timers:  make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Watch blocks, handing settled run record files to the handler, until the
// context is cancelled or Stop is called. Handler errors are logged; the
// watch loop keeps going.
func (w *Watcher) Watch(ctx context.Context, handle Handler) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("spool watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		for path, t := range w.timers {
			t.Stop()
			delete(w.timers, path)
		}
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch spool directory: %w", err)
	}

	w.logger.Info("spool watcher started",
		"dir", w.config.Dir,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	w.sweepExisting(ctx, handle)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("spool watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("spool watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("spool watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("spool file event", "path", event.Name, "op", event.Op.String())
			w.scheduleIngest(ctx, event.Name, handle)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("spool watcher errors channel closed")
			}
			w.logger.Error("spool watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close spool watcher: %w", err)
	}
	return nil
}

// sweepExisting ingests records already sitting in the spool directory.
func (w *Watcher) sweepExisting(ctx context.Context, handle Handler) {
	matches, err := filepath.Glob(filepath.Join(w.config.Dir, "*.json"))
	if err != nil {
		w.logger.Error("spool sweep failed", "error", err)
		return
	}
	for _, path := range matches {
		if strings.HasPrefix(filepath.Base(path), ".") {
			continue
		}
		w.scheduleIngest(ctx, path, handle)
	}
}

// scheduleIngest arms (or re-arms) the per-file debounce timer.
func (w *Watcher) scheduleIngest(ctx context.Context, path string, handle Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	if t, ok := w.timers[path]; ok {
		t.Reset(w.config.Debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); err != nil {
			// Removed or renamed while the timer was pending.
			return
		}
		if err := handle(ctx, path); err != nil {
			w.logger.Error("spool ingest failed", "path", path, "error", err)
		}
	})
}

// shouldProcessEvent filters to settled-looking JSON record writes.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.ToLower(filepath.Ext(base)) == ".json"
}
