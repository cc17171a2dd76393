// Package watch re-runs the reconciler when the live folder changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"winrecent/internal/recent"
)

// DefaultDebounce is the quiet period after the last change before a scan.
const DefaultDebounce = 2 * time.Second

// ScanFunc runs one reconciliation pass.
type ScanFunc func() error

// Config describes what to watch.
type Config struct {
	Dir      string        // live folder, watched without descending
	Ext      string        // artifact extension, compared case-insensitively
	Debounce time.Duration // zero means DefaultDebounce
}

// Watcher coalesces bursts of folder events into single scans. Scans run on
// the goroutine that called Run, one at a time.
type Watcher struct {
	dir      string
	ext      string
	debounce time.Duration
	scan     ScanFunc
	logger   recent.Logger
	watcher  *fsnotify.Watcher
}

// New creates a Watcher. Call Run to start it.
func New(cfg Config, scan ScanFunc, logger recent.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = recent.NewNopLogger()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		dir:      cfg.Dir,
		ext:      cfg.Ext,
		debounce: cfg.Debounce,
		scan:     scan,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Run watches until ctx is cancelled or the watcher fails, then releases
// the underlying watcher. A cancelled context is not an error.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Info("watching live folder", "dir", w.dir, "debounce", w.debounce.String())

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.Relevant(event) {
				continue
			}
			w.logger.Debug("live folder changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.scan(); err != nil {
				w.logger.Error("scan after change failed", "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close releases the underlying watcher. Run must not be called afterwards.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Relevant reports whether event concerns an artifact appearing or changing.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.ext == "" {
		return true
	}
	return strings.EqualFold(filepath.Ext(event.Name), w.ext)
}
