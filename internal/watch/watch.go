// Package watch re-runs a task whenever a file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/logger"
)

// DefaultDebounce is used when Watch gets a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

// Watch calls fn after path is written, created or renamed into place, once
// the file has been quiet for debounce. Calls never overlap: changes seen
// while fn runs schedule one more call afterwards. Errors from fn are logged
// and watching continues. Watch returns nil when ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace files by renaming, which drops a watch on the file
	// itself, so the directory is watched instead.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	log := logger.Named("watch").With(zap.String("path", target))
	log.Info("watching for changes", zap.Duration("debounce", debounce))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := fn(ctx); err != nil {
				log.Warn("re-run failed", zap.Error(err))
			}
		}
	}
}
