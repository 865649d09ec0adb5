package ingredient

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the staples vocabulary whenever its file changes, until ctx
// is cancelled. Editors replace files via write-then-rename, so events are
// debounced and the watch sits on the parent directory rather than the file
// itself.
func Watch(ctx context.Context, s *Staples, path string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("staples watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("staples watcher: stopped")
			return nil

		case <-reloadCh:
			if err := s.LoadFile(abs); err != nil {
				// Keep the previous vocabulary; a half-written file will
				// fire another event once the editor finishes.
				logger.Warn("staples watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("staples watcher: vocabulary reloaded", slog.Int("entries", len(s.Names())))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("staples watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
