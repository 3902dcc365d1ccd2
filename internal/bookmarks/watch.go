package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadLag collapses the burst of events editors produce for a single save.
const reloadLag = 100 * time.Millisecond

// Watch reloads the store whenever its file changes, until ctx is done. The directory is
// watched rather than the file so that editors replacing the file are noticed.
// onReload, if not nil, is called after each successful reload.
func (s *Store) Watch(ctx context.Context, onReload func()) error {
	if s.path == "" {
		return errors.New("bookmarks: store has no backing file")
	}
	target, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolving bookmarks path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(reloadLag)
			}
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				s.log.Warn("bookmarks reload failed, keeping previous", zap.Error(err))
				continue
			}
			if onReload != nil {
				onReload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("bookmarks watcher error", zap.Error(err))
		}
	}
}
