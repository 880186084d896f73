package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events editors produce on save.
const debounce = 250 * time.Millisecond

// Watch reloads the page file when it changes and reopens the current page.
// It watches the parent directory because editors often replace the file.
// Watch blocks until ctx is cancelled.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating page file watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best effort on shutdown

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("watching page file", "path", target)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.reloadFromDisk()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("page file watcher error", "error", err)
		}
	}
}

func (s *Service) reloadFromDisk() {
	if err := s.Reload(); err != nil {
		s.logger.Warn("page file change rejected", "path", s.path, "error", err)
	}
}

// Reload reads the page file again and reopens the current page. On error
// the running configuration and page are left untouched.
func (s *Service) Reload() error {
	if err := s.Load(); err != nil {
		return err
	}
	s.Reopen()
	return nil
}
