package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes to any of paths until ctx is cancelled. Bursts of
// writes are coalesced into one notification after a short quiet period.
// Directories that do not exist are skipped.
func Watch(ctx context.Context, paths []string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		p = filepath.Clean(p)
		files[p] = struct{}{}
		dir := filepath.Dir(p)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			slog.Debug("Not watching missing config directory", "dir", dir)
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()

		const quiet = 100 * time.Millisecond
		timer := time.NewTimer(quiet)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Config watcher error", "error", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, ok := files[filepath.Clean(evt.Name)]; !ok {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				timer.Reset(quiet)
			case <-timer.C:
				select {
				case changes <- struct{}{}:
				default:
					// A notification is already pending.
				}
			}
		}
	}()
	return changes, nil
}
