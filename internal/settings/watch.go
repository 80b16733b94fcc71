package settings

import (
	"context"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/podexhq/podex/internal/debounce"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the settings file when another process rewrites it and hands
// the fresh snapshot to onChange. The store's own saves are filtered out by
// comparing the reloaded document against the in-memory state. Watching stops
// when ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: editors replace files by rename and
	// the settings file may not exist yet.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	deb := debounce.New(watchDebounce)
	go func() {
		defer watcher.Close()
		defer deb.Cancel()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				deb.Schedule(func() {
					before := s.Get()
					s.Load()
					after := s.Get()
					if reflect.DeepEqual(before, after) {
						return
					}
					s.logger.Debug("settings reloaded from disk", zap.String("path", s.path))
					onChange(after)
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
