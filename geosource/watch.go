package geosource

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchFile calls onChange whenever path is written, created or replaced. The
// parent directory is watched because editors often save by renaming a
// temporary file over the original. Call the returned stop function to end
// the watch.
func WatchFile(path string, logger *zap.Logger, onChange func()) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", target, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					logger.Info("Geometry file changed",
						zap.String("file", event.Name),
						zap.String("operation", event.Op.String()),
					)
					onChange()
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("File watcher error", zap.Error(err))
			}
		}
	}()

	logger.Info("Watching geometry file", zap.String("file", target))
	return watcher.Close, nil
}

// Watch invalidates the snapshot whenever the file at path changes.
func (s *SnapshotStore) Watch(path string) (stop func() error, err error) {
	return WatchFile(path, s.logger, s.Invalidate)
}
