package preset

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch loads path into r and reloads it whenever the file is written or
// replaced, until ctx is done. Reload errors are logged and the previous
// presets stay in place. Presets removed from the file are kept.
//
// The containing directory is watched so that editors which save by
// renaming a temporary file are picked up.
func (r *Registry) Watch(ctx context.Context, path string) error {
	if err := r.LoadFile(path); err != nil {
		return err
	}

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

	log := slogger().With("path", abs)
	log.Info("watching presets")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.LoadFile(abs); err != nil {
				log.Warn("preset reload failed", "err", err)
				continue
			}
			log.Info("presets reloaded", "count", r.Len())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("preset watcher error", "err", err)
		}
	}
}
