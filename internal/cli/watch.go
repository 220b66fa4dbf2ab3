package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/jirascope/pkg/config"
	"github.com/matzehuels/jirascope/pkg/errors"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 300 * time.Millisecond

// watchPath returns the snapshot file dot --watch follows.
func watchPath(cfg config.Config, path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if cfg.Source.Kind == config.SourceMongo {
		return "", errors.New(errors.ErrCodeUnsupported, "--watch needs a snapshot file, source is %q", cfg.Source.Kind)
	}
	if cfg.Source.Path == "" {
		return "", errNoSnapshot
	}
	return cfg.Source.Path, nil
}

// watchFile calls fn each time path is written or replaced, at most once
// per debounce window, until ctx is done. Errors from fn are logged and
// watching continues; the snapshot may be mid-edit.
func watchFile(ctx context.Context, path string, debounce time.Duration, fn func(context.Context) error) error {
	logger := loggerFromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "resolve %s", path)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create watcher")
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "watch %s", filepath.Dir(abs))
	}

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("snapshot changed", "path", path, "op", ev.Op.String())
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-fire:
			if err := fn(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Error("re-render failed", "error", err)
			}
		}
	}
}
