package pipeline

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/observability"
)

// ensureDirs creates the output directories. Existing directories are fine.
func ensureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
		}
	}
	return nil
}

// writeAll writes every DOT file and returns once all writes have finished.
func (r *Runner) writeAll(ctx context.Context, jobs []job, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := os.WriteFile(j.dotPath, []byte(j.dot), 0644)
			observability.Batch().OnWriteComplete(gctx, j.label, len(j.dot), err)
			if err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "write %s", j.dotPath)
			}
			opts.Logger.Debug("wrote dot file", "subgraph", j.label, "path", j.dotPath, "bytes", len(j.dot))
			return nil
		})
	}
	return g.Wait()
}
