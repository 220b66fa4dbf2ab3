package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jirascope/pkg/cache"
	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/observability"
)

// artifactKeyType labels render cache events.
const artifactKeyType = "artifact"

// renderAll renders every job and reports, per job, whether the image came
// from the cache.
func (r *Runner) renderAll(ctx context.Context, jobs []job, opts Options) ([]bool, error) {
	cached := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			hit, err := r.renderOne(gctx, j, opts)
			observability.Batch().OnRenderComplete(gctx, j.label, opts.Format, hit, time.Since(start), err)
			if err != nil {
				return err
			}
			cached[i] = hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cached, nil
}

// renderOne produces the image for j, from the cache when possible.
// Cache failures are logged and otherwise ignored.
func (r *Runner) renderOne(ctx context.Context, j job, opts Options) (bool, error) {
	key := r.Keyer.ArtifactKey(j.hash, r.Engine.Name(), opts.Format)

	if cache.Enabled(r.Cache) {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Debug("cache lookup failed", "subgraph", j.label, "error", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, artifactKeyType)
			if err := os.WriteFile(j.imagePath, data, 0644); err != nil {
				return false, errors.Wrap(errors.ErrCodeIO, err, "write %s", j.imagePath)
			}
			opts.Logger.Debug("image from cache", "subgraph", j.label, "path", j.imagePath)
			return true, nil
		}
		observability.Cache().OnCacheMiss(ctx, artifactKeyType)
	}

	if err := r.Engine.Render(ctx, j.dotPath, j.imagePath, opts.Format); err != nil {
		if errors.GetCode(err) == "" && ctx.Err() == nil {
			err = errors.Wrap(errors.ErrCodeRender, err, "%s", r.Engine.Name())
		}
		return false, fmt.Errorf("render %s: %w", j.label, err)
	}
	opts.Logger.Debug("rendered image", "subgraph", j.label, "path", j.imagePath)

	if cache.Enabled(r.Cache) {
		r.store(ctx, key, j, opts)
	}
	return false, nil
}

// store copies a freshly rendered image into the cache.
func (r *Runner) store(ctx context.Context, key string, j job, opts Options) {
	data, err := os.ReadFile(j.imagePath)
	if err != nil {
		opts.Logger.Debug("cache store skipped", "subgraph", j.label, "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
		opts.Logger.Debug("cache store failed", "subgraph", j.label, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
}
