package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/jirascope/pkg/cache"
	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/observability"
	"github.com/matzehuels/jirascope/pkg/render"
	"github.com/matzehuels/jirascope/pkg/render/nodelink"
)

// Runner executes batches with a render engine and cache.
//
// The Runner keeps no per-batch state; multiple goroutines can safely run
// batches on the same Runner as long as their output paths do not overlap.
type Runner struct {
	Engine render.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner.
// If engine is nil, the "dot" binary is used.
// If cache is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
func NewRunner(engine render.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if engine == nil {
		engine = &render.ExecEngine{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: engine,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// job is one subgraph on its way through the batch.
type job struct {
	label     string
	dot       string
	hash      string
	dotPath   string
	imagePath string
}

// Batch encodes, writes and renders subgraphs.
//
// Labels are validated and every subgraph is encoded before anything touches
// the filesystem, so encoding failures leave no partial output. Once writing
// starts, the first failure cancels the remaining work and is returned; files
// already written stay in place.
func (r *Runner) Batch(ctx context.Context, subgraphs []issue.Subgraph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])

	hooks := observability.Batch()
	hooks.OnBatchStart(ctx, runID, len(subgraphs))

	result, err := r.batch(ctx, runID, subgraphs, opts)

	files := 0
	if result != nil {
		files = len(result.Files)
	}
	hooks.OnBatchComplete(ctx, runID, files, time.Since(start), err)
	return result, err
}

func (r *Runner) batch(ctx context.Context, runID string, subgraphs []issue.Subgraph, opts Options) (*Result, error) {
	result := &Result{RunID: runID, Files: []Artifact{}}
	result.Stats.Subgraphs = len(subgraphs)

	labels := make([]string, len(subgraphs))
	for i, sg := range subgraphs {
		labels[i] = sg.Label
	}
	if err := errors.ValidateLabels(labels); err != nil {
		return nil, err
	}

	encodeStart := time.Now()
	jobs, err := r.encode(subgraphs, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Stats.EncodeTime = time.Since(encodeStart)

	dotDir := filepath.Join(opts.OutputDir, opts.DotDir)
	imageDir := filepath.Join(opts.OutputDir, opts.ImageDir)
	if err := ensureDirs(dotDir, imageDir); err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i].dotPath = filepath.Join(dotDir, jobs[i].label+".dot")
		jobs[i].imagePath = filepath.Join(imageDir, jobs[i].label+"."+opts.Format)
	}

	if len(jobs) == 0 {
		opts.Logger.Info("no subgraphs to render")
		return result, nil
	}

	writeStart := time.Now()
	if err := r.writeAll(ctx, jobs, opts); err != nil {
		return nil, err
	}
	result.Stats.WriteTime = time.Since(writeStart)
	opts.Logger.Info("wrote dot files", "count", len(jobs), "dir", dotDir, "duration", result.Stats.WriteTime)

	renderStart := time.Now()
	cached, err := r.renderAll(ctx, jobs, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	for i, j := range jobs {
		result.Files = append(result.Files, Artifact{
			Label:     j.label,
			DotPath:   j.dotPath,
			ImagePath: j.imagePath,
			Cached:    cached[i],
		})
		if cached[i] {
			result.Stats.CacheHits++
		}
	}
	opts.Logger.Info("rendered subgraphs",
		"count", len(jobs),
		"cached", result.Stats.CacheHits,
		"engine", r.Engine.Name(),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// encode converts every subgraph to DOT and applies the dangling link policy.
func (r *Runner) encode(subgraphs []issue.Subgraph, opts Options, stats *Stats) ([]job, error) {
	enc := nodelink.NewEncoder(nodelink.Options{Rules: opts.Rules})
	jobs := make([]job, 0, len(subgraphs))

	for _, sg := range subgraphs {
		for _, l := range sg.DanglingLinks() {
			if opts.StrictEdges {
				return nil, errors.New(errors.ErrCodeDanglingEdge,
					"subgraph %s: link %s->%s references an item outside the subgraph", sg.Label, l.SrcKey, l.DstKey)
			}
			opts.Logger.Warn("dangling link", "subgraph", sg.Label, "src", l.SrcKey, "dst", l.DstKey, "type", l.Type)
			stats.Dangling++
		}

		g := nodelink.Group(sg)
		dot, err := enc.EncodeGrouping(g)
		if err != nil {
			return nil, fmt.Errorf("subgraph %s: %w", sg.Label, err)
		}

		stats.Nodes += len(sg.Nodes)
		stats.Edges += len(sg.Edges)
		stats.Clusters += len(g.Clusters)
		opts.Logger.Debug("encoded subgraph",
			"subgraph", sg.Label,
			"nodes", len(sg.Nodes),
			"edges", len(sg.Edges),
			"clusters", len(g.Clusters))

		jobs = append(jobs, job{
			label: sg.Label,
			dot:   dot,
			hash:  cache.Hash([]byte(dot)),
		})
	}
	return jobs, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
