package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jirascope/pkg/config"
	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/pipeline"
)

var errNoSnapshot = errors.New(errors.ErrCodeInvalidInput, "no snapshot given: pass a file or set source.path in the config")

// batchFlags are the command-line overrides shared by dot and browse.
// Only flags the user actually set replace config values.
type batchFlags struct {
	output      string
	engine      string
	binary      string
	format      string
	concurrency int
	strictEdges bool
	noCache     bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (holds subdot/ and subgraphs/)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "render engine: exec or graphviz")
	cmd.Flags().StringVar(&f.binary, "binary", "", "Graphviz binary used by the exec engine")
	cmd.Flags().StringVar(&f.format, "format", "", "image format, e.g. png or svg")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "parallel writes and renders (0 = one per CPU)")
	cmd.Flags().BoolVar(&f.strictEdges, "strict-edges", false, "fail on links that leave their subgraph")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the render cache")
}

// apply copies explicitly set flags over cfg.
func (f *batchFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("engine") {
		cfg.Render.Engine = f.engine
	}
	if flags.Changed("binary") {
		cfg.Render.Binary = f.binary
	}
	if flags.Changed("format") {
		cfg.Render.Format = f.format
	}
	if flags.Changed("concurrency") {
		cfg.Render.Concurrency = f.concurrency
	}
	if flags.Changed("strict-edges") {
		cfg.Render.StrictEdges = f.strictEdges
	}
}

// batchOptions converts the effective config to pipeline options.
func batchOptions(cfg config.Config) (pipeline.Options, error) {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		OutputDir:   cfg.Output,
		Format:      cfg.Render.Format,
		Concurrency: cfg.Render.Concurrency,
		StrictEdges: cfg.Render.StrictEdges,
		Rules:       cfg.Rules(),
		CacheTTL:    ttl,
	}, nil
}

// dotCommand creates the dot command, which renders every subgraph of a
// snapshot.
func (c *CLI) dotCommand() *cobra.Command {
	var flags batchFlags
	var watch bool

	cmd := &cobra.Command{
		Use:   "dot [snapshot]",
		Short: "Write and render one diagram per subgraph",
		Long: `Write one Graphviz DOT file per subgraph to <output>/subdot and render
each to <output>/subgraphs/<label>.<format>.

The snapshot is a JSON or YAML file with a top-level "subgraphs" list. Without
an argument the source configured in the config file is used.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			if watch {
				return c.watchDot(cmd, &flags, path)
			}
			return c.runDot(cmd, &flags, path)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render whenever the snapshot file changes")
	return cmd
}

func (c *CLI) runDot(cmd *cobra.Command, flags *batchFlags, path string) error {
	ctx := cmd.Context()

	cfg, err := c.effectiveConfig(cmd, flags)
	if err != nil {
		return err
	}
	subgraphs, err := loadSubgraphs(ctx, cfg, path)
	if err != nil {
		return err
	}
	if len(subgraphs) == 0 {
		printWarning("Snapshot contains no subgraphs")
	}
	return c.renderBatch(ctx, cfg, flags.noCache, subgraphs)
}

// watchDot renders once, then again after every change to the snapshot.
func (c *CLI) watchDot(cmd *cobra.Command, flags *batchFlags, path string) error {
	ctx := cmd.Context()

	cfg, err := c.effectiveConfig(cmd, flags)
	if err != nil {
		return err
	}
	path, err = watchPath(cfg, path)
	if err != nil {
		return err
	}

	render := func(ctx context.Context) error {
		subgraphs, err := loadSubgraphs(ctx, cfg, path)
		if err != nil {
			return err
		}
		return c.renderBatch(ctx, cfg, flags.noCache, subgraphs)
	}
	if err := render(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printWarning("%v", err)
	}

	printInfo("Watching %s (Ctrl+C to stop)", path)
	return watchFile(ctx, path, watchDebounce, render)
}

// effectiveConfig loads the config file and applies command-line overrides.
func (c *CLI) effectiveConfig(cmd *cobra.Command, flags *batchFlags) (config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	flags.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// loadSubgraphs reads the snapshot while showing a spinner.
func loadSubgraphs(ctx context.Context, cfg config.Config, path string) ([]issue.Subgraph, error) {
	src, err := newSource(cfg, path)
	if err != nil {
		return nil, err
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Loading subgraphs...")
	spinner.Start()
	subgraphs, err := src.Subgraphs(ctx)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d subgraphs", len(subgraphs)))
	return subgraphs, nil
}

// renderBatch runs one batch and prints its summary.
func (c *CLI) renderBatch(ctx context.Context, cfg config.Config, noCache bool, subgraphs []issue.Subgraph) error {
	opts, err := batchOptions(cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	restore := newBatchProgress(spinner).track()
	spinner.Start()
	result, err := runner.Batch(ctx, subgraphs, opts)
	spinner.Stop()
	restore()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d subgraphs", len(result.Files)))

	printBatchSummary(result)
	return nil
}
