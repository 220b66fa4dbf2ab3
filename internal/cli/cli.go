package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jirascope/pkg/buildinfo"
	"github.com/matzehuels/jirascope/pkg/cache"
	"github.com/matzehuels/jirascope/pkg/config"
	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/observability"
	"github.com/matzehuels/jirascope/pkg/pipeline"
	"github.com/matzehuels/jirascope/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config flag.
	configPath string
	// metrics is set by the --metrics flag.
	metrics bool
	// flushMetrics exports collected metrics; nil unless --metrics is set.
	flushMetrics func(context.Context) error
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close exports metrics collected during the run, if enabled.
func (c *CLI) Close(ctx context.Context) error {
	if c.flushMetrics == nil {
		return nil
	}
	flush := c.flushMetrics
	c.flushMetrics = nil
	return flush(ctx)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Jirascope draws tracker subgraphs as clustered Graphviz diagrams",
		Long:         `Jirascope turns analysed issue-tracker subgraphs into Graphviz DOT files, one per subgraph, with items grouped by epic, and renders them to images.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.metrics && c.flushMetrics == nil {
				flush, err := observability.InstallStdoutMetrics(os.Stderr)
				if err != nil {
					return err
				}
				c.flushMetrics = flush
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/jirascope/config.toml)")
	root.PersistentFlags().BoolVar(&c.metrics, "metrics", false, "print batch and cache metrics to stderr on exit")

	// Register all subcommands
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the file named by --config, or the default path.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no default config path", "error", err)
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	engine, err := render.NewEngine(cfg.Render.Engine, cfg.Render.Binary)
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(engine, store, nil, c.Logger), nil
}

// newCache opens the configured cache. A file cache that cannot be created
// falls back to no caching; an unreachable Redis server or unusable AWS
// configuration is an error.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	case config.CacheS3:
		return cache.NewS3Cache(ctx, cache.S3Options{
			Bucket:   cfg.Cache.S3.Bucket,
			Prefix:   cfg.Cache.S3.Prefix,
			Region:   cfg.Cache.S3.Region,
			Endpoint: cfg.Cache.S3.Endpoint,
		})
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("render cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Sources
// =============================================================================

// newSource picks the snapshot source. A path argument always means a file.
func newSource(cfg config.Config, path string) (issue.Source, error) {
	if path != "" {
		return issue.FileSource{Path: path}, nil
	}
	switch cfg.Source.Kind {
	case config.SourceMongo:
		return issue.MongoSource{
			URI:        cfg.Source.MongoURI,
			Database:   cfg.Source.Database,
			Collection: cfg.Source.Collection,
		}, nil
	default:
		if cfg.Source.Path == "" {
			return nil, errNoSnapshot
		}
		return issue.FileSource{Path: cfg.Source.Path}, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the render cache directory: cache.dir from the config, or
// the XDG default (~/.cache/jirascope/).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
