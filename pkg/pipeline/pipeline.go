// Package pipeline renders batches of tracker subgraphs to images.
//
// A batch runs in two phases. First every subgraph is encoded to DOT and
// written to <OutputDir>/subdot/<label>.dot; only after all writes finish are
// the images rendered to <OutputDir>/subgraphs/<label>.<format>. Both phases
// run with bounded concurrency and stop at the first failure.
//
// # Usage
//
//	runner := pipeline.NewRunner(engine, cache, nil, logger)
//	result, err := runner.Batch(ctx, subgraphs, pipeline.Options{
//	    OutputDir: "build",
//	    Format:    "svg",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Files {
//	    fmt.Println(f.ImagePath)
//	}
//
// Rendered images are stored in the runner's cache keyed by a hash of the
// DOT source, so re-running an unchanged batch copies images instead of
// invoking the engine.
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/render/styles"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDotDir is the directory under OutputDir holding DOT sources.
	DefaultDotDir = "subdot"

	// DefaultImageDir is the directory under OutputDir holding images.
	DefaultImageDir = "subgraphs"

	// DefaultFormat is the default image format.
	DefaultFormat = "png"
)

// =============================================================================
// Options - Batch Configuration
// =============================================================================

// Options configures a batch run.
type Options struct {
	// OutputDir is the parent of DotDir and ImageDir. Required.
	OutputDir string
	DotDir    string
	ImageDir  string
	// Format is passed to the engine, e.g. "png" or "svg".
	Format string
	// Concurrency bounds parallel writes and renders. Defaults to one per CPU.
	Concurrency int
	// StrictEdges aborts the batch when a link references an item outside
	// its subgraph. Otherwise such links are emitted as-is and logged.
	StrictEdges bool
	// Rules style the nodes. A zero value uses the built-in tables.
	Rules styles.Rules
	// CacheTTL is the expiry of cached images. Zero keeps them until the
	// cache is cleared.
	CacheTTL time.Duration

	// Logger receives progress messages. Defaults to the runner's logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output directory is required")
	}
	if o.DotDir == "" {
		o.DotDir = DefaultDotDir
	}
	if o.ImageDir == "" {
		o.ImageDir = DefaultImageDir
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must be >= 0, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache TTL must be >= 0, got %v", o.CacheTTL)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result describes a finished batch.
type Result struct {
	// RunID identifies the batch in logs and hooks.
	RunID string

	// Files lists the produced files in input order.
	Files []Artifact

	// Stats contains counts and timings.
	Stats Stats
}

// Artifact is the pair of files produced for one subgraph.
type Artifact struct {
	Label     string
	DotPath   string
	ImagePath string
	// Cached is true when the image was copied from the render cache.
	Cached bool
}

// Stats contains batch execution statistics.
type Stats struct {
	Subgraphs int
	Nodes     int
	Edges     int
	Clusters  int
	// Dangling counts links whose endpoints are not in their subgraph.
	Dangling  int
	CacheHits int

	EncodeTime time.Duration
	WriteTime  time.Duration
	RenderTime time.Duration
}
