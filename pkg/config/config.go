// Package config loads jirascope settings from a TOML file.
//
// A missing file is not an error: every setting has a default, and the file
// only needs the keys that differ.
//
//	output = "build/diagrams"
//
//	[render]
//	engine = "graphviz"
//	format = "svg"
//	concurrency = 4
//
//	[cache]
//	backend = "s3"
//	ttl = "72h"
//
//	[cache.s3]
//	bucket = "ci-renders"
//	prefix = "jirascope/"
//
//	[styles.priorities.Blocker]
//	label = "⛔"
//
// Style tables are merged over the built-in ones, so adding a priority does
// not require repeating the defaults.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/render"
	"github.com/matzehuels/jirascope/pkg/render/styles"
)

// AppName names the config and cache directories.
const AppName = "jirascope"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheS3    = "s3"
	CacheNone  = "none"
)

// Snapshot sources.
const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Config is the full set of settings.
type Config struct {
	// Output is the directory holding the subdot/ and subgraphs/ folders.
	Output string       `toml:"output"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Source SourceConfig `toml:"source"`
	// Styles are overrides merged on top of the built-in style tables.
	Styles styles.Rules `toml:"styles"`
}

// RenderConfig selects and tunes the render engine.
type RenderConfig struct {
	Engine string `toml:"engine"`
	Binary string `toml:"binary"`
	Format string `toml:"format"`
	// Concurrency bounds parallel writes and renders; 0 means one per CPU.
	Concurrency int  `toml:"concurrency"`
	StrictEdges bool `toml:"strict_edges"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	S3        S3Config `toml:"s3"`
	// TTL is a Go duration string such as "168h".
	TTL string `toml:"ttl"`
}

// S3Config locates the bucket of the s3 cache backend. Credentials come
// from the standard AWS environment.
type S3Config struct {
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// SourceConfig says where snapshots come from when none is named on the
// command line.
type SourceConfig struct {
	Kind       string `toml:"kind"`
	Path       string `toml:"path"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output: ".",
		Render: RenderConfig{
			Engine: render.EngineExec,
			Binary: render.DefaultBinary,
			Format: "png",
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     "168h",
		},
		Source: SourceConfig{
			Kind: SourceFile,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/jirascope/config.toml, falling back
// to ~/.config/jirascope/config.toml.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path over the defaults and validates the result.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges and the merged style tables.
func (c Config) Validate() error {
	switch c.Render.Engine {
	case "", render.EngineExec, render.EngineGraphviz:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "render.engine must be %q or %q, got %q", render.EngineExec, render.EngineGraphviz, c.Render.Engine)
	}
	if c.Render.Format == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "render.format must not be empty")
	}
	if c.Render.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.concurrency must be >= 0, got %d", c.Render.Concurrency)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	case CacheS3:
		if c.Cache.S3.Bucket == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.s3.bucket is required when cache.backend is s3")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis, s3 or none, got %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	switch c.Source.Kind {
	case SourceFile:
	case SourceMongo:
		if c.Source.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.mongo_uri is required when source.kind is mongo")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "source.kind must be file or mongo, got %q", c.Source.Kind)
	}

	return c.Rules().Validate()
}

// CacheTTL parses Cache.TTL. An empty value means no expiry.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "cache.ttl %q is not a valid duration", c.Cache.TTL)
	}
	return d, nil
}

// Rules returns the built-in style tables with the configured overrides
// applied.
func (c Config) Rules() styles.Rules {
	return styles.DefaultRules().Merge(c.Styles)
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
