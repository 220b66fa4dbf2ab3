package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/jirascope/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	ttl, err := Default().CacheTTL()
	if err != nil || ttl != 168*time.Hour {
		t.Errorf("default TTL = %v, %v", ttl, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.Format != "png" || cfg.Output != "." {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}

	cfg, err = Load("")
	if err != nil || cfg.Cache.Backend != CacheFile {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
output = "out"

[render]
engine = "graphviz"
format = "svg"
concurrency = 3
strict_edges = true

[cache]
backend = "none"
ttl = "1h"

[styles.priorities.Blocker]
label = "!!"

[styles.status."To Do"]
color = "#123456"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Output != "out" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Render.Engine != "graphviz" || cfg.Render.Format != "svg" || cfg.Render.Concurrency != 3 || !cfg.Render.StrictEdges {
		t.Errorf("Render = %+v", cfg.Render)
	}
	// untouched keys keep their defaults
	if cfg.Render.Binary != "dot" {
		t.Errorf("Render.Binary = %q, want default", cfg.Render.Binary)
	}
	if cfg.Source.Kind != SourceFile {
		t.Errorf("Source.Kind = %q, want default", cfg.Source.Kind)
	}

	rules := cfg.Rules()
	if glyph, err := rules.PriorityLabel("Blocker"); err != nil || glyph != "!!" {
		t.Errorf("Blocker glyph = %q, %v", glyph, err)
	}
	if glyph, err := rules.PriorityLabel("High"); err != nil || glyph != "⬈" {
		t.Errorf("default High glyph lost: %q, %v", glyph, err)
	}
	if got := rules.StatusColor("To Do"); got != "#123456" {
		t.Errorf("To Do color = %q", got)
	}
	if got := rules.StatusColor("Done"); got != "#009A44" {
		t.Errorf("Done color = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `output = `},
		{"unknown key", "[render]\nengin = \"exec\"\n"},
		{"bad engine", "[render]\nengine = \"cairo\"\n"},
		{"empty format", "[render]\nformat = \"\"\n"},
		{"negative concurrency", "[render]\nconcurrency = -1\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad ttl", "[cache]\nttl = \"forever\"\n"},
		{"s3 without bucket", "[cache]\nbackend = \"s3\"\n"},
		{"bad source", "[source]\nkind = \"jira\"\n"},
		{"mongo without uri", "[source]\nkind = \"mongo\"\n"},
		{"bad color", "[styles.types.Bug]\nlabel = \"B\"\ncolor = \"red\\\"\"\n"},
		{"empty glyph", "[styles.priorities.Blocker]\nlabel = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadS3Cache(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[cache]\nbackend = \"s3\"\n\n[cache.s3]\nbucket = \"ci-renders\"\nprefix = \"jirascope/\"\nendpoint = \"http://minio:9000\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := S3Config{Bucket: "ci-renders", Prefix: "jirascope/", Endpoint: "http://minio:9000"}
	if cfg.Cache.Backend != CacheS3 || cfg.Cache.S3 != want {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Output = "diagrams"
	cfg.Render.Concurrency = 2
	cfg.Styles = cfg.Rules()

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`output = "diagrams"`, "[render]", "concurrency = 2", "[styles.priorities.Highest]"} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded config missing %q:\n%s", want, out)
		}
	}

	var back Config
	if _, err := toml.Decode(out, &back); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if back.Output != cfg.Output || back.Render != cfg.Render || back.Cache != cfg.Cache {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "jirascope", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = DefaultPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join(".config", "jirascope", "config.toml")) {
		t.Errorf("DefaultPath() fallback = %q", got)
	}
}
