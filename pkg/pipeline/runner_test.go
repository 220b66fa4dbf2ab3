package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jirascope/pkg/cache"
	"github.com/matzehuels/jirascope/pkg/errors"
	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/observability"
	"github.com/matzehuels/jirascope/pkg/render/nodelink"
)

// fakeEngine copies the DOT source into the image with an "IMG:" prefix.
type fakeEngine struct {
	calls atomic.Int32
	// failOn makes rendering fail for DOT paths containing it.
	failOn string
	// before runs at the start of every Render call.
	before func(src string) error
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Render(ctx context.Context, src, dst, format string) error {
	e.calls.Add(1)
	if e.before != nil {
		if err := e.before(src); err != nil {
			return err
		}
	}
	if e.failOn != "" && strings.Contains(src, e.failOn) {
		return fmt.Errorf("syntax error in %s", src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append([]byte("IMG:"), data...), 0644)
}

// recordingHooks counts batch events.
type recordingHooks struct {
	observability.NoopBatchHooks
	mu       sync.Mutex
	starts   int
	writes   []string
	renders  []string
	complete int
	lastErr  error
}

func (h *recordingHooks) OnBatchStart(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnWriteComplete(_ context.Context, label string, _ int, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = append(h.writes, label)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, label, _ string, _ bool, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, label)
}

func (h *recordingHooks) OnBatchComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.complete++
	h.lastErr = err
}

type recordingCacheHooks struct {
	hits, misses, sets atomic.Int32
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits.Add(1) }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses.Add(1) }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets.Add(1) }

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func sampleSubgraphs() []issue.Subgraph {
	return []issue.Subgraph{
		{
			Label: "checkout",
			Nodes: []issue.Item{
				{Key: "EPIC-1", Type: issue.EpicType, StatusCategory: "In Progress", Priority: "High", Summary: "Checkout"},
				{Key: "REQ-7", Type: "Requirement", StatusCategory: "To Do", Priority: "Medium", Summary: "Pay", EpicKey: "EPIC-1"},
				{Key: "REQ-9", Type: "Requirement", StatusCategory: "Done", Priority: "Low", Summary: "Ship"},
			},
			Edges: []issue.Link{
				{SrcKey: "EPIC-1", DstKey: "REQ-7", Type: issue.EpicType},
				{SrcKey: "REQ-7", DstKey: "REQ-9", Type: "Blocks"},
			},
		},
		{
			Label: "search",
			Nodes: []issue.Item{
				{Key: "S-1", Type: "Initiative", Priority: "Highest", Summary: "Search"},
			},
		},
	}
}

func newTestRunner(eng *fakeEngine, c cache.Cache) *Runner {
	return NewRunner(eng, c, nil, testLogger())
}

func TestBatch(t *testing.T) {
	out := t.TempDir()
	eng := &fakeEngine{}
	sgs := sampleSubgraphs()

	result, err := newTestRunner(eng, nil).Batch(context.Background(), sgs, Options{OutputDir: out, Concurrency: 2})
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(result.Files) != len(sgs) {
		t.Fatalf("Files = %d, want %d", len(result.Files), len(sgs))
	}
	if eng.calls.Load() != int32(len(sgs)) {
		t.Errorf("engine calls = %d, want %d", eng.calls.Load(), len(sgs))
	}

	for i, sg := range sgs {
		f := result.Files[i]
		if f.Label != sg.Label {
			t.Errorf("Files[%d].Label = %q, want %q", i, f.Label, sg.Label)
		}
		if want := filepath.Join(out, "subdot", sg.Label+".dot"); f.DotPath != want {
			t.Errorf("DotPath = %q, want %q", f.DotPath, want)
		}
		if want := filepath.Join(out, "subgraphs", sg.Label+".png"); f.ImagePath != want {
			t.Errorf("ImagePath = %q, want %q", f.ImagePath, want)
		}

		wantDot, err := nodelink.ToDOT(sg, nodelink.Options{})
		if err != nil {
			t.Fatal(err)
		}
		gotDot, err := os.ReadFile(f.DotPath)
		if err != nil {
			t.Fatalf("read dot: %v", err)
		}
		if string(gotDot) != wantDot {
			t.Errorf("dot file for %s differs from ToDOT output", sg.Label)
		}
		img, err := os.ReadFile(f.ImagePath)
		if err != nil {
			t.Fatalf("read image: %v", err)
		}
		if string(img) != "IMG:"+wantDot {
			t.Errorf("image for %s not rendered from its dot file", sg.Label)
		}
	}

	s := result.Stats
	if s.Subgraphs != 2 || s.Nodes != 4 || s.Edges != 2 || s.Clusters != 1 || s.Dangling != 0 || s.CacheHits != 0 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestBatchWritesBeforeRenders(t *testing.T) {
	out := t.TempDir()
	sgs := sampleSubgraphs()
	var missing atomic.Int32
	eng := &fakeEngine{before: func(string) error {
		for _, sg := range sgs {
			if _, err := os.Stat(filepath.Join(out, "subdot", sg.Label+".dot")); err != nil {
				missing.Add(1)
			}
		}
		return nil
	}}

	if _, err := newTestRunner(eng, nil).Batch(context.Background(), sgs, Options{OutputDir: out, Concurrency: 1}); err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if missing.Load() != 0 {
		t.Errorf("render started before all dot files were written (%d missing)", missing.Load())
	}
}

func TestBatchEmpty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fresh")
	eng := &fakeEngine{}

	result, err := newTestRunner(eng, nil).Batch(context.Background(), nil, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %v, want none", result.Files)
	}
	if eng.calls.Load() != 0 {
		t.Errorf("engine called %d times", eng.calls.Load())
	}
	for _, dir := range []string{"subdot", "subgraphs"} {
		entries, err := os.ReadDir(filepath.Join(out, dir))
		if err != nil {
			t.Fatalf("%s not created: %v", dir, err)
		}
		if len(entries) != 0 {
			t.Errorf("%s should be empty, has %d entries", dir, len(entries))
		}
	}
}

func TestBatchExistingDirs(t *testing.T) {
	out := t.TempDir()
	if err := os.MkdirAll(filepath.Join(out, "subdot"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := newTestRunner(&fakeEngine{}, nil).Batch(context.Background(), sampleSubgraphs(), Options{OutputDir: out}); err != nil {
		t.Fatalf("Batch() with existing dirs: %v", err)
	}
}

func TestBatchRejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name      string
		subgraphs []issue.Subgraph
		opts      Options
		code      errors.Code
	}{
		{
			name:      "traversal label",
			subgraphs: []issue.Subgraph{{Label: "../escape"}},
			code:      errors.ErrCodeInvalidLabel,
		},
		{
			name:      "empty label",
			subgraphs: []issue.Subgraph{{Label: ""}},
			code:      errors.ErrCodeInvalidLabel,
		},
		{
			name:      "duplicate label",
			subgraphs: []issue.Subgraph{{Label: "a"}, {Label: "a"}},
			code:      errors.ErrCodeInvalidLabel,
		},
		{
			name: "unmapped priority",
			subgraphs: []issue.Subgraph{
				{Label: "ok", Nodes: []issue.Item{{Key: "A", Priority: "High"}}},
				{Label: "bad", Nodes: []issue.Item{{Key: "B", Priority: "Blocker"}}},
			},
			code: errors.ErrCodeUnmappedPriority,
		},
		{
			name: "strict dangling edge",
			subgraphs: []issue.Subgraph{{
				Label: "d",
				Nodes: []issue.Item{{Key: "A", Priority: "High"}},
				Edges: []issue.Link{{SrcKey: "A", DstKey: "GONE", Type: "Blocks"}},
			}},
			opts: Options{StrictEdges: true},
			code: errors.ErrCodeDanglingEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			eng := &fakeEngine{}
			opts := tt.opts
			opts.OutputDir = out

			_, err := newTestRunner(eng, nil).Batch(context.Background(), tt.subgraphs, opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Batch() error = %v, want %v", err, tt.code)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("nothing should be written when the batch is rejected")
			}
			if eng.calls.Load() != 0 {
				t.Error("engine should not be called")
			}
		})
	}
}

func TestBatchDanglingPassThrough(t *testing.T) {
	sg := issue.Subgraph{
		Label: "d",
		Nodes: []issue.Item{{Key: "A", Priority: "High"}},
		Edges: []issue.Link{{SrcKey: "A", DstKey: "GONE", Type: "Blocks"}},
	}
	result, err := newTestRunner(&fakeEngine{}, nil).Batch(context.Background(), []issue.Subgraph{sg}, Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if result.Stats.Dangling != 1 {
		t.Errorf("Dangling = %d, want 1", result.Stats.Dangling)
	}
	dot, err := os.ReadFile(result.Files[0].DotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"A"->"GONE";`) {
		t.Errorf("dangling link should be emitted as-is:\n%s", dot)
	}
}

func TestBatchRenderFailure(t *testing.T) {
	out := t.TempDir()
	eng := &fakeEngine{failOn: "search"}

	_, err := newTestRunner(eng, nil).Batch(context.Background(), sampleSubgraphs(), Options{OutputDir: out, Concurrency: 1})
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Fatalf("Batch() error = %v, want %v", err, errors.ErrCodeRender)
	}
	if !strings.Contains(err.Error(), "search") {
		t.Errorf("error should name the subgraph: %v", err)
	}
	// DOT files from the completed write phase remain.
	for _, label := range []string{"checkout", "search"} {
		if _, err := os.Stat(filepath.Join(out, "subdot", label+".dot")); err != nil {
			t.Errorf("%s.dot should remain: %v", label, err)
		}
	}
}

func TestBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(&fakeEngine{}, nil).Batch(ctx, sampleSubgraphs(), Options{OutputDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), context.Canceled.Error()) {
		t.Fatalf("Batch() error = %v, want context.Canceled", err)
	}
}

func TestBatchCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cacheHooks := &recordingCacheHooks{}
	observability.SetCacheHooks(cacheHooks)
	defer observability.Reset()

	sgs := sampleSubgraphs()
	opts := Options{OutputDir: t.TempDir()}

	first := &fakeEngine{}
	if _, err := newTestRunner(first, c).Batch(context.Background(), sgs, opts); err != nil {
		t.Fatalf("first Batch() error: %v", err)
	}
	if first.calls.Load() != 2 {
		t.Fatalf("first run engine calls = %d, want 2", first.calls.Load())
	}

	// Remove images so the second run must restore them from the cache.
	if err := os.RemoveAll(filepath.Join(opts.OutputDir, "subgraphs")); err != nil {
		t.Fatal(err)
	}

	second := &fakeEngine{}
	result, err := newTestRunner(second, c).Batch(context.Background(), sgs, opts)
	if err != nil {
		t.Fatalf("second Batch() error: %v", err)
	}
	if second.calls.Load() != 0 {
		t.Errorf("second run engine calls = %d, want 0", second.calls.Load())
	}
	if result.Stats.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", result.Stats.CacheHits)
	}
	for _, f := range result.Files {
		if !f.Cached {
			t.Errorf("%s should come from cache", f.Label)
		}
		img, err := os.ReadFile(f.ImagePath)
		if err != nil || !strings.HasPrefix(string(img), "IMG:digraph{") {
			t.Errorf("cached image for %s = %q, %v", f.Label, img, err)
		}
	}

	if cacheHooks.misses.Load() != 2 || cacheHooks.sets.Load() != 2 || cacheHooks.hits.Load() != 2 {
		t.Errorf("cache hooks: hits=%d misses=%d sets=%d",
			cacheHooks.hits.Load(), cacheHooks.misses.Load(), cacheHooks.sets.Load())
	}

	// A different engine name misses the cache.
	other := &namedEngine{fakeEngine: &fakeEngine{}, name: "other"}
	if _, err := NewRunner(other, c, nil, testLogger()).Batch(context.Background(), sgs, opts); err != nil {
		t.Fatal(err)
	}
	if other.calls.Load() != 2 {
		t.Errorf("engine change should miss the cache, calls = %d", other.calls.Load())
	}
}

type namedEngine struct {
	*fakeEngine
	name string
}

func (e *namedEngine) Name() string { return e.name }

func TestBatchHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetBatchHooks(hooks)
	defer observability.Reset()

	sgs := sampleSubgraphs()
	if _, err := newTestRunner(&fakeEngine{}, nil).Batch(context.Background(), sgs, Options{OutputDir: t.TempDir()}); err != nil {
		t.Fatalf("Batch() error: %v", err)
	}

	if hooks.starts != 1 || hooks.complete != 1 {
		t.Errorf("starts = %d, complete = %d, want 1 each", hooks.starts, hooks.complete)
	}
	if len(hooks.writes) != len(sgs) || len(hooks.renders) != len(sgs) {
		t.Errorf("writes = %v, renders = %v", hooks.writes, hooks.renders)
	}
	if hooks.lastErr != nil {
		t.Errorf("OnBatchComplete err = %v", hooks.lastErr)
	}

	// Failed batches still complete.
	_, err := newTestRunner(&fakeEngine{}, nil).Batch(context.Background(), []issue.Subgraph{{Label: ""}}, Options{OutputDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error")
	}
	if hooks.complete != 2 || hooks.lastErr == nil {
		t.Errorf("failed batch: complete = %d, lastErr = %v", hooks.complete, hooks.lastErr)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if r.Engine == nil || r.Engine.Name() != "exec:dot" {
		t.Errorf("default engine = %v", r.Engine)
	}
	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("default cache = %T, want *cache.NullCache", r.Cache)
	}
	if r.Keyer == nil || r.Logger == nil {
		t.Error("keyer and logger should default")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
