package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/jirascope/pkg/observability"
)

// spinnerFrames are drawn in order, one per tick.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner draws a one-line progress indicator on a terminal stream. The
// message can be changed while it runs; it stops on Stop or when its
// context is done.
type Spinner struct {
	w          io.Writer
	ctx        context.Context
	cancel     context.CancelFunc
	stopped    chan struct{}
	started    atomic.Bool
	stopCalled atomic.Bool
	once       sync.Once

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far, for clearing
}

// newSpinnerWithContext creates a spinner on stderr bound to ctx.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	if ctx == nil {
		ctx = context.Background()
	}
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation. Calling Start twice has no effect.
func (s *Spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Message returns the current text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.message) + 4; n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// Stop stops the spinner and clears its line. It is safe to call more
// than once and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		if s.ctx.Err() == nil {
			s.stopCalled.Store(true)
		}
		s.cancel()
		if s.started.Load() {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}

// Cancelled reports whether the parent context ended the spinner.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !s.stopCalled.Load()
}

// =============================================================================
// Batch progress
// =============================================================================

// batchProgress reports pipeline events on a spinner and forwards them to
// the hooks that were registered before it.
type batchProgress struct {
	spinner *Spinner
	next    observability.BatchHooks

	total    atomic.Int64
	written  atomic.Int64
	rendered atomic.Int64
	cached   atomic.Int64
}

func newBatchProgress(s *Spinner) *batchProgress {
	return &batchProgress{spinner: s, next: observability.NoopBatchHooks{}}
}

func (p *batchProgress) OnBatchStart(ctx context.Context, runID string, subgraphs int) {
	p.total.Store(int64(subgraphs))
	p.spinner.SetMessage(fmt.Sprintf("Writing 0/%d", subgraphs))
	p.next.OnBatchStart(ctx, runID, subgraphs)
}

func (p *batchProgress) OnWriteComplete(ctx context.Context, label string, size int, err error) {
	n := p.written.Add(1)
	p.spinner.SetMessage(fmt.Sprintf("Writing %d/%d", n, p.total.Load()))
	p.next.OnWriteComplete(ctx, label, size, err)
}

func (p *batchProgress) OnRenderComplete(ctx context.Context, label, format string, cached bool, d time.Duration, err error) {
	if cached {
		p.cached.Add(1)
	}
	n := p.rendered.Add(1)
	msg := fmt.Sprintf("Rendering %d/%d", n, p.total.Load())
	if c := p.cached.Load(); c > 0 {
		msg += fmt.Sprintf(" (%d cached)", c)
	}
	p.spinner.SetMessage(msg)
	p.next.OnRenderComplete(ctx, label, format, cached, d, err)
}

func (p *batchProgress) OnBatchComplete(ctx context.Context, runID string, files int, d time.Duration, err error) {
	p.next.OnBatchComplete(ctx, runID, files, d, err)
}

// track installs p in front of the current batch hooks and returns a
// function restoring them.
func (p *batchProgress) track() (restore func()) {
	p.next = observability.Batch()
	observability.SetBatchHooks(p)
	return func() { observability.SetBatchHooks(p.next) }
}
