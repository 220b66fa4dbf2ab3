package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jirascope/pkg/errors"
)

// Engine names accepted by [NewEngine].
const (
	EngineExec     = "exec"
	EngineGraphviz = "graphviz"
)

// DefaultBinary is the Graphviz layout program used by [ExecEngine].
const DefaultBinary = "dot"

// Engine renders a DOT file to an image file.
type Engine interface {
	// Name identifies the engine in cache keys and logs.
	Name() string
	// Render reads DOT source from src and writes the image in format to dst.
	Render(ctx context.Context, src, dst, format string) error
}

// NewEngine returns the engine registered under name. An empty name selects
// the exec engine; binary is only used by the exec engine.
func NewEngine(name, binary string) (Engine, error) {
	switch name {
	case "", EngineExec:
		return &ExecEngine{Binary: binary}, nil
	case EngineGraphviz:
		return &GraphvizEngine{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown render engine %q (want %s or %s)", name, EngineExec, EngineGraphviz)
	}
}

// ExecEngine runs an external Graphviz binary as
// "<Binary> -T<format> -o <dst> <src>".
type ExecEngine struct {
	// Binary is the program to run. Defaults to "dot".
	Binary string
}

func (e *ExecEngine) binary() string {
	if e.Binary == "" {
		return DefaultBinary
	}
	return e.Binary
}

// Name returns "exec:<binary>".
func (e *ExecEngine) Name() string { return EngineExec + ":" + e.binary() }

// Render runs the binary and waits for it. Cancelling ctx kills the process.
func (e *ExecEngine) Render(ctx context.Context, src, dst, format string) error {
	if err := validFormat(format); err != nil {
		return err
	}
	bin := e.binary()
	if _, err := exec.LookPath(bin); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "%s not found; install Graphviz:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz", bin)
	}

	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", dst, src)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeRender, err, "%s %s: %s", bin, src, strings.TrimSpace(errBuf.String()))
	}
	return nil
}

// GraphvizEngine renders in-process using the WebAssembly build of Graphviz,
// so no external binary is needed. Only the formats go-graphviz supports are
// accepted.
type GraphvizEngine struct{}

// Name returns "graphviz".
func (*GraphvizEngine) Name() string { return EngineGraphviz }

var graphvizFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

// Render parses src and writes the layout to dst.
func (*GraphvizEngine) Render(ctx context.Context, src, dst, format string) error {
	gvFormat, ok := graphvizFormats[format]
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "graphviz engine cannot render %q (want png, svg or jpg)", format)
	}
	dot, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read %s", src)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "parse %s", src)
	}
	defer g.Close()

	if err := gv.RenderFilename(ctx, g, gvFormat, dst); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "render %s", src)
	}
	return nil
}

// validFormat rejects formats that could be mistaken for flags or paths.
func validFormat(format string) error {
	if format == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output format is empty")
	}
	for _, r := range format {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ':') {
			return errors.New(errors.ErrCodeInvalidInput, "invalid output format %q", format)
		}
	}
	return nil
}
