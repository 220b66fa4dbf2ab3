package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/jirascope/pkg/errors"
)

// Source supplies the subgraphs of a tracker snapshot.
type Source interface {
	Subgraphs(ctx context.Context) ([]Subgraph, error)
}

// snapshot is the on-disk layout written by the tracker population step.
type snapshot struct {
	Subgraphs []Subgraph `json:"subgraphs" yaml:"subgraphs"`
}

// ReadJSON decodes a JSON snapshot from r:
//
//	{"subgraphs": [{"label": "S1", "nodes": [...], "edges": [...]}]}
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]Subgraph, error) {
	var data snapshot
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.Subgraphs, nil
}

// ReadYAML decodes a YAML snapshot with the same layout as [ReadJSON].
func ReadYAML(r io.Reader) ([]Subgraph, error) {
	var data snapshot
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.Subgraphs, nil
}

// ReadFile reads a snapshot file, choosing the decoder by extension:
// .yaml and .yml are YAML, everything else is JSON.
func ReadFile(path string) ([]Subgraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return ReadJSON(f)
	}
}

// FileSource reads subgraphs from a snapshot file on disk.
type FileSource struct {
	Path string
}

// Subgraphs implements [Source].
func (s FileSource) Subgraphs(ctx context.Context) ([]Subgraph, error) {
	if s.Path == "" {
		return nil, errors.New(errors.ErrCodeSource, "snapshot path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sgs, err := ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "read snapshot")
	}
	return sgs, nil
}

var _ Source = FileSource{}
