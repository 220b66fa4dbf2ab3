package nodelink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/render/styles"
)

// stmtSep joins statements inside a graph or cluster body.
const stmtSep = "\n  "

// Options configures diagram generation.
type Options struct {
	// Rules are the style tables for node encoding.
	// A zero value uses [styles.DefaultRules].
	Rules styles.Rules
}

func (o Options) rules() styles.Rules {
	if o.Rules.Status == nil && o.Rules.Types == nil && o.Rules.Priorities == nil {
		return styles.DefaultRules()
	}
	return o.Rules
}

// ToDOT converts a subgraph to Graphviz DOT source.
//
// Epic clusters come first, numbered cluster_0, cluster_1, ... in the order
// of [Group]; epic keys are never used as identifiers. Root nodes and then
// root edges follow at the top level.
func ToDOT(sg issue.Subgraph, opts Options) (string, error) {
	return NewEncoder(opts).Encode(sg)
}

// Encoder converts subgraphs to DOT with a fixed set of style rules.
// It holds no mutable state and is safe for concurrent use.
type Encoder struct {
	rules styles.Rules
}

// NewEncoder creates an encoder for opts.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{rules: opts.rules()}
}

// Encode converts sg to DOT source. See [ToDOT].
func (e *Encoder) Encode(sg issue.Subgraph) (string, error) {
	return e.EncodeGrouping(Group(sg))
}

// EncodeGrouping converts an already grouped subgraph to DOT source.
func (e *Encoder) EncodeGrouping(g Grouping) (string, error) {
	var stmts []string
	for i, c := range g.Clusters {
		block, err := e.cluster(c, i)
		if err != nil {
			return "", err
		}
		stmts = append(stmts, block)
	}
	root, err := e.statements(g.Root)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, root...)

	var sb strings.Builder
	sb.WriteString("digraph{\n")
	sb.WriteString("rankdir=LR\n")
	sb.WriteString("node [shape=plain]\n")
	sb.WriteString(strings.Join(stmts, stmtSep))
	sb.WriteString("\n}")
	return sb.String(), nil
}

func (e *Encoder) cluster(c Cluster, id int) (string, error) {
	stmts, err := e.statements(c)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("subgraph cluster_" + strconv.Itoa(id) + " {\n")
	sb.WriteString("style=filled;\n")
	sb.WriteString("color=lightgrey;\n")
	sb.WriteString(strings.Join(stmts, stmtSep))
	sb.WriteString("\n}")
	return sb.String(), nil
}

// statements encodes the nodes of c followed by its edges.
func (e *Encoder) statements(c Cluster) ([]string, error) {
	stmts := make([]string, 0, c.Len())
	for _, it := range c.Nodes {
		s, err := EncodeNode(e.rules, it)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", it.Key, err)
		}
		stmts = append(stmts, s)
	}
	for _, l := range c.Edges {
		stmts = append(stmts, EncodeLink(l))
	}
	return stmts, nil
}
