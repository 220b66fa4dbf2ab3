// Package nodelink encodes tracker subgraphs as Graphviz DOT node-link
// diagrams.
//
// # Overview
//
// Each item becomes a plain node whose label is an HTML-like table: a type
// cell, the fixed-width key, and the priority glyph with the item's score,
// over a row holding the fixed-width summary. Items the analysis marked as
// exits get a thin frame, entries a heavy one; an item that is both gets the
// thin frame inside the heavy one.
//
// Items are grouped by epic with [Group]. Every epic becomes a filled,
// light-grey cluster holding its items and its containment links; items and
// links outside any epic are emitted at the top level after all clusters.
//
// # Usage
//
//	dot, err := nodelink.ToDOT(sg, nodelink.Options{Rules: styles.DefaultRules()})
//	if errors.Is(err, errors.ErrCodeUnmappedPriority) {
//	    // the style tables are missing a priority
//	}
//
// The generated DOT lays out left to right:
//
//	digraph{
//	rankdir=LR
//	node [shape=plain]
//	subgraph cluster_0 {
//	style=filled;
//	color=lightgrey;
//	"EPIC-1"[label=<...>];
//	  "EPIC-1"->"REQ-7";
//	}
//	}
//
// Rendering the DOT to an image is left to a render engine; see
// [github.com/matzehuels/jirascope/pkg/render].
package nodelink
