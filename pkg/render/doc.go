// Package render turns DOT source into images.
//
// # Overview
//
// Diagram generation lives in the [nodelink] subpackage and produces DOT
// text. This package provides the last step: an [Engine] reads a DOT file and
// writes the rendered image next to it.
//
// Two engines are available:
//
//   - [ExecEngine] shells out to the Graphviz "dot" binary
//   - [GraphvizEngine] renders in-process with github.com/goccy/go-graphviz
//
// Pick one by name with [NewEngine]:
//
//	eng, err := render.NewEngine("exec", "dot")
//	err = eng.Render(ctx, "subdot/a.dot", "subgraphs/a.png", "png")
//
// The style tables and text helpers used by node encoding live in [styles].
//
// [nodelink]: github.com/matzehuels/jirascope/pkg/render/nodelink
// [styles]: github.com/matzehuels/jirascope/pkg/render/styles
package render
