// Package styles maps tracker categories to diagram presentation and
// formats free text for HTML-like Graphviz labels.
//
// # Rules
//
// [Rules] holds three lookup tables: status category to color, item type to
// short label and color, and priority to a glyph. Status and type lookups
// fall back to white (and, for types, the first character of the type name).
// Priorities have no fallback: every priority used by the tracker is expected
// to be configured, so [Rules.PriorityLabel] returns an UNMAPPED_PRIORITY
// error for anything else.
//
// Rules are plain values. [DefaultRules] returns a fresh copy of the built-in
// tables and [Rules.Merge] layers configuration overrides on top, so encoders
// never share mutable state.
//
// # Text
//
// [Escape] neutralizes markup characters (including square brackets, which
// Graphviz label parsing treats specially) and [FixedWidth] truncates and
// pads key and summary cells so every node has the same width.
package styles
