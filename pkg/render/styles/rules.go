package styles

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/jirascope/pkg/errors"
)

// Colors used by the node encoder.
const (
	ColorWhite   = "#FFFFFF"
	ColorWarning = "#F08080"
)

// StatusStyle is the presentation of a workflow status category.
type StatusStyle struct {
	Color string `toml:"color"`
}

// TypeStyle is the presentation of an item type.
type TypeStyle struct {
	Label string `toml:"label"`
	Color string `toml:"color"`
}

// PriorityStyle is the presentation of a priority.
type PriorityStyle struct {
	Label string `toml:"label"`
}

// Rules are the lookup tables used to style diagram nodes.
type Rules struct {
	Status     map[string]StatusStyle   `toml:"status"`
	Types      map[string]TypeStyle     `toml:"types"`
	Priorities map[string]PriorityStyle `toml:"priorities"`
}

// DefaultRules returns the built-in tables. Each call returns new maps.
func DefaultRules() Rules {
	return Rules{
		Status: map[string]StatusStyle{
			"To Do":       {Color: "#007DBA"},
			"In Progress": {Color: "#F2A900"},
			"Done":        {Color: "#009A44"},
		},
		Types: map[string]TypeStyle{
			"Requirement": {Label: "R", Color: "#ADD8E6"},
			"Initiative":  {Label: "I", Color: "#DDA0DD"},
		},
		Priorities: map[string]PriorityStyle{
			"Highest": {Label: "⬆"},
			"High":    {Label: "⬈"},
			"Medium":  {Label: "⬌"},
			"Low":     {Label: "⬊"},
			"Lowest":  {Label: "⬇"},
		},
	}
}

// Merge returns a copy of r with every entry of overrides applied on top.
// Neither r nor overrides is modified.
func (r Rules) Merge(overrides Rules) Rules {
	out := Rules{
		Status:     maps.Clone(r.Status),
		Types:      maps.Clone(r.Types),
		Priorities: maps.Clone(r.Priorities),
	}
	if out.Status == nil {
		out.Status = make(map[string]StatusStyle)
	}
	if out.Types == nil {
		out.Types = make(map[string]TypeStyle)
	}
	if out.Priorities == nil {
		out.Priorities = make(map[string]PriorityStyle)
	}
	maps.Copy(out.Status, overrides.Status)
	maps.Copy(out.Types, overrides.Types)
	maps.Copy(out.Priorities, overrides.Priorities)
	return out
}

// Validate checks that every configured entry is usable.
func (r Rules) Validate() error {
	for _, k := range slices.Sorted(maps.Keys(r.Priorities)) {
		if r.Priorities[k].Label == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "priority %q has an empty label", k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(r.Status)) {
		if !isColor(r.Status[k].Color) {
			return errors.New(errors.ErrCodeInvalidConfig, "status %q has invalid color %q", k, r.Status[k].Color)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(r.Types)) {
		if c := r.Types[k].Color; c != "" && !isColor(c) {
			return errors.New(errors.ErrCodeInvalidConfig, "type %q has invalid color %q", k, c)
		}
	}
	return nil
}

// StatusColor returns the color for a status category, or white.
func (r Rules) StatusColor(category string) string {
	if s, ok := r.Status[category]; ok && s.Color != "" {
		return s.Color
	}
	return ColorWhite
}

// TypeColor returns the color for an item type, or white.
func (r Rules) TypeColor(typ string) string {
	if s, ok := r.Types[typ]; ok && s.Color != "" {
		return s.Color
	}
	return ColorWhite
}

// TypeLabel returns the short label for an item type. Unmapped types use
// their first character as given.
func (r Rules) TypeLabel(typ string) string {
	if s, ok := r.Types[typ]; ok && s.Label != "" {
		return s.Label
	}
	if typ == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(typ)
	return typ[:size]
}

// PriorityLabel returns the glyph for a priority.
func (r Rules) PriorityLabel(priority string) (string, error) {
	if s, ok := r.Priorities[priority]; ok {
		return s.Label, nil
	}
	return "", errors.New(errors.ErrCodeUnmappedPriority, "no glyph configured for priority %q", priority)
}

// isColor accepts Graphviz "#RRGGBB" / "#RRGGBBAA" colors and plain color
// names.
func isColor(s string) bool {
	if s == "" {
		return false
	}
	if !strings.HasPrefix(s, "#") {
		return !strings.ContainsAny(s, ` "<>&`)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return false
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
