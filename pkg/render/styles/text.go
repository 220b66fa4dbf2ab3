package styles

import (
	"strings"
	"unicode/utf8"
)

// Cell widths, in characters.
const (
	KeyWidth     = 20
	SummaryWidth = KeyWidth + 2
)

const omission = "..."

var labelEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&#39;",
	`[`, "&#91;",
	`]`, "&#93;",
)

// Escape makes s safe inside an HTML-like Graphviz label.
func Escape(s string) string {
	return labelEscaper.Replace(s)
}

// Truncate shortens s to at most width characters, marking the cut with
// "...". Strings that fit are returned unchanged.
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	keep := width - len(omission)
	if keep <= 0 {
		return omission[:max(width, 0)]
	}
	runes := []rune(s)
	return string(runes[:keep]) + omission
}

// FixedWidth truncates s and right-pads it with spaces to exactly width
// characters.
func FixedWidth(s string, width int) string {
	s = Truncate(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// Cell formats s for a label cell of the given width: fixed width first,
// then escaped.
func Cell(s string, width int) string {
	return Escape(FixedWidth(s, width))
}
