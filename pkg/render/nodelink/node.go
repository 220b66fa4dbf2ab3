package nodelink

import (
	"strconv"
	"strings"

	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/render/styles"
)

const (
	innerTableOpen = `<TABLE BORDER="0" CELLBORDER="1" CELLPADDING="4" CELLSPACING="0">`
	exitFrameOpen  = `<TABLE BORDER="1" CELLBORDER="0" CELLPADDING="2" CELLSPACING="0"><TR><TD>`
	entryFrameOpen = `<TABLE BORDER="4" CELLBORDER="0" CELLPADDING="0" CELLSPACING="0"><TR><TD>`
	frameClose     = `</TD></TR></TABLE>`
)

// EncodeNode renders the item it as a DOT node statement.
// The only failure is a priority missing from rules.
func EncodeNode(rules styles.Rules, it issue.Item) (string, error) {
	glyph, err := rules.PriorityLabel(it.Priority)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(strconv.Quote(it.Key))
	sb.WriteString("[label=<")
	if it.Analysis.Entry {
		sb.WriteString(entryFrameOpen)
	}
	if it.Analysis.Exit {
		sb.WriteString(exitFrameOpen)
	}
	writeTable(&sb, rules, it, glyph)
	if it.Analysis.Exit {
		sb.WriteString(frameClose)
	}
	if it.Analysis.Entry {
		sb.WriteString(frameClose)
	}
	sb.WriteString(">];")
	return sb.String(), nil
}

func writeTable(sb *strings.Builder, rules styles.Rules, it issue.Item, glyph string) {
	sb.WriteString(innerTableOpen)
	sb.WriteString("<TR>")
	sb.WriteString(`<TD BGCOLOR="` + rules.TypeColor(it.Type) + `">` + rules.TypeLabel(it.Type) + `</TD>`)
	sb.WriteString(`<TD BGCOLOR="` + labelColor(it) + `" ALIGN="TEXT">` + styles.Cell(it.Key, styles.KeyWidth) + `</TD>`)
	sb.WriteString(`<TD BGCOLOR="` + rules.StatusColor(it.StatusCategory) + `">` + glyph + " " + formatScore(it.Analysis.TotalScore) + `</TD>`)
	sb.WriteString("</TR>")
	sb.WriteString(`<TR><TD COLSPAN="3" BGCOLOR="` + styles.ColorWhite + `">` + styles.Cell(it.Summary, styles.SummaryWidth) + `</TD></TR>`)
	sb.WriteString("</TABLE>")
}

func labelColor(it issue.Item) string {
	if it.Analysis.HasWarnings() {
		return styles.ColorWarning
	}
	return styles.ColorWhite
}

// formatScore prints the shortest exact representation: 7, 2.5, 0.125.
func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
