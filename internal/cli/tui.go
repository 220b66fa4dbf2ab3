package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/jirascope/pkg/issue"
	"github.com/matzehuels/jirascope/pkg/render/nodelink"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SubgraphListModel - Interactive subgraph selection
// =============================================================================

// subgraphSummary is the precomputed row shown for one subgraph.
type subgraphSummary struct {
	nodes    int
	edges    int
	clusters int
	warnings int
	dangling int
}

func summarize(sg issue.Subgraph) subgraphSummary {
	return subgraphSummary{
		nodes:    len(sg.Nodes),
		edges:    len(sg.Edges),
		clusters: len(nodelink.Group(sg).Clusters),
		warnings: sg.WarningCount(),
		dangling: len(sg.DanglingLinks()),
	}
}

// SubgraphListModel is the bubbletea model for interactive subgraph selection.
type SubgraphListModel struct {
	Subgraphs []issue.Subgraph
	Cursor    int
	Selected  *issue.Subgraph
	Height    int
	Offset    int

	summaries []subgraphSummary
}

// NewSubgraphListModel creates a new subgraph list model.
func NewSubgraphListModel(subgraphs []issue.Subgraph) SubgraphListModel {
	summaries := make([]subgraphSummary, len(subgraphs))
	for i, sg := range subgraphs {
		summaries[i] = summarize(sg)
	}
	return SubgraphListModel{
		Subgraphs: subgraphs,
		Height:    15,
		summaries: summaries,
	}
}

func (m SubgraphListModel) Init() tea.Cmd {
	return nil
}

func (m SubgraphListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Subgraphs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Subgraphs) == 0 {
				return m, nil
			}
			sg := m.Subgraphs[m.Cursor]
			m.Selected = &sg
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SubgraphListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Subgraph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ render  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Subgraphs) {
		end = len(m.Subgraphs)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.summaries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		warnings := "—"
		if s.warnings > 0 {
			warnings = strconv.Itoa(s.warnings)
		}

		rows = append(rows, []string{
			cursor,
			m.Subgraphs[i].Label,
			strconv.Itoa(s.nodes),
			strconv.Itoa(s.edges),
			strconv.Itoa(s.clusters),
			warnings,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Subgraph", "Nodes", "Edges", "Epics", "Warnings").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Subgraphs) {
				return lipgloss.NewStyle()
			}
			s := m.summaries[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 5 && s.warnings > 0 {
				base = base.Foreground(colorYellow)
			} else if col >= 2 {
				base = base.Foreground(colorGray)
			}

			if isCurrent {
				if col == 1 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	status := fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Subgraphs))
	if n := len(m.Subgraphs); n > 0 && m.summaries[m.Cursor].dangling > 0 {
		status += fmt.Sprintf("  %d dangling links", m.summaries[m.Cursor].dangling)
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}
