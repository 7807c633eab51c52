package graph

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	nodeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	cycleNodeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const (
	referenceArrow     = "-->"
	transclusionArrow  = "- ->"
	diagramNodesPerRow = 4
)

// Diagram renders the snapshot as terminal text: each document in a box
// (cycle members bordered red), then one line per edge. Reference edges use
// a solid arrow, transclusion edges a dashed one.
func (s Snapshot) Diagram() string {
	if len(s.Nodes) == 0 {
		return "(empty graph)\n"
	}

	onCycle := make(map[string]bool)
	for _, cycle := range s.Cycles {
		for _, name := range cycle {
			onCycle[name] = true
		}
	}

	var b strings.Builder

	// Node boxes, a few per row so wide binders stay readable.
	for row := 0; row < len(s.Nodes); row += diagramNodesPerRow {
		end := min(row+diagramNodesPerRow, len(s.Nodes))

		boxes := make([]string, 0, end-row)
		for _, name := range s.Nodes[row:end] {
			style := nodeStyle
			if onCycle[name] {
				style = cycleNodeStyle
			}
			boxes = append(boxes, style.Render(name))
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, e := range s.Edges {
		arrow := referenceArrow
		if e.Kind == KindTransclusion {
			arrow = transclusionArrow
		}
		b.WriteString("  " + e.Source + " " + arrow + " " + e.Target + "\n")
	}

	b.WriteString("\n")
	b.WriteString(legendStyle.Render("--> reference    - -> transclusion"))
	b.WriteString("\n")
	b.WriteString(legendStyle.Render(s.Summary))
	b.WriteString("\n")

	return b.String()
}
