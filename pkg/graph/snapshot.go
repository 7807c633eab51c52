package graph

import "fmt"

// Snapshot is a point-in-time, JSON-friendly view of the graph, including
// any cycles present. Served by the HTTP API and the MCP graph tool.
type Snapshot struct {
	Nodes   []string   `json:"nodes"`
	Edges   []Edge     `json:"edges"`
	Cycles  [][]string `json:"cycles"`
	Summary string     `json:"summary"`
}

// Snapshot captures the graph's current nodes, edges, and cycles.
func (g *Graph) Snapshot() Snapshot {
	nodes := g.Nodes()
	edges := g.Edges()
	cycles := g.DetectCycles()

	references := 0
	transclusions := 0
	for _, e := range edges {
		if e.Kind == KindTransclusion {
			transclusions++
		} else {
			references++
		}
	}

	summary := fmt.Sprintf("%d documents, %d edges (%d references, %d transclusions), %d cycle paths",
		len(nodes), len(edges), references, transclusions, len(cycles))

	return Snapshot{
		Nodes:   nodes,
		Edges:   edges,
		Cycles:  cycles,
		Summary: summary,
	}
}
