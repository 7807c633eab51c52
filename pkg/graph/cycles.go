package graph

// DetectCycles finds reference/transclusion cycles by depth-first traversal
// from every node, tracking the set of nodes on the current path. When a
// traversal revisits a node already on its path, the closed loop is emitted
// as one cycle (first and last entries equal) and the traversal does not
// descend past it.
//
// Cycles reachable from multiple starting nodes are reported once per start,
// so the same loop may appear rotated; callers wanting set-unique cycles must
// dedupe themselves. An acyclic graph yields an empty result. DetectCycles
// never fails; it is a pure query.
func (g *Graph) DetectCycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var cycles [][]string

	for _, start := range g.order {
		path := make([]string, 0, 8)
		onPath := make(map[string]int)
		cycles = g.walkCycles(start, path, onPath, cycles)
	}

	return cycles
}

// walkCycles is the recursive DFS step. onPath maps a node name to its index
// in path so a closing edge can be rewound to the loop entry point.
func (g *Graph) walkCycles(node string, path []string, onPath map[string]int, cycles [][]string) [][]string {
	if at, ok := onPath[node]; ok {
		cycle := make([]string, 0, len(path)-at+1)
		cycle = append(cycle, path[at:]...)
		cycle = append(cycle, node)
		return append(cycles, cycle)
	}

	onPath[node] = len(path)
	path = append(path, node)

	for _, e := range g.out[node] {
		cycles = g.walkCycles(e.Target, path, onPath, cycles)
	}

	delete(onPath, node)
	return cycles
}
