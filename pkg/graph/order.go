package graph

import "sort"

// LoadingOrder returns a topological ordering of the documents reachable
// from the given seeds: for every edge a -> b between reachable documents,
// a appears before b. Documents a coding session should load first therefore
// come out first, with each document preceding the content it pulls in.
//
// The order is computed with Kahn's algorithm over the reachable subgraph:
// an in-degree table and a FIFO queue, with ties broken by lexicographic
// node name for determinism. Documents on a cycle never reach in-degree zero
// and are omitted from the result.
func (g *Graph) LoadingOrder(seeds []string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Restrict to the subgraph reachable from the seeds.
	reachable := make(map[string]struct{})
	frontier := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if _, ok := g.nodes[s]; !ok {
			continue
		}
		if _, seen := reachable[s]; seen {
			continue
		}
		reachable[s] = struct{}{}
		frontier = append(frontier, s)
	}

	for len(frontier) > 0 {
		node := frontier[0]
		frontier = frontier[1:]
		for _, e := range g.out[node] {
			if _, seen := reachable[e.Target]; seen {
				continue
			}
			reachable[e.Target] = struct{}{}
			frontier = append(frontier, e.Target)
		}
	}

	// In-degree over reachable nodes, counting each edge.
	indegree := make(map[string]int, len(reachable))
	for node := range reachable {
		indegree[node] = 0
	}
	for node := range reachable {
		for _, e := range g.out[node] {
			if _, ok := reachable[e.Target]; ok {
				indegree[e.Target]++
			}
		}
	}

	// Seed the FIFO queue with all initially-free nodes, lexicographically.
	var queue []string
	for node, deg := range indegree {
		if deg == 0 {
			queue = append(queue, node)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(reachable))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		// Nodes freed by this step enter the queue together, sorted, so the
		// overall order is deterministic regardless of map iteration.
		var freed []string
		for _, e := range g.out[node] {
			if _, ok := reachable[e.Target]; !ok {
				continue
			}
			indegree[e.Target]--
			if indegree[e.Target] == 0 {
				freed = append(freed, e.Target)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}

	return order
}
