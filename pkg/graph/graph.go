// Package graph maintains the in-memory dependency graph between binder
// documents.
//
// Nodes are document names; a node exists once it has been observed as the
// source or target of at least one link. Edges are typed: reference edges
// record a plain [[link]], transclusion edges record an ![[embed]] directive.
// Both kinds may coexist between the same pair of documents.
//
// Graphs are built wholesale from a document scan (see Builder) and swapped
// into a Handle as a single atomic replacement, so resolvers never observe a
// half-rebuilt graph.
package graph

import (
	"sync"
)

// EdgeKind is the type of relationship an edge records.
type EdgeKind string

const (
	// KindReference is a plain link between documents.
	KindReference EdgeKind = "reference"

	// KindTransclusion is an embed directive; resolution follows these edges.
	KindTransclusion EdgeKind = "transclusion"
)

// Edge is a directed, typed link from one document to another.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// Graph is the dependency graph over binder documents.
// All methods are safe for concurrent use.
type Graph struct {
	// mu is a read write sync mutex guarding all fields below
	mu sync.RWMutex

	// order holds node names in first-observed order
	order []string

	// nodes is the membership set backing order
	nodes map[string]struct{}

	// out maps a source node to its outgoing edges, insertion ordered
	out map[string][]Edge

	// in maps a target node to its incoming edges, insertion ordered
	in map[string][]Edge
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		out:   make(map[string][]Edge),
		in:    make(map[string][]Edge),
	}
}

// AddEdge records a directed edge. Nodes are created implicitly. Adding an
// identical (source, target, kind) triple again is a no-op; the same pair may
// carry one edge of each kind.
func (g *Graph) AddEdge(source, target string, kind EdgeKind) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range g.out[source] {
		if e.Target == target && e.Kind == kind {
			return
		}
	}

	g.addNode(source)
	g.addNode(target)

	edge := Edge{Source: source, Target: target, Kind: kind}
	g.out[source] = append(g.out[source], edge)
	g.in[target] = append(g.in[target], edge)
}

// Dependencies returns the targets of edges rooted at name, one entry per
// edge in insertion order. Unknown names yield an empty result, not an error.
func (g *Graph) Dependencies(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.out[name]
	targets := make([]string, 0, len(edges))
	for _, e := range edges {
		targets = append(targets, e.Target)
	}

	return targets
}

// Dependents returns the sources of edges targeting name, one entry per edge
// in insertion order.
func (g *Graph) Dependents(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.in[name]
	sources := make([]string, 0, len(edges))
	for _, e := range edges {
		sources = append(sources, e.Source)
	}

	return sources
}

// Nodes returns all node names in first-observed order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Edges returns all edges, grouped by source in node order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []Edge
	for _, name := range g.order {
		edges = append(edges, g.out[name]...)
	}

	return edges
}

// Has reports whether name is a node in the graph.
func (g *Graph) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[name]
	return ok
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.order)
}

// addNode registers a node if unseen. Callers must hold g.mu.
func (g *Graph) addNode(name string) {
	if _, ok := g.nodes[name]; ok {
		return
	}
	g.nodes[name] = struct{}{}
	g.order = append(g.order, name)
}
