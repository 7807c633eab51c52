package graph

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/inkwellhq/binder/pkg/document"
)

// Build scans every document in the store, parses its links, and returns a
// freshly populated graph. The previous graph, if any, is untouched; swap the
// result into a Handle so readers move between complete graphs only.
//
// A document that links nowhere and is linked from nowhere does not become a
// node.
func Build(ctx context.Context, store document.Store, parser document.Parser) (*Graph, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	g := New()
	for _, name := range names {
		text, err := store.Read(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", name, err)
		}

		for _, link := range parser.Links(text) {
			g.AddEdge(name, link.Target, edgeKind(link.Kind))
		}
	}

	return g, nil
}

func edgeKind(kind document.LinkKind) EdgeKind {
	if kind == document.KindTransclusion {
		return KindTransclusion
	}
	return KindReference
}

// Handle is an atomically swappable reference to the current graph.
// Resolvers read through the handle; a rebuild installs its finished graph
// with a single Swap so no reader ever sees a partially built graph.
type Handle struct {
	ptr atomic.Pointer[Graph]
}

// NewHandle creates a handle holding an empty graph.
func NewHandle() *Handle {
	h := &Handle{}
	h.ptr.Store(New())
	return h
}

// Graph returns the current graph. Never nil.
func (h *Handle) Graph() *Graph {
	return h.ptr.Load()
}

// Swap atomically replaces the current graph. A nil graph is ignored.
func (h *Handle) Swap(g *Graph) {
	if g == nil {
		return
	}
	h.ptr.Store(g)
}
