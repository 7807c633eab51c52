package graph_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/graph"
	testutils "github.com/inkwellhq/binder/pkg/utils/test"
)

var _ = Describe("Build", func() {
	var (
		ctx    context.Context
		parser *markdown.Parser
	)

	BeforeEach(func() {
		ctx = context.Background()
		parser = markdown.NewParser()
	})

	It("builds typed edges from every scanned document", func() {
		store := testutils.NewMockStore(map[string]string{
			"project-brief":  "See [[architecture]] and load ![[active-context]].",
			"architecture":   "Details in ![[architecture/caching]].",
			"active-context": "No links here.",
		})

		g, err := graph.Build(ctx, store, parser)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Dependencies("project-brief")).To(Equal([]string{"architecture", "active-context"}))
		Expect(g.Dependencies("architecture")).To(Equal([]string{"architecture/caching"}))

		edges := g.Edges()
		kinds := make(map[string]graph.EdgeKind)
		for _, e := range edges {
			kinds[e.Source+"->"+e.Target] = e.Kind
		}
		Expect(kinds["project-brief->architecture"]).To(Equal(graph.KindReference))
		Expect(kinds["project-brief->active-context"]).To(Equal(graph.KindTransclusion))
	})

	It("leaves unlinked documents out of the graph", func() {
		store := testutils.NewMockStore(map[string]string{
			"island": "Nothing links here and it links nowhere.",
			"a":      "Embed ![[b]].",
			"b":      "Leaf.",
		})

		g, err := graph.Build(ctx, store, parser)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Has("island")).To(BeFalse())
		Expect(g.Size()).To(Equal(2))
	})

	It("includes edges to documents missing from the store", func() {
		store := testutils.NewMockStore(map[string]string{
			"a": "Embed ![[ghost]].",
		})

		g, err := graph.Build(ctx, store, parser)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Has("ghost")).To(BeTrue())
		Expect(g.Dependencies("a")).To(Equal([]string{"ghost"}))
	})

	It("propagates read failures", func() {
		store := testutils.NewMockStore(map[string]string{
			"a": "Embed ![[b]].",
			"b": "Leaf.",
		})
		store.FailOn = "b"

		_, err := graph.Build(ctx, store, parser)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("reading document b"))
	})
})

var _ = Describe("Handle", func() {
	It("starts with an empty graph, never nil", func() {
		h := graph.NewHandle()
		Expect(h.Graph()).NotTo(BeNil())
		Expect(h.Graph().Size()).To(BeZero())
	})

	It("swaps in a replacement graph atomically", func() {
		h := graph.NewHandle()

		g := graph.New()
		g.AddEdge("a", "b", graph.KindTransclusion)
		h.Swap(g)

		Expect(h.Graph().Size()).To(Equal(2))
	})

	It("ignores a nil swap", func() {
		h := graph.NewHandle()
		g := graph.New()
		g.AddEdge("a", "b", graph.KindTransclusion)
		h.Swap(g)

		h.Swap(nil)
		Expect(h.Graph().Size()).To(Equal(2))
	})
})
