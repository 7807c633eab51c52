package bank_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/bank"
	"github.com/inkwellhq/binder/pkg/document"
	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/resolve"
	testutils "github.com/inkwellhq/binder/pkg/utils/test"
)

var _ = Describe("Bank", func() {
	var (
		store *testutils.MockStore
		ctx   context.Context
	)

	newBank := func(mandatory ...string) *bank.Bank {
		b, err := bank.New(ctx, bank.Config{
			Store:              store,
			Parser:             markdown.NewParser(),
			MaxDepth:           5,
			CacheTTL:           time.Minute,
			LRUCapacity:        100,
			MaxConcurrent:      4,
			ResolveTimeout:     time.Second,
			MaxAttempts:        1,
			MandatoryDocuments: mandatory,
		})
		Expect(err).ToNot(HaveOccurred())
		return b
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStore(map[string]string{
			"projectbrief":   "# Brief\ngoals\n",
			"active-context": "now: ![[projectbrief]] and see [[architecture]]",
			"architecture":   "# Architecture\n\n## Caching\n![[projectbrief]]\n",
		})
	})

	Describe("New", func() {
		It("requires a store", func() {
			_, err := bank.New(ctx, bank.Config{Parser: markdown.NewParser()})
			Expect(err).To(MatchError(ContainSubstring("store is required")))
		})

		It("requires a parser", func() {
			_, err := bank.New(ctx, bank.Config{Store: store})
			Expect(err).To(MatchError(ContainSubstring("parser is required")))
		})

		It("builds the initial dependency graph", func() {
			b := newBank()

			snapshot := b.GraphSnapshot()
			Expect(snapshot.Nodes).To(ContainElements("projectbrief", "active-context", "architecture"))
			Expect(snapshot.Cycles).To(BeEmpty())
		})
	})

	Describe("ResolveDocument", func() {
		It("expands directives and reports the outcome", func() {
			b := newBank()

			res, err := b.ResolveDocument(ctx, "active-context")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Name).To(Equal("active-context"))
			Expect(res.HadDirectives).To(BeTrue())
			Expect(res.Original).To(Equal("now: ![[projectbrief]] and see [[architecture]]"))
			Expect(res.Resolved).To(Equal("now: # Brief\ngoals\n and see [[architecture]]"))
		})

		It("passes documents without directives through unchanged", func() {
			b := newBank()

			res, err := b.ResolveDocument(ctx, "projectbrief")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.HadDirectives).To(BeFalse())
			Expect(res.Resolved).To(Equal(res.Original))
		})

		It("surfaces unknown documents", func() {
			b := newBank()

			_, err := b.ResolveDocument(ctx, "ghost")
			Expect(err).To(MatchError(document.NotFoundError{Name: "ghost"}))
		})

		It("surfaces cycles without retrying", func() {
			store.Put("ping", "![[pong]]")
			store.Put("pong", "![[ping]]")
			b := newBank()

			reads := len(store.Reads)
			_, err := b.ResolveDocument(ctx, "ping")

			var circular resolve.CircularDependencyError
			Expect(errors.As(err, &circular)).To(BeTrue())
			// One read for ping, one for pong: a content failure is final.
			Expect(len(store.Reads) - reads).To(Equal(2))
		})

		It("serves repeated fragments from the cache", func() {
			b := newBank()

			_, err := b.ResolveDocument(ctx, "active-context")
			Expect(err).ToNot(HaveOccurred())
			_, err = b.ResolveDocument(ctx, "active-context")
			Expect(err).ToNot(HaveOccurred())

			Expect(store.ReadCount("active-context")).To(Equal(2))
			Expect(store.ReadCount("projectbrief")).To(Equal(1))
		})

		It("re-reads a fragment after invalidation", func() {
			b := newBank()

			_, err := b.ResolveDocument(ctx, "active-context")
			Expect(err).ToNot(HaveOccurred())

			b.Invalidate("projectbrief")

			_, err = b.ResolveDocument(ctx, "active-context")
			Expect(err).ToNot(HaveOccurred())
			Expect(store.ReadCount("projectbrief")).To(Equal(2))
		})
	})

	Describe("Rebuild", func() {
		It("picks up newly linked documents", func() {
			b := newBank()

			store.Put("roadmap", "next: ![[active-context]]")
			Expect(b.Rebuild(ctx)).To(Succeed())

			Expect(b.GraphSnapshot().Nodes).To(ContainElement("roadmap"))
		})
	})

	Describe("LoadingOrder", func() {
		It("orders dependencies before their dependents", func() {
			order := newBank().LoadingOrder([]string{"active-context"})

			Expect(order).To(ContainElements("projectbrief", "active-context", "architecture"))
			Expect(indexOf(order, "projectbrief")).To(BeNumerically("<", indexOf(order, "active-context")))
			Expect(indexOf(order, "architecture")).To(BeNumerically("<", indexOf(order, "active-context")))
		})
	})

	Describe("Warm", func() {
		It("runs the standard strategies in priority order", func() {
			b := newBank("projectbrief")

			results := b.Warm(ctx)

			Expect(results).To(HaveLen(4))
			Expect(results[0].Strategy).To(Equal("mandatory-documents"))
			Expect(results[1].Strategy).To(Equal("hot-keys"))
			Expect(results[2].Strategy).To(Equal("recently-used"))
			Expect(results[3].Strategy).To(Equal("high-fan-out"))
			Expect(results[0].Warmed).To(Equal(1))
		})

		It("warms high fan-out documents", func() {
			store.Put("hub", "![[projectbrief]] ![[architecture]] ![[active-context]]")
			b := newBank()

			results := b.Warm(ctx)

			Expect(results[3].Success).To(BeTrue())
			Expect(results[3].Warmed).To(BeNumerically(">", 0))
			Expect(store.ReadCount("hub")).To(BeNumerically(">", 0))
		})

		It("can disable a strategy by name", func() {
			b := newBank("projectbrief")

			Expect(b.SetStrategyEnabled("mandatory-documents", false)).To(BeTrue())
			Expect(b.SetStrategyEnabled("no-such-strategy", false)).To(BeFalse())

			results := b.Warm(ctx)
			Expect(results).To(HaveLen(3))
		})
	})

	Describe("WarmDocuments", func() {
		It("seeds the cache and the recency order", func() {
			b := newBank()

			Expect(b.WarmDocuments(ctx, []string{"projectbrief", "architecture"})).To(Equal(2))
			Expect(b.RecentKeys(10)).To(ContainElements("projectbrief", "architecture"))
			Expect(b.CacheHealth().Size).To(BeNumerically(">", 0))
		})

		It("skips unknown documents", func() {
			b := newBank()

			Expect(b.WarmDocuments(ctx, []string{"projectbrief", "ghost"})).To(Equal(1))
		})
	})

	Describe("AdmissionHealth", func() {
		It("reports an idle gate as healthy", func() {
			h := newBank().AdmissionHealth()

			Expect(h.Healthy).To(BeTrue())
			Expect(h.InFlight).To(BeZero())
			Expect(h.MaxConcurrent).To(Equal(int64(4)))
		})
	})

	Describe("Watch", func() {
		It("refuses stores that are not filesystem backed", func() {
			err := newBank().Watch(ctx)
			Expect(err).To(MatchError(ContainSubstring("requires a filesystem store")))
		})
	})
})

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}
