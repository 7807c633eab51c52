package resolve_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/cache"
	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/resolve"
	testutils "github.com/inkwellhq/binder/pkg/utils/test"
)

var _ = Describe("Resolver", func() {
	var (
		store *testutils.MockStore
		ctx   context.Context
	)

	newResolver := func(maxDepth int) *resolve.Resolver {
		r, err := resolve.NewResolver(resolve.Config{
			Store:    store,
			Parser:   markdown.NewParser(),
			Cache:    cache.NewManager[string](cache.Config{TTL: time.Minute, LRUCapacity: 100}),
			MaxDepth: maxDepth,
		})
		Expect(err).ToNot(HaveOccurred())
		return r
	}

	BeforeEach(func() {
		store = testutils.NewMockStore(map[string]string{})
		ctx = context.Background()
	})

	Describe("NewResolver", func() {
		It("requires a store", func() {
			_, err := resolve.NewResolver(resolve.Config{
				Parser: markdown.NewParser(),
				Cache:  cache.NewManager[string](cache.Config{}),
			})
			Expect(err).To(MatchError(ContainSubstring("store is required")))
		})

		It("requires a parser", func() {
			_, err := resolve.NewResolver(resolve.Config{
				Store: store,
				Cache: cache.NewManager[string](cache.Config{}),
			})
			Expect(err).To(MatchError(ContainSubstring("parser is required")))
		})

		It("requires a cache", func() {
			_, err := resolve.NewResolver(resolve.Config{
				Store:  store,
				Parser: markdown.NewParser(),
			})
			Expect(err).To(MatchError(ContainSubstring("cache manager is required")))
		})
	})

	Describe("Resolve", func() {
		It("passes through text without directives", func() {
			r := newResolver(5)

			out, err := r.Resolve(ctx, "plain text with a [[reference]]", "source")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("plain text with a [[reference]]"))
			Expect(store.Reads).To(BeEmpty())
		})

		It("splices embedded content in place of the directive", func() {
			store.Put("snippet", "embedded words")
			r := newResolver(5)

			out, err := r.Resolve(ctx, "before ![[snippet]] after", "source")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("before embedded words after"))
		})

		It("leaves reference links untouched alongside directives", func() {
			store.Put("snippet", "X")
			r := newResolver(5)

			out, err := r.Resolve(ctx, "see [[other]] and ![[snippet]]", "source")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("see [[other]] and X"))
		})

		It("resolves nested directives depth first", func() {
			store.Put("outer", "outer(![[inner]])")
			store.Put("inner", "innermost")
			r := newResolver(5)

			out, err := r.Resolve(ctx, "> ![[outer]] <", "source")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("> outer(innermost) <"))
		})

		It("substitutes multiple directives left to right", func() {
			store.Put("a", "A")
			store.Put("b", "B")
			r := newResolver(5)

			out, err := r.Resolve(ctx, "![[a]]-![[b]]-![[a]]", "source")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("A-B-A"))
		})

		It("leaves the directive in place when the target is missing", func() {
			r := newResolver(5)

			out, err := r.Resolve(ctx, "keep ![[ghost]] here", "source")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("keep ![[ghost]] here"))
		})

		Context("section directives", func() {
			BeforeEach(func() {
				store.Put("guide", "# Guide\nintro\n\n## Setup Steps\none\ntwo\n\n## Teardown\nthree\n")
			})

			It("filters to the matching section", func() {
				r := newResolver(5)

				out, err := r.Resolve(ctx, "![[guide#Setup Steps]]", "source")
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(Equal("## Setup Steps\none\ntwo\n"))
			})

			It("falls back to the whole document when the section is gone", func() {
				r := newResolver(5)

				out, err := r.Resolve(ctx, "![[guide#renamed]]", "source")
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(Equal("# Guide\nintro\n\n## Setup Steps\none\ntwo\n\n## Teardown\nthree\n"))
			})
		})

		Context("cycles", func() {
			It("rejects a direct cycle with the full chain", func() {
				store.Put("b", "back to ![[a]]")
				r := newResolver(5)

				_, err := r.Resolve(ctx, "![[b]]", "a")

				var circular resolve.CircularDependencyError
				Expect(err).To(BeAssignableToTypeOf(circular))
				Expect(err.(resolve.CircularDependencyError).Path).To(Equal([]string{"a", "b", "a"}))
			})

			It("rejects a self embed", func() {
				r := newResolver(5)

				_, err := r.Resolve(ctx, "me again: ![[a]]", "a")

				var circular resolve.CircularDependencyError
				Expect(err).To(BeAssignableToTypeOf(circular))
				Expect(err.(resolve.CircularDependencyError).Path).To(Equal([]string{"a", "a"}))
			})

			It("rejects an indirect cycle", func() {
				store.Put("b", "![[c]]")
				store.Put("c", "![[a]]")
				r := newResolver(5)

				_, err := r.Resolve(ctx, "![[b]]", "a")
				Expect(err).To(MatchError(ContainSubstring("circular transclusion: a -> b -> c -> a")))
			})

			It("allows the same document on separate branches", func() {
				store.Put("shared", "S")
				store.Put("left", "![[shared]]")
				store.Put("right", "![[shared]]")
				r := newResolver(5)

				out, err := r.Resolve(ctx, "![[left]] ![[right]]", "source")
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(Equal("S S"))
			})
		})

		Context("depth limit", func() {
			It("rejects chains past the configured bound", func() {
				store.Put("b", "![[c]]")
				store.Put("c", "![[d]]")
				store.Put("d", "bottom")
				r := newResolver(3)

				_, err := r.Resolve(ctx, "![[b]]", "a")

				var deep resolve.MaxDepthExceededError
				Expect(err).To(BeAssignableToTypeOf(deep))
				Expect(err.(resolve.MaxDepthExceededError).Document).To(Equal("d"))
				Expect(err.(resolve.MaxDepthExceededError).Limit).To(Equal(3))
			})

			It("permits chains exactly at the bound", func() {
				store.Put("b", "![[c]]")
				store.Put("c", "bottom")
				r := newResolver(3)

				out, err := r.Resolve(ctx, "![[b]]", "a")
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(Equal("bottom"))
			})
		})

		Context("memoization", func() {
			It("reads a repeated target once per call", func() {
				store.Put("m", "M")
				r := newResolver(5)

				_, err := r.Resolve(ctx, "![[m]] ![[m]] ![[m]]", "source")
				Expect(err).ToNot(HaveOccurred())
				Expect(store.ReadCount("m")).To(Equal(1))
			})

			It("reuses fragments across calls", func() {
				store.Put("m", "M")
				r := newResolver(5)

				_, err := r.Resolve(ctx, "![[m]]", "one")
				Expect(err).ToNot(HaveOccurred())
				_, err = r.Resolve(ctx, "![[m]]", "two")
				Expect(err).ToNot(HaveOccurred())

				Expect(store.ReadCount("m")).To(Equal(1))

				stats := r.CacheStats()
				Expect(stats.Hits).To(Equal(uint64(1)))
				Expect(stats.Misses).To(Equal(uint64(1)))
			})

			It("keys whole-document and section fragments separately", func() {
				store.Put("guide", "# Guide\nbody\n")
				r := newResolver(5)

				_, err := r.Resolve(ctx, "![[guide]]", "one")
				Expect(err).ToNot(HaveOccurred())
				_, err = r.Resolve(ctx, "![[guide#guide]]", "two")
				Expect(err).ToNot(HaveOccurred())

				Expect(store.ReadCount("guide")).To(Equal(2))
			})
		})
	})
})
