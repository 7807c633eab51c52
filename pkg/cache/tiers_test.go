package cache_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/cache"
)

var _ = Describe("LRU", func() {
	It("returns misses for unknown keys", func() {
		c := cache.NewLRU[string](2)

		_, ok := c.Get("nope")
		Expect(ok).To(BeFalse())
	})

	It("stores and retrieves values", func() {
		c := cache.NewLRU[string](2)
		c.Set("a", "alpha")

		value, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("alpha"))
	})

	It("evicts the least recently used entry when over capacity", func() {
		c := cache.NewLRU[string](2)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		Expect(c.Set("c", "gamma")).To(BeTrue())
		Expect(c.Contains("a")).To(BeFalse())
		Expect(c.Contains("b")).To(BeTrue())
		Expect(c.Contains("c")).To(BeTrue())
	})

	It("refreshes recency on Get", func() {
		c := cache.NewLRU[string](2)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		_, _ = c.Get("a")
		c.Set("c", "gamma")

		Expect(c.Contains("a")).To(BeTrue())
		Expect(c.Contains("b")).To(BeFalse())
	})

	It("updates in place without evicting", func() {
		c := cache.NewLRU[string](2)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		Expect(c.Set("a", "alpha2")).To(BeFalse())
		Expect(c.Len()).To(Equal(2))

		value, _ := c.Get("a")
		Expect(value).To(Equal("alpha2"))
	})

	It("does not touch recency order on Contains", func() {
		c := cache.NewLRU[string](2)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		Expect(c.Contains("a")).To(BeTrue())
		c.Set("c", "gamma")

		Expect(c.Contains("a")).To(BeFalse())
	})

	It("deletes entries", func() {
		c := cache.NewLRU[string](2)
		c.Set("a", "alpha")

		Expect(c.Delete("a")).To(BeTrue())
		Expect(c.Delete("a")).To(BeFalse())
		Expect(c.Len()).To(BeZero())
	})

	It("clamps capacity to at least one", func() {
		c := cache.NewLRU[string](0)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		Expect(c.Len()).To(Equal(1))
		Expect(c.Contains("b")).To(BeTrue())
	})

	It("reports removed count on Clear", func() {
		c := cache.NewLRU[string](3)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		Expect(c.Clear()).To(Equal(2))
		Expect(c.Len()).To(BeZero())
	})
})

var _ = Describe("TTL", func() {
	It("serves fresh entries", func() {
		c := cache.NewTTL[string](time.Minute)
		c.Set("a", "alpha")

		value, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("alpha"))
	})

	It("expires entries after their lifetime", func() {
		c := cache.NewTTL[string](20 * time.Millisecond)
		c.Set("a", "alpha")

		time.Sleep(40 * time.Millisecond)

		_, ok := c.Get("a")
		Expect(ok).To(BeFalse())
		Expect(c.Len()).To(BeZero())
	})

	It("restarts the expiry clock on rewrite", func() {
		c := cache.NewTTL[string](60 * time.Millisecond)
		c.Set("a", "alpha")

		time.Sleep(40 * time.Millisecond)
		c.Set("a", "alpha2")
		time.Sleep(40 * time.Millisecond)

		value, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("alpha2"))
	})

	It("sweeps expired entries in bulk", func() {
		c := cache.NewTTL[string](20 * time.Millisecond)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		time.Sleep(40 * time.Millisecond)
		c.Set("c", "gamma")

		Expect(c.Cleanup()).To(Equal(2))
		Expect(c.Len()).To(Equal(1))
	})

	It("deletes and clears", func() {
		c := cache.NewTTL[string](time.Minute)
		c.Set("a", "alpha")
		c.Set("b", "beta")

		Expect(c.Delete("a")).To(BeTrue())
		Expect(c.Delete("a")).To(BeFalse())
		Expect(c.Clear()).To(Equal(1))
	})
})
