package markdown_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/document"
	"github.com/inkwellhq/binder/pkg/document/markdown"
)

var _ = Describe("Parser", func() {
	var p *markdown.Parser

	BeforeEach(func() {
		p = markdown.NewParser()
	})

	Describe("Links", func() {
		It("returns nil for text without links", func() {
			Expect(p.Links("plain prose, [not a link], [[]нет]]")).To(BeEmpty())
		})

		It("parses a reference link", func() {
			links := p.Links("see [[architecture]] for details")

			Expect(links).To(HaveLen(1))
			Expect(links[0].Target).To(Equal("architecture"))
			Expect(links[0].Kind).To(Equal(document.KindReference))
			Expect(links[0].Section).To(BeEmpty())
			Expect(links[0].Raw).To(Equal("[[architecture]]"))
			Expect(links[0].Position).To(Equal(4))
		})

		It("parses a transclusion directive", func() {
			links := p.Links("![[active-context]]")

			Expect(links).To(HaveLen(1))
			Expect(links[0].Kind).To(Equal(document.KindTransclusion))
			Expect(links[0].Raw).To(Equal("![[active-context]]"))
		})

		It("slugifies the section fragment", func() {
			links := p.Links("![[architecture#Caching Strategy]]")

			Expect(links).To(HaveLen(1))
			Expect(links[0].Target).To(Equal("architecture"))
			Expect(links[0].Section).To(Equal("caching-strategy"))
		})

		It("ignores the display alias after a pipe", func() {
			links := p.Links("[[architecture|the big picture]]")

			Expect(links).To(HaveLen(1))
			Expect(links[0].Target).To(Equal("architecture"))
		})

		It("returns links in source order with positions", func() {
			text := "[[a]] then ![[b]] then [[c#sec]]"
			links := p.Links(text)

			Expect(links).To(HaveLen(3))
			Expect(links[0].Target).To(Equal("a"))
			Expect(links[1].Target).To(Equal("b"))
			Expect(links[2].Target).To(Equal("c"))
			Expect(links[0].Position).To(BeNumerically("<", links[1].Position))
			Expect(links[1].Position).To(BeNumerically("<", links[2].Position))
		})

		It("keeps slashes in document names", func() {
			links := p.Links("![[architecture/caching]]")

			Expect(links).To(HaveLen(1))
			Expect(links[0].Target).To(Equal("architecture/caching"))
		})

		It("skips links whose target is only whitespace", func() {
			Expect(p.Links("[[   ]]")).To(BeEmpty())
		})
	})

	Describe("HasEmbeds", func() {
		It("is true only when a transclusion directive is present", func() {
			Expect(p.HasEmbeds("plain [[reference]] text")).To(BeFalse())
			Expect(p.HasEmbeds("embed ![[here]] now")).To(BeTrue())
			Expect(p.HasEmbeds("no links at all")).To(BeFalse())
		})
	})

	Describe("Sections", func() {
		It("returns nil for text without headings", func() {
			Expect(p.Sections("just prose\nacross lines")).To(BeEmpty())
		})

		It("splits on ATX headings with nesting", func() {
			text := "intro\n\n# Title\nalpha\n\n## Sub\nbeta\n\n# Next\ngamma\n"
			sections := p.Sections(text)

			Expect(sections).To(HaveLen(3))

			Expect(sections[0].Slug).To(Equal("title"))
			Expect(sections[0].Heading).To(Equal("Title"))
			// A section runs to the next heading of equal or higher level,
			// so nested subsections stay inside their parent.
			Expect(sections[0].Content).To(Equal("# Title\nalpha\n\n## Sub\nbeta\n"))

			Expect(sections[1].Slug).To(Equal("sub"))
			Expect(sections[1].Content).To(Equal("## Sub\nbeta\n"))

			Expect(sections[2].Slug).To(Equal("next"))
			Expect(sections[2].Content).To(Equal("# Next\ngamma\n"))
		})

		It("includes the heading line in the content", func() {
			sections := p.Sections("# Only\nbody\n")

			Expect(sections).To(HaveLen(1))
			Expect(sections[0].Content).To(Equal("# Only\nbody\n"))
		})

		It("strips trailing closing hashes from the heading text", func() {
			sections := p.Sections("## Closed Heading ##\nbody\n")

			Expect(sections).To(HaveLen(1))
			Expect(sections[0].Heading).To(Equal("Closed Heading"))
			Expect(sections[0].Slug).To(Equal("closed-heading"))
		})
	})
})

var _ = Describe("Slugify", func() {
	It("lowercases and hyphenates", func() {
		Expect(markdown.Slugify("Caching Strategy")).To(Equal("caching-strategy"))
	})

	It("strips punctuation", func() {
		Expect(markdown.Slugify("Hello, World!")).To(Equal("hello-world"))
	})

	It("collapses runs of whitespace", func() {
		Expect(markdown.Slugify("  спец   Wide \t Gaps  ")).To(Equal("wide-gaps"))
	})

	It("keeps existing hyphens and underscores", func() {
		Expect(markdown.Slugify("active-context_v2")).To(Equal("active-context_v2"))
	})
})
