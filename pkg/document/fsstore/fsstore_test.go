package fsstore_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/document"
	"github.com/inkwellhq/binder/pkg/document/fsstore"
)

var _ = Describe("Store", func() {
	var (
		root  string
		store *fsstore.Store
		ctx   context.Context
	)

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		ctx = context.Background()

		write("projectbrief.md", "# Brief\n")
		write("architecture/caching.md", "cache notes\n")

		var err error
		store, err = fsstore.NewStore(root)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("NewStore", func() {
		It("rejects a missing root", func() {
			_, err := fsstore.NewStore(filepath.Join(root, "nope"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects a file root", func() {
			_, err := fsstore.NewStore(filepath.Join(root, "projectbrief.md"))
			Expect(err).To(MatchError(ContainSubstring("not a directory")))
		})

		It("exposes the absolute root", func() {
			Expect(store.Root()).To(Equal(root))
			Expect(filepath.IsAbs(store.Root())).To(BeTrue())
		})
	})

	Describe("Read", func() {
		It("reads a document by name", func() {
			text, err := store.Read(ctx, "projectbrief")
			Expect(err).ToNot(HaveOccurred())
			Expect(text).To(Equal("# Brief\n"))
		})

		It("reads nested documents with slash names", func() {
			text, err := store.Read(ctx, "architecture/caching")
			Expect(err).ToNot(HaveOccurred())
			Expect(text).To(Equal("cache notes\n"))
		})

		It("returns NotFoundError for missing documents", func() {
			_, err := store.Read(ctx, "ghost")
			Expect(err).To(MatchError(document.NotFoundError{Name: "ghost"}))
		})

		It("rejects names that escape the root", func() {
			_, err := store.Read(ctx, "../outside")
			Expect(err).To(MatchError(ContainSubstring("invalid document name")))
		})

		It("rejects absolute names", func() {
			_, err := store.Read(ctx, "/etc/passwd")
			Expect(err).To(MatchError(ContainSubstring("invalid document name")))
		})

		It("respects a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := store.Read(cancelled, "projectbrief")
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("Exists", func() {
		It("is true for a present document", func() {
			Expect(store.Exists(ctx, "projectbrief")).To(BeTrue())
		})

		It("is false for a missing document", func() {
			Expect(store.Exists(ctx, "ghost")).To(BeFalse())
		})

		It("is false when the path is a directory", func() {
			write("notes.md/inner.md", "x")

			ok, err := store.Exists(ctx, "notes")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("returns all document names", func() {
			names, err := store.List(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(names).To(ConsistOf("projectbrief", "architecture/caching"))
		})

		It("skips non-markdown files", func() {
			write("diagram.png", "binary")

			names, err := store.List(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(names).ToNot(ContainElement("diagram"))
		})

		It("skips dot directories", func() {
			write(".binder/config.md", "internal")
			write(".git/objects/readme.md", "internal")

			names, err := store.List(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(names).To(ConsistOf("projectbrief", "architecture/caching"))
		})

		It("matches the extension case-insensitively", func() {
			write("UPPER.MD", "shout")

			names, err := store.List(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(names).To(ContainElement("UPPER"))
		})
	})
})

var _ = Describe("NameFromPath", func() {
	It("drops the extension and normalizes separators", func() {
		Expect(fsstore.NameFromPath(filepath.Join("architecture", "caching.md"))).To(Equal("architecture/caching"))
		Expect(fsstore.NameFromPath("projectbrief.md")).To(Equal("projectbrief"))
	})
})
