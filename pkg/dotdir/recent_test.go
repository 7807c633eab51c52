package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inkwellhq/binder/pkg/dotdir"
)

var _ = Describe("recent state", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-recent-test-*")
		Expect(err).NotTo(HaveOccurred())

		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadRecentState", func() {
		It("returns nil, nil when no state exists", func() {
			state, err := m.LoadRecentState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips a saved state", func() {
			saved := &dotdir.RecentState{
				Keys:    []string{"architecture/caching", "project-brief"},
				SavedAt: time.Now(),
			}
			Expect(m.SaveRecent(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadRecentState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).ToNot(BeNil())
			Expect(loaded.Keys).To(Equal(saved.Keys))
		})

		It("errors on malformed state", func() {
			path := filepath.Join(tmpDir, "recent.json")
			Expect(os.WriteFile(path, []byte("{not json"), 0o600)).To(Succeed())

			_, err := m.LoadRecentState(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing recent state"))
		})
	})

	Describe("SaveRecent", func() {
		It("rejects a nil state", func() {
			Expect(m.SaveRecent(nil, tmpDir)).NotTo(Succeed())
		})
	})

	Describe("ClearRecent", func() {
		It("removes a saved state", func() {
			saved := &dotdir.RecentState{Keys: []string{"project-brief"}}
			Expect(m.SaveRecent(saved, tmpDir)).To(Succeed())
			Expect(m.ClearRecent(tmpDir)).To(Succeed())

			state, err := m.LoadRecentState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("is a no-op when no state exists", func() {
			Expect(m.ClearRecent(tmpDir)).To(Succeed())
		})
	})
})
