package bank

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inkwellhq/binder/pkg/document/fsstore"
)

// watchDebounce coalesces bursts of filesystem events (editors typically
// fire several per save) into one rebuild.
const watchDebounce = 250 * time.Millisecond

// Watch keeps the cache and graph consistent with the binder directory:
// whenever a markdown file is created, written, renamed, or removed, the
// cache is cleared, the dependency graph is rebuilt, and the warming
// strategies re-run. Blocks until ctx is cancelled.
//
// Watch only works when the Bank's store is filesystem-backed; other stores
// return an error.
func (b *Bank) Watch(ctx context.Context) error {
	store, ok := b.store.(*fsstore.Store)
	if !ok {
		return fmt.Errorf("watching requires a filesystem store, have %T", b.store)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// fsnotify does not recurse; register every subdirectory.
	root := store.Root()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watching binder tree: %w", err)
	}

	b.logger.Info("watching binder for changes", "root", root)

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// New directories must be registered to keep recursing.
			if event.Has(fsnotify.Create) && isDir(event.Name) &&
				!strings.HasPrefix(filepath.Base(event.Name), ".") {
				_ = watcher.Add(event.Name)
			}

			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			b.logger.Debug("binder change observed", "file", event.Name, "op", event.Op.String())

			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceC = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("watcher error", "error", err)

		case <-debounceC:
			debounce = nil
			debounceC = nil
			b.refresh(ctx)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// refresh is the watcher's consistency pass: stale fragments go, the graph
// is rebuilt from the changed tree, and the cache is re-warmed.
func (b *Bank) refresh(ctx context.Context) {
	b.cache.Clear()

	if err := b.Rebuild(ctx); err != nil {
		b.logger.Error("graph rebuild failed after change", "error", err)
		return
	}

	results := b.Warm(ctx)
	warmed := 0
	for _, r := range results {
		warmed += r.Warmed
	}
	b.logger.Info("binder refreshed", "warmed", warmed)
}
