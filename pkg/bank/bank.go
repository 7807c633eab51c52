// Package bank composes the resolution engine: document store, parser,
// dependency graph, two-tier cache, transclusion resolver, and admission
// controller, behind one facade the API, MCP, and CLI surfaces share.
package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwellhq/binder/pkg/admission"
	"github.com/inkwellhq/binder/pkg/cache"
	"github.com/inkwellhq/binder/pkg/document"
	"github.com/inkwellhq/binder/pkg/graph"
	"github.com/inkwellhq/binder/pkg/logger"
	"github.com/inkwellhq/binder/pkg/resolve"
)

// Config holds Bank dependencies and settings.
type Config struct {
	// Store reads raw document text. Required.
	Store document.Store

	// Parser scans text for links and sections. Required.
	Parser document.Parser

	// MaxDepth bounds transclusion chains. Defaults to resolve.DefaultMaxDepth.
	MaxDepth int

	// CacheTTL and LRUCapacity configure the cache tiers.
	CacheTTL    time.Duration
	LRUCapacity int

	// MaxConcurrent bounds simultaneous admitted resolutions.
	MaxConcurrent int64

	// ResolveTimeout is the per-attempt deadline for admitted resolutions.
	ResolveTimeout time.Duration

	// MaxAttempts bounds retries for admitted resolutions.
	MaxAttempts int

	// MandatoryDocuments are always warmed first at startup.
	MandatoryDocuments []string

	// Logger receives engine diagnostics. Defaults to a nop logger.
	Logger *slog.Logger
}

// Resolution is the result of resolving one document.
type Resolution struct {
	Name          string        `json:"name"`
	Original      string        `json:"original"`
	Resolved      string        `json:"resolved"`
	HadDirectives bool          `json:"had_directives"`
	CacheStats    resolve.Stats `json:"cache_stats"`
}

// Bank is the resolution engine facade. Safe for concurrent use.
type Bank struct {
	store    document.Store
	parser   document.Parser
	graphs   *graph.Handle
	cache    *cache.Manager[string]
	resolver *resolve.Resolver
	gate     *admission.Controller
	warmer   *cache.Warmer[string]
	logger   *slog.Logger

	resolveTimeout time.Duration
	maxAttempts    int
}

// New creates a Bank and builds the initial dependency graph.
func New(ctx context.Context, c Config) (*Bank, error) {
	if c.Store == nil {
		return nil, errors.New("document store is required")
	}
	if c.Parser == nil {
		return nil, errors.New("document parser is required")
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	manager := cache.NewManager[string](cache.Config{
		TTL:         c.CacheTTL,
		LRUCapacity: c.LRUCapacity,
		Logger:      c.Logger,
	})

	resolver, err := resolve.NewResolver(resolve.Config{
		Store:    c.Store,
		Parser:   c.Parser,
		Cache:    manager,
		MaxDepth: c.MaxDepth,
		Logger:   c.Logger,
	})
	if err != nil {
		return nil, err
	}

	b := &Bank{
		store:    c.Store,
		parser:   c.Parser,
		graphs:   graph.NewHandle(),
		cache:    manager,
		resolver: resolver,
		gate: admission.NewController(admission.Config{
			MaxConcurrent: c.MaxConcurrent,
			Logger:        c.Logger,
		}),
		logger:         c.Logger,
		resolveTimeout: c.ResolveTimeout,
		maxAttempts:    c.MaxAttempts,
	}

	b.warmer = cache.NewWarmer(manager, b.load, c.Logger)
	b.registerStrategies(c.MandatoryDocuments)

	if err := b.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("building initial graph: %w", err)
	}

	return b, nil
}

// ResolveDocument reads the named document and expands its transclusion
// directives, under admission control: the call blocks for a concurrency
// slot, runs under a deadline, and transient failures retry with backoff.
// Content failures (cycles, depth, unknown document) surface unretried.
func (b *Bank) ResolveDocument(ctx context.Context, name string) (*Resolution, error) {
	return admission.Run(ctx, b.gate, "resolve "+name, b.resolveTimeout, b.maxAttempts,
		func(ctx context.Context) (*Resolution, error) {
			return b.resolveDocument(ctx, name)
		})
}

func (b *Bank) resolveDocument(ctx context.Context, name string) (*Resolution, error) {
	original, err := b.store.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	hadDirectives := b.parser.HasEmbeds(original)

	resolved, err := b.resolver.Resolve(ctx, original, name)
	if err != nil {
		return nil, err
	}

	// Opportunistically pull in what tends to be read alongside this
	// document. Failures only dent the prefetch counters.
	go func() {
		prefetchCtx, cancel := context.WithTimeout(context.Background(), b.resolveTimeout)
		defer cancel()
		b.cache.PrefetchRelated(prefetchCtx, name, b.load)
	}()

	return &Resolution{
		Name:          name,
		Original:      original,
		Resolved:      resolved,
		HadDirectives: hadDirectives,
		CacheStats:    b.resolver.CacheStats(),
	}, nil
}

// Rebuild rescans the whole binder and swaps in a freshly built dependency
// graph. Readers move between complete graphs only.
func (b *Bank) Rebuild(ctx context.Context) error {
	g, err := graph.Build(ctx, b.store, b.parser)
	if err != nil {
		return err
	}

	b.graphs.Swap(g)
	b.logger.Debug("dependency graph rebuilt", "documents", g.Size())
	return nil
}

// Graph returns the current dependency graph.
func (b *Bank) Graph() *graph.Graph {
	return b.graphs.Graph()
}

// GraphSnapshot captures the current graph's nodes, edges, and cycles.
func (b *Bank) GraphSnapshot() graph.Snapshot {
	return b.graphs.Graph().Snapshot()
}

// LoadingOrder returns the topological document loading order from seeds.
func (b *Bank) LoadingOrder(seeds []string) []string {
	return b.graphs.Graph().LoadingOrder(seeds)
}

// CacheHealth reports the shared cache's counters.
func (b *Bank) CacheHealth() cache.Stats {
	return b.cache.Stats()
}

// RecentKeys returns up to limit cache keys in most-recent-first order.
func (b *Bank) RecentKeys(limit int) []string {
	return b.cache.RecentKeys(limit)
}

// WarmDocuments resolves and caches the named documents, returning how many
// were warmed. Used to seed the cache from persisted recent-document state.
func (b *Bank) WarmDocuments(ctx context.Context, names []string) int {
	return b.cache.Warm(ctx, names, b.load)
}

// AdmissionHealth reports the admission gate's occupancy.
func (b *Bank) AdmissionHealth() admission.Health {
	return b.gate.Health()
}

// Invalidate drops the cached whole-document fragment for name. A changed
// document also staleness-poisons its section fragments and every cached
// fragment that transcludes it, so the watcher clears the cache wholesale
// instead of calling this per key.
func (b *Bank) Invalidate(name string) {
	b.cache.Invalidate(name)
}

// load is the cache-facing loader: a memo key is "name" or "name#section",
// and the value is that fragment fully resolved.
func (b *Bank) load(ctx context.Context, key string) (string, error) {
	name, section, _ := strings.Cut(key, "#")

	text, err := b.store.Read(ctx, name)
	if err != nil {
		return "", err
	}

	resolved, err := b.resolver.Resolve(ctx, text, name)
	if err != nil {
		return "", err
	}

	if section == "" {
		return resolved, nil
	}

	for _, s := range b.parser.Sections(resolved) {
		if s.Slug == section {
			return s.Content, nil
		}
	}

	return resolved, nil
}
