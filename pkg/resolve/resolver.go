// Package resolve expands transclusion directives in binder documents.
//
// Resolution is recursive: an embedded document's own directives are
// expanded before its content is spliced in, so a file can transclude a file
// that itself transcludes. Two guards bound the recursion: a per-call stack
// rejects revisiting a document already being expanded (a cycle), and a
// depth limit rejects chains longer than the configured maximum.
//
// Resolved (target, section) fragments are memoized through the shared cache
// manager, within and across top-level calls; the binder watcher invalidates
// them when documents change.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/inkwellhq/binder/pkg/cache"
	"github.com/inkwellhq/binder/pkg/document"
	"github.com/inkwellhq/binder/pkg/logger"
)

// DefaultMaxDepth bounds transclusion chains.
const DefaultMaxDepth = 5

// Config holds Resolver dependencies and settings.
type Config struct {
	// Store reads raw document text.
	Store document.Store

	// Parser scans text for directives and section boundaries.
	Parser document.Parser

	// Cache memoizes resolved (target, section) fragments. Required.
	Cache *cache.Manager[string]

	// MaxDepth bounds transclusion chains. Defaults to DefaultMaxDepth.
	MaxDepth int

	// Logger receives resolution diagnostics. Defaults to a nop logger.
	Logger *slog.Logger
}

// Stats is the resolver's own view of its cache usage.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}

// Resolver expands transclusion directives. Safe for concurrent use; each
// top-level Resolve call carries its own resolution stack.
type Resolver struct {
	store    document.Store
	parser   document.Parser
	cache    *cache.Manager[string]
	maxDepth int
	logger   *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResolver creates a transclusion resolver.
func NewResolver(c Config) (*Resolver, error) {
	if c.Store == nil {
		return nil, errors.New("document store is required")
	}
	if c.Parser == nil {
		return nil, errors.New("document parser is required")
	}
	if c.Cache == nil {
		return nil, errors.New("cache manager is required")
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	return &Resolver{
		store:    c.Store,
		parser:   c.Parser,
		cache:    c.Cache,
		maxDepth: c.MaxDepth,
		logger:   c.Logger,
	}, nil
}

// Resolve expands every transclusion directive in content, which belongs to
// the named source document. Text without directives comes back unchanged
// without touching the cache. Directives are substituted strictly left to
// right; each embedded document is fully resolved before it is spliced in.
//
// Fails with CircularDependencyError or MaxDepthExceededError; both abort
// the whole call.
func (r *Resolver) Resolve(ctx context.Context, content, source string) (string, error) {
	if !r.parser.HasEmbeds(content) {
		return content, nil
	}

	st := newStack(r.maxDepth)
	if !st.push(source) {
		return "", MaxDepthExceededError{Document: source, Limit: r.maxDepth}
	}

	return r.expand(ctx, content, st)
}

// CacheStats reports the resolver's own hit/miss counts against the shared
// cache, and the cache's current physical size.
func (r *Resolver) CacheStats() Stats {
	return Stats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Size:   r.cache.Stats().Size,
	}
}

// expand rewrites one document's text, descending into each transclusion
// target. The stack holds every document on the current chain, including the
// one whose text is being rewritten.
func (r *Resolver) expand(ctx context.Context, content string, st *stack) (string, error) {
	links := r.parser.Links(content)

	var out strings.Builder
	cursor := 0

	for _, link := range links {
		if link.Kind != document.KindTransclusion {
			continue
		}

		fragment, err := r.fragment(ctx, link, st)
		if err != nil {
			var missing document.NotFoundError
			if errors.As(err, &missing) {
				// A dangling embed is content to fix, not a reason to fail
				// the whole resolution. Leave the directive in place.
				r.logger.Warn("embed target missing", "target", link.Target)
				continue
			}
			return "", err
		}

		out.WriteString(content[cursor:link.Position])
		out.WriteString(fragment)
		cursor = link.Position + len(link.Raw)
	}

	out.WriteString(content[cursor:])
	return out.String(), nil
}

// fragment produces the fully resolved, optionally section-filtered content
// for one directive, consulting the memoization cache first.
func (r *Resolver) fragment(ctx context.Context, link document.Link, st *stack) (string, error) {
	if st.contains(link.Target) {
		return "", CircularDependencyError{Path: st.chainWith(link.Target)}
	}

	key := memoKey(link.Target, link.Section)
	if cached, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return cached, nil
	}
	r.misses.Add(1)

	text, err := r.store.Read(ctx, link.Target)
	if err != nil {
		var missing document.NotFoundError
		if errors.As(err, &missing) {
			return "", missing
		}
		return "", fmt.Errorf("reading embed target %s: %w", link.Target, err)
	}

	if !st.push(link.Target) {
		return "", MaxDepthExceededError{Document: link.Target, Limit: r.maxDepth}
	}
	resolved, err := r.expand(ctx, text, st)
	st.pop()
	if err != nil {
		return "", err
	}

	fragment := resolved
	if link.Section != "" {
		fragment = r.section(resolved, link)
	}

	r.cache.Set(key, fragment)
	return fragment, nil
}

// section filters resolved text down to the heading whose slug matches the
// directive. When no heading matches, the whole document is used instead of
// failing: a renamed heading should degrade, not break, its embedders.
func (r *Resolver) section(resolved string, link document.Link) string {
	for _, s := range r.parser.Sections(resolved) {
		if s.Slug == link.Section {
			return s.Content
		}
	}

	r.logger.Debug("embed section not found, using whole document",
		"target", link.Target,
		"section", link.Section,
	)
	return resolved
}

// memoKey is the shared-cache key for a resolved (target, section) pair.
func memoKey(target, section string) string {
	if section == "" {
		return target
	}
	return target + "#" + section
}
