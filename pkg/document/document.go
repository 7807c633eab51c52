// Package document defines the collaborator interfaces the resolution engine
// reads memory-bank content through.
//
// A binder is a directory of named markdown documents that reference each
// other with wiki links. Reference links ([[target]]) record a relationship;
// embed directives (![[target]] or ![[target#section]]) splice the target's
// content in place of the directive when a document is resolved.
//
// The [Store] and [Parser] interfaces are intentionally minimal so backends
// and syntaxes are pluggable: the engine never touches the filesystem or the
// markdown grammar directly.
package document

import "context"

// LinkKind distinguishes plain references from embed (transclusion) directives.
type LinkKind string

const (
	// KindReference is a plain [[target]] link. It creates a graph edge but
	// resolution leaves the link text untouched.
	KindReference LinkKind = "reference"

	// KindTransclusion is an embed directive, ![[target]] or
	// ![[target#section]]. Resolution replaces it with the target's content.
	KindTransclusion LinkKind = "transclusion"
)

// Link is one parsed wiki link occurrence in a document's text.
type Link struct {
	// Target is the referenced document name, without brackets or section.
	Target string

	// Section is the normalized heading slug after '#', empty for whole-document links.
	Section string

	// Kind marks the link as a reference or a transclusion directive.
	Kind LinkKind

	// Raw is the full matched directive text, used for splicing during resolution.
	Raw string

	// Position is the byte offset of the match in the source text.
	Position int
}

// Section is one heading-delimited region of a document.
type Section struct {
	// Slug is the normalized identifier for the heading (lowercase, hyphenated).
	Slug string

	// Heading is the original heading text without the leading '#' markers.
	Heading string

	// Content is the text under the heading, up to the next heading of equal
	// or higher level, including the heading line itself.
	Content string
}

// Parser scans document text for wiki links and section boundaries.
// Implementations live in subpackages (see markdown).
type Parser interface {
	// Links returns all wiki links in text, in source order.
	Links(text string) []Link

	// HasEmbeds reports whether text contains at least one transclusion
	// directive. Cheaper than Links for the resolver's fast exit.
	HasEmbeds(text string) bool

	// Sections splits text into heading-delimited sections.
	Sections(text string) []Section
}

// Store provides read access to raw document text by name.
type Store interface {
	// Read returns the raw text of the named document.
	// Returns NotFoundError if the document does not exist.
	Read(ctx context.Context, name string) (string, error)

	// Exists checks whether the named document is present in the store.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of all documents in the store.
	List(ctx context.Context) ([]string, error)

	// Close releases store resources.
	Close() error
}
