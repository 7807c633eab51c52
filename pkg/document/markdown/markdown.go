// Package markdown implements document.Parser for wiki-linked markdown.
//
// Supported link syntax:
//
//	[[target]]            reference link
//	[[target#section]]    reference link into a section
//	![[target]]           transclusion directive (whole document)
//	![[target#section]]   transclusion directive (one section)
//
// Sections are delimited by ATX headings (#, ##, ...). Heading slugs follow
// the GitHub convention: lowercased, punctuation stripped, spaces hyphenated.
package markdown

import (
	"regexp"
	"strings"

	"github.com/inkwellhq/binder/pkg/document"
)

// linkPattern matches both reference and embed forms. The optional leading
// '!' decides the kind; the optional '#fragment' selects a section.
var linkPattern = regexp.MustCompile(`(!)?\[\[([^\[\]#|]+)(?:#([^\[\]|]+))?(?:\|[^\[\]]*)?\]\]`)

// embedPattern is the cheap existence probe used by HasEmbeds.
var embedPattern = regexp.MustCompile(`!\[\[[^\[\]]+\]\]`)

// headingPattern matches ATX headings at the start of a line.
var headingPattern = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t]*#*[ \t]*$`)

// slugStrip removes characters that do not survive slug normalization.
var slugStrip = regexp.MustCompile(`[^a-z0-9 \-_]`)

// Parser is a stateless document.Parser for wiki-linked markdown.
type Parser struct{}

// NewParser creates a markdown wiki-link parser.
func NewParser() *Parser {
	return &Parser{}
}

// Links returns all wiki links in text, in source order.
func (p *Parser) Links(text string) []document.Link {
	matches := linkPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]document.Link, 0, len(matches))
	for _, m := range matches {
		kind := document.KindReference
		if m[2] >= 0 {
			kind = document.KindTransclusion
		}

		target := strings.TrimSpace(text[m[4]:m[5]])
		if target == "" {
			continue
		}

		section := ""
		if m[6] >= 0 {
			section = Slugify(text[m[6]:m[7]])
		}

		links = append(links, document.Link{
			Target:   target,
			Section:  section,
			Kind:     kind,
			Raw:      text[m[0]:m[1]],
			Position: m[0],
		})
	}

	return links
}

// HasEmbeds reports whether text contains a transclusion directive.
func (p *Parser) HasEmbeds(text string) bool {
	return embedPattern.MatchString(text)
}

// Sections splits text into heading-delimited sections. A section runs from
// its heading line to the next heading of equal or higher level. Text before
// the first heading belongs to no section.
func (p *Parser) Sections(text string) []document.Section {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]document.Section, 0, len(matches))
	for i, m := range matches {
		level := m[3] - m[2]
		heading := text[m[4]:m[5]]

		// Content extends to the next heading of equal or higher level.
		end := len(text)
		for _, next := range matches[i+1:] {
			nextLevel := next[3] - next[2]
			if nextLevel <= level {
				end = next[0]
				break
			}
		}

		sections = append(sections, document.Section{
			Slug:    Slugify(heading),
			Heading: heading,
			Content: strings.TrimRight(text[m[0]:end], "\n") + "\n",
		})
	}

	return sections
}

// Slugify normalizes a heading or fragment into its slug form: lowercase,
// punctuation removed, runs of whitespace collapsed into single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "-")
	return s
}
