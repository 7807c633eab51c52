package resolve

import (
	"fmt"
	"strings"
)

// CircularDependencyError reports that expanding a directive would revisit a
// document already being expanded. Path is the full chain, first and last
// entries equal.
type CircularDependencyError struct {
	Path []string
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular transclusion: %s", strings.Join(e.Path, " -> "))
}

// MaxDepthExceededError reports that recursive expansion passed the
// configured depth bound. Document names where the bound was hit.
type MaxDepthExceededError struct {
	Document string
	Limit    int
}

func (e MaxDepthExceededError) Error() string {
	return fmt.Sprintf("transclusion depth limit %d exceeded at document %s", e.Limit, e.Document)
}
