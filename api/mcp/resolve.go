package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkwellhq/binder/pkg/resolve"
	"github.com/inkwellhq/binder/pkg/utils"
)

var (
	resolveToolName    = "resolve_document"
	resolveDescription = "Resolve a memory-bank document: every ![[embed]] directive is replaced with the referenced document's (or section's) fully expanded content. Returns both the original and resolved text."
)

// ResolveInput represents the input arguments for the resolve tool.
type ResolveInput struct {
	Name string `json:"name" jsonschema:"the document name to resolve, e.g. architecture/caching"`
}

// ResolveOutput represents the output of the resolve tool.
type ResolveOutput struct {
	Name          string `json:"name"`
	Resolved      string `json:"resolved"`
	HadDirectives bool   `json:"had_directives"`
	CacheHits     uint64 `json:"cache_hits"`
	CacheMisses   uint64 `json:"cache_misses"`
}

// handleResolve processes a resolve_document request.
func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP resolve request", "name", input.Name)

	resolution, err := s.config.Bank.ResolveDocument(ctx, input.Name)
	if err != nil {
		// Cycles and depth overruns are content problems the assistant can
		// surface to the user; report them as tool errors with the detail.
		var cycle resolve.CircularDependencyError
		var depth resolve.MaxDepthExceededError
		if errors.As(err, &cycle) || errors.As(err, &depth) {
			return toolError(fmt.Sprintf("Cannot resolve %s: %v", input.Name, err)), ResolveOutput{}, nil
		}

		logger.Error("resolution failed", "name", input.Name, "error", err)
		return toolError(fmt.Sprintf("Failed to resolve %s: %v", input.Name, err)), ResolveOutput{}, nil
	}

	logger.Debug("MCP resolve complete",
		"name", resolution.Name,
		"preview", utils.Truncate(resolution.Resolved, 120),
	)

	stats := resolution.CacheStats
	return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: resolution.Resolved},
			},
		}, ResolveOutput{
			Name:          resolution.Name,
			Resolved:      resolution.Resolved,
			HadDirectives: resolution.HadDirectives,
			CacheHits:     stats.Hits,
			CacheMisses:   stats.Misses,
		}, nil
}

// toolError builds an error-carrying tool result.
func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
