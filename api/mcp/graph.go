package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkwellhq/binder/pkg/graph"
)

var (
	graphToolName    = "dependency_graph"
	graphDescription = "Inspect the memory bank's dependency graph: nodes, edges, detected cycles, and optionally a safe loading order for a set of seed documents."
)

// GraphInput represents the input arguments for the graph tool.
type GraphInput struct {
	Seeds []string `json:"seeds,omitempty" jsonschema:"optional seed documents; when set, the output includes a dependency-respecting loading order for them"`
}

// GraphOutput represents the output of the graph tool.
type GraphOutput struct {
	Snapshot     graph.Snapshot `json:"snapshot"`
	LoadingOrder []string       `json:"loading_order,omitempty"`
}

// handleGraph processes a dependency_graph request.
func (s *Server) handleGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, GraphOutput, error) {
	snapshot := s.config.Bank.GraphSnapshot()

	out := GraphOutput{Snapshot: snapshot}
	if len(input.Seeds) > 0 {
		out.LoadingOrder = s.config.Bank.LoadingOrder(input.Seeds)
	}

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, GraphOutput{}, fmt.Errorf("marshaling graph snapshot: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, out, nil
}
