package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkwellhq/binder/pkg/admission"
	"github.com/inkwellhq/binder/pkg/cache"
)

var (
	healthToolName    = "bank_health"
	healthDescription = "Report the memory bank's cache counters (hits, misses, evictions, prefetch activity) and the admission gate's occupancy."
)

// HealthInput represents the input arguments for the health tool.
type HealthInput struct{}

// HealthOutput represents the output of the health tool.
type HealthOutput struct {
	Cache     cache.Stats      `json:"cache"`
	Admission admission.Health `json:"admission"`
}

// handleHealth processes a bank_health request.
func (s *Server) handleHealth(ctx context.Context, req *mcp.CallToolRequest, input HealthInput) (*mcp.CallToolResult, HealthOutput, error) {
	out := HealthOutput{
		Cache:     s.config.Bank.CacheHealth(),
		Admission: s.config.Bank.AdmissionHealth(),
	}

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, HealthOutput{}, fmt.Errorf("marshaling health report: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, out, nil
}
