// Package mcp provides an MCP (Model Context Protocol) server for the binder
// system, so coding assistants can ask for fully resolved memory-bank
// documents and inspect the dependency graph and engine health directly.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkwellhq/binder/pkg/bank"
	"github.com/inkwellhq/binder/pkg/utils"
)

// Config holds MCP server dependencies.
type Config struct {
	// Bank is the shared resolution engine.
	Bank *bank.Bank

	// Logger is the configured slog logger.
	Logger *slog.Logger
}

// Server wraps an MCP server exposing the binder tools.
type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates an MCP server with the resolve, graph, and health tools.
func NewServer(c Config) (*Server, error) {
	if c.Bank == nil {
		return nil, errors.New("bank is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "binder",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        resolveToolName,
		Description: resolveDescription,
	}, s.handleResolve)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        graphToolName,
		Description: graphDescription,
	}, s.handleGraph)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        healthToolName,
		Description: healthDescription,
	}, s.handleHealth)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
