// Package api provides the HTTP server for querying the binder system.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/inkwellhq/binder/pkg/bank"
)

// Config holds API server settings.
type Config struct {
	// ListenAddr is the address the server binds, e.g. ":8080".
	ListenAddr string
}

// Server is the HTTP API for resolving documents and inspecting the graph,
// cache, and admission gate.
type Server struct {
	config Config
	bank   *bank.Bank
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates the API server. The bank is injected so the HTTP, MCP,
// and CLI surfaces share one engine. An optional MCP handler is mounted at
// /mcp when non-nil.
func NewServer(config Config, b *bank.Bank, mcpHandler http.Handler, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		bank:   b,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/resolve/+", s.handleResolve)
	app.Get("/graph", s.handleGraph)
	app.Get("/graph/diagram", s.handleGraphDiagram)
	app.Get("/graph/order", s.handleLoadingOrder)
	app.Get("/health/cache", s.handleCacheHealth)
	app.Get("/health/admission", s.handleAdmissionHealth)
	app.Post("/warm", s.handleWarm)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
