package api

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/inkwellhq/binder/pkg/document"
	"github.com/inkwellhq/binder/pkg/resolve"
)

// ErrorResponse is the JSON error envelope all handlers share.
type ErrorResponse struct {
	Error string `json:"error"`

	// CyclePath is set for circular transclusion failures.
	CyclePath []string `json:"cycle_path,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleResolve resolves one document and returns the original and expanded
// text with the resolver's cache stats. The wildcard segment lets document
// names contain slashes ("architecture/caching").
func (s *Server) handleResolve(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("+"))
	if err != nil || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document name required"})
	}

	resolution, err := s.bank.ResolveDocument(c.Context(), name)
	if err != nil {
		return s.resolveError(c, err)
	}

	return c.JSON(resolution)
}

// resolveError maps resolution failures to HTTP statuses: content failures
// are the caller's to fix (4xx), everything else is 5xx.
func (s *Server) resolveError(c *fiber.Ctx, err error) error {
	var cycle resolve.CircularDependencyError
	if errors.As(err, &cycle) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:     cycle.Error(),
			CyclePath: cycle.Path,
		})
	}

	var depth resolve.MaxDepthExceededError
	if errors.As(err, &depth) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: depth.Error()})
	}

	var missing document.NotFoundError
	if errors.As(err, &missing) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: missing.Error()})
	}

	s.logger.Error("resolution failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "resolution failed"})
}

// handleGraph returns the dependency graph snapshot.
func (s *Server) handleGraph(c *fiber.Ctx) error {
	return c.JSON(s.bank.GraphSnapshot())
}

// handleGraphDiagram returns the graph rendered as terminal text.
func (s *Server) handleGraphDiagram(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(s.bank.GraphSnapshot().Diagram())
}

// handleLoadingOrder returns the topological loading order for the seed
// documents given in the comma-separated "seeds" query parameter.
func (s *Server) handleLoadingOrder(c *fiber.Ctx) error {
	raw := c.Query("seeds")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "seeds query parameter required"})
	}

	seeds := strings.Split(raw, ",")
	for i := range seeds {
		seeds[i] = strings.TrimSpace(seeds[i])
	}

	return c.JSON(fiber.Map{
		"seeds": seeds,
		"order": s.bank.LoadingOrder(seeds),
	})
}

// handleCacheHealth returns the cache manager's counters.
func (s *Server) handleCacheHealth(c *fiber.Ctx) error {
	return c.JSON(s.bank.CacheHealth())
}

// handleAdmissionHealth returns the admission gate's occupancy snapshot.
func (s *Server) handleAdmissionHealth(c *fiber.Ctx) error {
	return c.JSON(s.bank.AdmissionHealth())
}

// handleWarm runs the warming strategies and reports per-strategy outcomes.
func (s *Server) handleWarm(c *fiber.Ctx) error {
	return c.JSON(s.bank.Warm(c.Context()))
}
