package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/inkwellhq/binder/pkg/logger"
)

// Strategy names a way of choosing keys worth pre-loading. Strategies are
// independent: each produces its own bounded candidate list and can be
// toggled without affecting the others.
type Strategy struct {
	// Name identifies the strategy in results and logs.
	Name string

	// Priority orders execution; lower runs earlier.
	Priority int

	// Enabled strategies run; disabled ones are skipped silently.
	Enabled bool

	// Keys produces the candidate keys to warm.
	Keys func(ctx context.Context) ([]string, error)
}

// StrategyResult captures one strategy's outcome for a warming run.
type StrategyResult struct {
	Strategy string        `json:"strategy"`
	Warmed   int           `json:"warmed"`
	Elapsed  time.Duration `json:"elapsed"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// Warmer runs warming strategies against a Manager in priority order.
// A strategy whose key-producing step fails is reported as a failed strategy
// without aborting the remaining ones.
type Warmer[V any] struct {
	manager    *Manager[V]
	load       Loader[V]
	strategies []Strategy
	logger     *slog.Logger
}

// NewWarmer creates a warmer over the given manager and loader.
func NewWarmer[V any](manager *Manager[V], load Loader[V], log *slog.Logger) *Warmer[V] {
	if log == nil {
		log = logger.Nop()
	}

	return &Warmer[V]{
		manager: manager,
		load:    load,
		logger:  log,
	}
}

// Register adds a strategy. Strategies run in ascending priority order;
// registration order breaks priority ties.
func (w *Warmer[V]) Register(s Strategy) error {
	if s.Name == "" {
		return fmt.Errorf("strategy needs a name")
	}
	if s.Keys == nil {
		return fmt.Errorf("strategy %s needs a Keys func", s.Name)
	}

	w.strategies = append(w.strategies, s)
	return nil
}

// SetEnabled toggles the named strategy. Reports whether it was found.
func (w *Warmer[V]) SetEnabled(name string, enabled bool) bool {
	for i := range w.strategies {
		if w.strategies[i].Name == name {
			w.strategies[i].Enabled = enabled
			return true
		}
	}
	return false
}

// Run executes all enabled strategies in priority order, timing each and
// recording its outcome. The returned results hold one entry per enabled
// strategy, in execution order.
func (w *Warmer[V]) Run(ctx context.Context) []StrategyResult {
	ordered := make([]Strategy, len(w.strategies))
	copy(ordered, w.strategies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var results []StrategyResult
	for _, s := range ordered {
		if !s.Enabled {
			continue
		}

		start := time.Now()
		keys, err := s.Keys(ctx)
		if err != nil {
			w.logger.Warn("warming strategy failed", "strategy", s.Name, "error", err)
			results = append(results, StrategyResult{
				Strategy: s.Name,
				Elapsed:  time.Since(start),
				Success:  false,
				Error:    err.Error(),
			})
			continue
		}

		warmed := w.manager.Warm(ctx, keys, w.load)
		elapsed := time.Since(start)

		w.logger.Info("warming strategy finished",
			"strategy", s.Name,
			"candidates", len(keys),
			"warmed", warmed,
			"elapsed", elapsed,
		)

		results = append(results, StrategyResult{
			Strategy: s.Name,
			Warmed:   warmed,
			Elapsed:  elapsed,
			Success:  true,
		})
	}

	return results
}
