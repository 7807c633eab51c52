// Package admission bounds the amount of resolution work in flight at once.
//
// Every externally triggered operation runs through [Run], which gates entry
// on a process-wide counting semaphore (callers beyond capacity block until a
// slot frees), applies a per-attempt deadline, and retries transient
// failures with a linearly increasing delay. Anything that is not a timeout
// or a connection-type failure propagates immediately.
//
// Construct one Controller at startup and inject it by reference wherever
// operations are admitted; there is no hidden global.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/inkwellhq/binder/pkg/logger"
)

const (
	// DefaultMaxConcurrent is the semaphore capacity when unconfigured.
	DefaultMaxConcurrent = 8

	// DefaultBaseDelay is the unit of the linear retry backoff:
	// attempt n waits n × base.
	DefaultBaseDelay = 500 * time.Millisecond

	// DefaultTimeout is the per-attempt deadline when the caller passes none.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the attempt bound when the caller passes none.
	DefaultMaxAttempts = 3
)

// Config holds Controller settings. Zero values fall back to defaults.
type Config struct {
	// MaxConcurrent is the number of operations that may run at once.
	MaxConcurrent int64

	// BaseDelay is the linear backoff unit between retries.
	BaseDelay time.Duration

	// Logger receives per-operation diagnostics. Defaults to a nop logger.
	Logger *slog.Logger
}

// Controller is the admission gate. Safe for concurrent use.
type Controller struct {
	sem       *semaphore.Weighted
	max       int64
	baseDelay time.Duration
	logger    *slog.Logger

	// inFlight mirrors semaphore occupancy; semaphore.Weighted has no
	// introspection of its own.
	inFlight atomic.Int64
}

// Health is a snapshot of the controller's occupancy.
type Health struct {
	Healthy            bool    `json:"healthy"`
	InFlight           int64   `json:"in_flight"`
	MaxConcurrent      int64   `json:"max_concurrent"`
	Available          int64   `json:"available"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// NewController creates an admission controller.
func NewController(c Config) *Controller {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	return &Controller{
		sem:       semaphore.NewWeighted(c.MaxConcurrent),
		max:       c.MaxConcurrent,
		baseDelay: c.BaseDelay,
		logger:    c.Logger,
	}
}

// Health reports current occupancy. The controller is healthy while at least
// one slot is free.
func (c *Controller) Health() Health {
	inFlight := c.inFlight.Load()

	return Health{
		Healthy:            inFlight < c.max,
		InFlight:           inFlight,
		MaxConcurrent:      c.max,
		Available:          c.max - inFlight,
		UtilizationPercent: 100 * float64(inFlight) / float64(c.max),
	}
}

// Run executes op under admission control: it blocks for a semaphore slot,
// then tries op up to maxAttempts times, each attempt under its own timeout
// deadline. Timeouts and connection-type failures (see Retryable) retry
// after baseDelay × attempt; any other error propagates on first occurrence.
//
// Exhausted retries surface as TimeoutError when the final failure was a
// deadline, or FailureError chaining the last cause otherwise. Cancelling
// ctx releases the slot and returns ctx's error.
func Run[T any](ctx context.Context, c *Controller, name string, timeout time.Duration, maxAttempts int, op func(context.Context) (T, error)) (T, error) {
	var zero T

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("awaiting admission for %s: %w", name, err)
	}
	c.inFlight.Add(1)
	defer func() {
		c.inFlight.Add(-1)
		c.sem.Release(1)
	}()

	opID := uuid.NewString()
	log := c.logger.With("op", name, "op_id", opID)

	var lastErr error
	timedOut := false

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := op(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}

		// A cancelled parent is the caller's doing, not a transient fault.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			timedOut = true
			lastErr = err
			log.Warn("attempt timed out", "attempt", attempt, "timeout", timeout)

		case Retryable(err):
			timedOut = false
			lastErr = err
			log.Warn("attempt hit connection-type failure", "attempt", attempt, "error", err)

		default:
			return zero, err
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(c.baseDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	if timedOut {
		return zero, TimeoutError{Op: name, Timeout: timeout, Attempts: maxAttempts}
	}
	return zero, FailureError{Op: name, Attempts: maxAttempts, Err: lastErr}
}
