package admission

import (
	"fmt"
	"time"
)

// TimeoutError reports that an operation kept exceeding its deadline through
// every allowed attempt.
type TimeoutError struct {
	// Op is the operation name given to Run.
	Op string

	// Timeout is the per-attempt deadline that was exceeded.
	Timeout time.Duration

	// Attempts is how many tries were made.
	Attempts int
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %s timed out after %d attempts (timeout %s)", e.Op, e.Attempts, e.Timeout)
}

// FailureError reports that an operation kept failing with retryable
// connection-type errors through every allowed attempt. It chains the last
// underlying cause.
type FailureError struct {
	Op       string
	Attempts int
	Err      error
}

func (e FailureError) Error() string {
	return fmt.Sprintf("operation %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e FailureError) Unwrap() error {
	return e.Err
}
