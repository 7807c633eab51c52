package admission

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// retryableFragments is the message-keyword heuristic for connection-type
// failures. It is deliberately loose: transports and tool bridges wrap their
// errors inconsistently, so after the typed checks below this substring match
// is the fallback classification.
var retryableFragments = []string{
	"connection",
	"broken pipe",
	"connection reset",
	"resource",
	"stdio",
	"tool not found",
}

// Retryable reports whether err is a transient connection-type failure worth
// retrying. Typed checks run first (network errors, closed pipes/files,
// reset/refused connections); unrecognized errors fall through to the
// keyword heuristic. Context cancellation is never retryable here — timeouts
// are classified separately by the controller.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}
