// ABOUTME: Driver-level error types surfaced to the renderer.
// ABOUTME: Distinguishes a timed-out round from transport failures.

package chat

import (
	"fmt"
	"time"
)

// TimeoutError marks a round that exceeded the configured ceiling. The
// session survives it; the user is returned to the prompt.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent did not respond within %s", e.Timeout)
}
