package resilience

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned while the breaker is rejecting calls.
	ErrCircuitOpen = errors.New("resilience: service unavailable, circuit open")

	// ErrTimeout is returned when a single attempt exceeds its timeout. It
	// wraps context.DeadlineExceeded.
	ErrTimeout = fmt.Errorf("resilience: attempt timed out: %w", context.DeadlineExceeded)
)
