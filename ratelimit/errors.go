package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	ErrRateLimited   = errors.New("ratelimit: rate limit exceeded")
	ErrEmptyIdentity = errors.New("ratelimit: identity is empty")
	ErrNilStore      = errors.New("ratelimit: store is nil")
)

// BlockedError is the error form of a Blocked result. It wraps ErrRateLimited.
type BlockedError struct {
	Reason     string
	RetryAfter time.Duration
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s (retry in %s)", ErrRateLimited.Error(), e.Reason, e.RetryAfter)
}

func (e *BlockedError) Unwrap() error { return ErrRateLimited }
