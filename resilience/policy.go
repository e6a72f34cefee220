package resilience

import (
	"context"
	"errors"
	"time"
)

// PolicyConfig configures a Policy. A zero Timeout disables the
// per-attempt timeout; a nil Breaker pointer in the built Policy disables
// breaking.
type PolicyConfig struct {
	// Timeout bounds each attempt.
	Timeout time.Duration `yaml:"timeout"`

	Retry RetryConfig `yaml:"retry"`

	// Breaker configures the circuit breaker. MaxFailures < 0 disables it.
	Breaker BreakerConfig `yaml:"breaker"`
}

// Policy runs an operation as breaker(retry(timeout(op))). The breaker sees
// one outcome per Execute, after retries are exhausted.
type Policy struct {
	timeout time.Duration
	retry   *Retry
	breaker *Breaker
}

// NewPolicy builds a policy from config.
func NewPolicy(config PolicyConfig) *Policy {
	p := &Policy{
		timeout: config.Timeout,
		retry:   NewRetry(config.Retry),
	}
	if config.Breaker.MaxFailures >= 0 {
		p.breaker = NewBreaker(config.Breaker)
	}
	return p
}

// Breaker returns the policy's breaker, or nil when breaking is disabled.
func (p *Policy) Breaker() *Breaker { return p.breaker }

// Retry returns the policy's retry handler.
func (p *Policy) Retry() *Retry { return p.retry }

// Execute runs op under the policy.
func (p *Policy) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := op
	if p.timeout > 0 {
		attempt = func(ctx context.Context) error { return withTimeout(ctx, p.timeout, op) }
	}
	run := func(ctx context.Context) error { return p.retry.Execute(ctx, attempt) }
	if p.breaker != nil {
		return p.breaker.Execute(ctx, run)
	}
	return run(ctx)
}

// withTimeout runs op with a deadline and returns only after op has. An
// error reported after the attempt's own deadline becomes ErrTimeout; a
// deadline inherited from ctx is returned unchanged. op must honour ctx for
// the deadline to cut an attempt short.
func withTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := op(attemptCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
