// Package resilience guards calls to the AI backend.
//
// Retry re-runs a failed call with exponential, linear or constant backoff.
// A DelayFor hook lets the caller substitute a delay suggested by the error
// itself, such as a rate limit window. Breaker stops calling a backend that
// keeps failing and lets a single probe through once the reset timeout has
// passed. Policy composes a per-attempt timeout, retry and breaker:
//
//	p := resilience.NewPolicy(resilience.PolicyConfig{
//	    Timeout: 20 * time.Second,
//	    Retry:   resilience.RetryConfig{MaxAttempts: 3, RetryIf: retryable},
//	    Breaker: resilience.BreakerConfig{MaxFailures: 5},
//	})
//	err := p.Execute(ctx, func(ctx context.Context) error {
//	    text, err = client.Generate(ctx, image, prompt)
//	    return err
//	})
package resilience
