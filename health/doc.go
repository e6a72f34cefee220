// Package health reports whether the parts of a recipeguard deployment are
// usable.
//
// A Checker reports one component as Healthy, Degraded or Unhealthy. Run
// executes checkers concurrently, each under its own timeout, and folds
// them into a Report whose status is the worst of its checks.
//
// Built-in checkers cover the rate limit store, the AI backend circuit
// breaker, the response cache, the runtime environment and process memory:
//
//	report := health.Run(ctx, health.Options{},
//	    health.StoreChecker{Store: store},
//	    health.BreakerChecker{Breaker: breaker},
//	)
//	if report.Status == health.StatusUnhealthy {
//	    ...
//	}
package health
