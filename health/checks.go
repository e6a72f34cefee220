package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/envcheck"
	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/resilience"
)

// probeKey is read, never written, by StoreChecker.
const probeKey = "recipeguard_health_probe"

// StoreChecker reads from the rate limit store. An unreachable store makes
// every request fail, so it is unhealthy.
type StoreChecker struct {
	Store kvstore.Store
}

func (StoreChecker) Name() string { return "store" }

func (c StoreChecker) Check(ctx context.Context) Result {
	if c.Store == nil {
		return Unhealthy("no store configured", ErrCheckFailed)
	}
	if _, err := c.Store.GetSet(ctx, probeKey); err != nil {
		return Unhealthy("store unreachable", err)
	}
	return Healthy("store reachable")
}

// BreakerChecker reports the AI backend circuit. Open is degraded: cached
// responses are still served.
type BreakerChecker struct {
	Breaker *resilience.Breaker
}

func (BreakerChecker) Name() string { return "ai_backend" }

func (c BreakerChecker) Check(context.Context) Result {
	if c.Breaker == nil {
		return Healthy("circuit breaker disabled")
	}
	state := c.Breaker.State()
	details := map[string]any{"state": state.String(), "failures": c.Breaker.Failures()}
	switch state {
	case resilience.StateOpen:
		return Degraded("circuit open, AI backend calls are rejected").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing AI backend").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// CacheChecker reports response cache usage. A full cache that evicts more
// than it serves is thrashing and reported as degraded.
type CacheChecker struct {
	Cache *cache.LRU
}

func (CacheChecker) Name() string { return "cache" }

func (c CacheChecker) Check(context.Context) Result {
	if c.Cache == nil {
		return Unhealthy("no cache configured", cache.ErrNilCache)
	}
	s := c.Cache.Stats()
	details := map[string]any{
		"entries":   s.TotalEntries,
		"capacity":  c.Cache.Capacity(),
		"hits":      s.HitCount,
		"misses":    s.MissCount,
		"evictions": s.EvictionCount,
		"hit_rate":  s.HitRate(),
	}
	if s.EvictionCount > s.HitCount && s.EvictionCount >= uint64(c.Cache.Capacity()) {
		return Degraded(fmt.Sprintf("cache thrashing: %d evictions, %d hits", s.EvictionCount, s.HitCount)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d of %d entries", s.TotalEntries, c.Cache.Capacity())).WithDetails(details)
}

// EnvChecker runs the environment check. An insecure environment blocks
// every request.
type EnvChecker struct {
	Checker *envcheck.Checker
}

func (EnvChecker) Name() string { return "environment" }

func (c EnvChecker) Check(ctx context.Context) Result {
	if c.Checker == nil {
		return Healthy("environment check disabled")
	}
	res := c.Checker.Check(ctx)
	if !res.Secure() {
		return Unhealthy(res.Reason, res.Err()).WithDetails(map[string]any{"failing": res.Details})
	}
	return Healthy("environment secure")
}
