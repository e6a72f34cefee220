package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/spaolacci/murmur3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jonwraymond/recipeguard/kvstore"
)

const meterName = "github.com/jonwraymond/recipeguard/ratelimit"

// Limiter enforces per-identity sliding-window limits.
type Limiter struct {
	store   kvstore.Store
	config  Config
	stripes []sync.Mutex

	decisions metric.Int64Counter
}

// New creates a Limiter backed by store.
func New(store kvstore.Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	meter := config.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(meterName)
	}
	decisions, err := meter.Int64Counter(
		"recipeguard.ratelimit.decisions",
		metric.WithDescription("Rate limit evaluations by decision"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: create counter: %w", err)
	}

	return &Limiter{
		store:     store,
		config:    config,
		stripes:   make([]sync.Mutex, config.Stripes),
		decisions: decisions,
	}, nil
}

// Config returns the effective configuration.
func (l *Limiter) Config() Config {
	return l.config
}

// CheckAndConsume evaluates identity's budget and, when allowed, records the
// request before returning.
func (l *Limiter) CheckAndConsume(ctx context.Context, identity string) (Result, error) {
	return l.evaluate(ctx, identity, true)
}

// Status evaluates identity's budget without recording a request. Stale
// entries found during evaluation are still pruned from the store.
func (l *Limiter) Status(ctx context.Context, identity string) (Result, error) {
	return l.evaluate(ctx, identity, false)
}

// Reset forgets every recorded request for identity.
func (l *Limiter) Reset(ctx context.Context, identity string) error {
	if identity == "" {
		return ErrEmptyIdentity
	}
	mu := l.stripe(identity)
	mu.Lock()
	defer mu.Unlock()
	if err := l.store.PutSet(ctx, l.config.KeyPrefix+identity, nil); err != nil {
		return fmt.Errorf("ratelimit: reset %s: %w", identity, err)
	}
	return nil
}

func (l *Limiter) evaluate(ctx context.Context, identity string, consume bool) (Result, error) {
	if identity == "" {
		return nil, ErrEmptyIdentity
	}
	key := l.config.KeyPrefix + identity

	mu := l.stripe(identity)
	mu.Lock()
	defer mu.Unlock()

	members, err := l.store.GetSet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: load window: %w", err)
	}

	nowMs := l.config.Now().UnixMilli()
	w := parseWindow(members, nowMs, l.config.Retention)
	result := l.decide(w, nowMs)

	dirty := w.pruned
	if consume && IsAllowed(result) {
		w.add(nowMs)
		dirty = true
	}
	if dirty {
		if err := l.store.PutSet(ctx, key, w.members()); err != nil {
			return nil, fmt.Errorf("ratelimit: save window: %w", err)
		}
	}

	l.record(ctx, consume, result)
	return result, nil
}

func (l *Limiter) decide(w window, nowMs int64) Result {
	minuteCount, oldest := w.since(nowMs - minuteWindow.Milliseconds())
	hourCount, _ := w.since(nowMs - hourWindow.Milliseconds())

	if minuteCount >= l.config.PerMinute {
		return Blocked{Reason: ReasonBurst, RetryAfterSeconds: int(minuteWindow.Seconds()), Window: WindowMinute}
	}
	if hourCount >= l.config.PerHour {
		return Blocked{Reason: ReasonHourly, RetryAfterSeconds: int(hourWindow.Seconds()), Window: WindowHour}
	}

	remaining := min(l.config.PerMinute-minuteCount, l.config.PerHour-hourCount) - 1

	reset := int(minuteWindow.Seconds())
	if minuteCount > 0 {
		left := float64(oldest+minuteWindow.Milliseconds()-nowMs) / 1000
		reset = min(max(int(math.Ceil(left)), 1), reset)
	}
	return Allowed{Remaining: remaining, ResetSeconds: reset}
}

func (l *Limiter) record(ctx context.Context, consume bool, r Result) {
	op := "status"
	if consume {
		op = "consume"
	}
	decision := MatchResult(r,
		func(Allowed) string { return "allowed" },
		func(b Blocked) string { return "blocked_" + string(b.Window) },
	)
	l.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
		attribute.String("op", op),
	))
}

// stripe hashes through the streaming digest: murmur3.Sum32 walks the input
// with uintptr arithmetic that the race detector's pointer checks reject.
func (l *Limiter) stripe(identity string) *sync.Mutex {
	h := murmur3.New32()
	_, _ = h.Write([]byte(identity))
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}
