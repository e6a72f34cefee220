package ratelimit

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/recipeguard/kvstore"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, store kvstore.Store, clk *fakeClock, cfg Config) *Limiter {
	t.Helper()
	cfg.Now = clk.Now
	l, err := New(store, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func mustConsume(t *testing.T, l *Limiter, id string) Result {
	t.Helper()
	r, err := l.CheckAndConsume(context.Background(), id)
	if err != nil {
		t.Fatalf("CheckAndConsume(%s) error = %v", id, err)
	}
	return r
}

func mustStatus(t *testing.T, l *Limiter, id string) Result {
	t.Helper()
	r, err := l.Status(context.Background(), id)
	if err != nil {
		t.Fatalf("Status(%s) error = %v", id, err)
	}
	return r
}

func TestNew_Defaults(t *testing.T) {
	l, err := New(kvstore.NewMemoryStore(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cfg := l.Config()
	if cfg.PerMinute != DefaultPerMinute || cfg.PerHour != DefaultPerHour {
		t.Errorf("limits = %d/%d, want defaults", cfg.PerMinute, cfg.PerHour)
	}
	if cfg.Retention != DefaultRetention || cfg.KeyPrefix != DefaultKeyPrefix || cfg.Stripes != DefaultStripes {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, ErrNilStore) {
		t.Errorf("New(nil) error = %v, want ErrNilStore", err)
	}
	if _, err := New(kvstore.NewMemoryStore(), Config{Retention: time.Minute}); err == nil {
		t.Error("retention shorter than an hour should be rejected")
	}
}

func TestLimiter_BurstLimit(t *testing.T) {
	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 2})

	want := []Result{
		Allowed{Remaining: 1, ResetSeconds: 60},
		Allowed{Remaining: 0, ResetSeconds: 60},
		Blocked{Reason: ReasonBurst, RetryAfterSeconds: 60, Window: WindowMinute},
		Blocked{Reason: ReasonBurst, RetryAfterSeconds: 60, Window: WindowMinute},
	}
	for i, w := range want {
		if got := mustConsume(t, l, "alice"); got != w {
			t.Errorf("call %d = %#v, want %#v", i+1, got, w)
		}
	}

	clk.Advance(61 * time.Second)
	if got := mustConsume(t, l, "alice"); !IsAllowed(got) {
		t.Errorf("after the minute window passed = %#v, want Allowed", got)
	}
}

func TestLimiter_ResetSecondsTracksOldest(t *testing.T) {
	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 3})

	mustConsume(t, l, "alice")
	clk.Advance(20 * time.Second)

	got := mustStatus(t, l, "alice")
	if want := (Allowed{Remaining: 1, ResetSeconds: 40}); got != want {
		t.Errorf("Status() = %#v, want %#v", got, want)
	}
}

func TestLimiter_HourlyLimit(t *testing.T) {
	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 2, PerHour: 3})

	mustConsume(t, l, "bob")
	mustConsume(t, l, "bob")
	clk.Advance(61 * time.Second)

	if got, want := mustConsume(t, l, "bob"), (Allowed{Remaining: 0, ResetSeconds: 60}); got != want {
		t.Fatalf("third call = %#v, want %#v", got, want)
	}

	clk.Advance(61 * time.Second)
	want := Blocked{Reason: ReasonHourly, RetryAfterSeconds: 3600, Window: WindowHour}
	if got := mustConsume(t, l, "bob"); got != want {
		t.Fatalf("fourth call = %#v, want %#v", got, want)
	}

	clk.Advance(time.Hour)
	if got := mustConsume(t, l, "bob"); !IsAllowed(got) {
		t.Errorf("after the hour passed = %#v, want Allowed", got)
	}
}

func TestLimiter_StatusDoesNotConsume(t *testing.T) {
	clk := newFakeClock()
	store := kvstore.NewMemoryStore()
	l := newTestLimiter(t, store, clk, Config{PerMinute: 2})

	first := mustStatus(t, l, "carol")
	for i := 0; i < 5; i++ {
		if got := mustStatus(t, l, "carol"); got != first {
			t.Fatalf("Status() changed from %#v to %#v", first, got)
		}
	}
	if store.Len() != 0 {
		t.Errorf("Status() should not write anything for a clean window")
	}

	// The first consume agrees with the status that preceded it.
	if got := mustConsume(t, l, "carol"); got != first {
		t.Errorf("CheckAndConsume() = %#v, Status() said %#v", got, first)
	}
}

func TestLimiter_PrunesStaleEntries(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := kvstore.NewMemoryStore()
	l := newTestLimiter(t, store, clk, Config{})

	now := clk.Now()
	stale := strconv.FormatInt(now.Add(-25*time.Hour).UnixMilli(), 10)
	recent := strconv.FormatInt(now.Add(-2*time.Hour).UnixMilli(), 10)
	key := DefaultKeyPrefix + "dave"
	if err := store.PutSet(ctx, key, []string{stale, recent, "not-a-number"}); err != nil {
		t.Fatal(err)
	}

	if got := mustStatus(t, l, "dave"); !IsAllowed(got) {
		t.Fatalf("Status() = %#v, want Allowed", got)
	}

	members, err := store.GetSet(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(members, []string{recent}) {
		t.Errorf("members after Status() = %v, want only %s", members, recent)
	}
}

func TestLimiter_StaleEntriesDoNotCount(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := kvstore.NewMemoryStore()
	l := newTestLimiter(t, store, clk, Config{PerHour: 2})

	now := clk.Now()
	stale := strconv.FormatInt(now.Add(-25*time.Hour).UnixMilli(), 10)
	recent := strconv.FormatInt(now.Add(-30*time.Minute).UnixMilli(), 10)
	key := DefaultKeyPrefix + "erin"
	if err := store.PutSet(ctx, key, []string{stale, recent}); err != nil {
		t.Fatal(err)
	}

	got := mustConsume(t, l, "erin")
	if want := (Allowed{Remaining: 0, ResetSeconds: 60}); got != want {
		t.Fatalf("CheckAndConsume() = %#v, want %#v", got, want)
	}
	members, err := store.GetSet(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(members, stale) || len(members) != 2 {
		t.Errorf("members = %v, want the recent stamp and the new one", members)
	}

	clk.Advance(2 * time.Minute)
	blocked, ok := mustConsume(t, l, "erin").(Blocked)
	if !ok || blocked.Window != WindowHour {
		t.Errorf("third request = %#v, want blocked by the hourly limit", blocked)
	}
}

func TestLimiter_StripeIsStable(t *testing.T) {
	l := newTestLimiter(t, kvstore.NewMemoryStore(), newFakeClock(), Config{})
	for _, id := range []string{"", "a", "device:pixel-7", strings.Repeat("x", 1001)} {
		if l.stripe(id) != l.stripe(id) {
			t.Errorf("stripe(%q) changed between calls", id)
		}
	}
}

func TestLimiter_IdentitiesAreIndependent(t *testing.T) {
	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 1})

	mustConsume(t, l, "erin")
	if got := mustConsume(t, l, "erin"); IsAllowed(got) {
		t.Fatal("erin should be blocked")
	}
	if got := mustConsume(t, l, "frank"); !IsAllowed(got) {
		t.Errorf("frank should not be affected by erin, got %#v", got)
	}
}

func TestLimiter_StateSurvivesNewLimiter(t *testing.T) {
	clk := newFakeClock()
	store := kvstore.NewMemoryStore()

	l1 := newTestLimiter(t, store, clk, Config{PerMinute: 2})
	mustConsume(t, l1, "gina")
	mustConsume(t, l1, "gina")

	l2 := newTestLimiter(t, store, clk, Config{PerMinute: 2})
	if got := mustStatus(t, l2, "gina"); IsAllowed(got) {
		t.Errorf("a new limiter on the same store should see the spent budget, got %#v", got)
	}
}

func TestLimiter_ConcurrentConsumeNeverOvershoots(t *testing.T) {
	clk := newFakeClock()
	store := kvstore.NewMemoryStore()
	l := newTestLimiter(t, store, clk, Config{PerMinute: 5, PerHour: 100})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := l.CheckAndConsume(context.Background(), "henry")
			if err != nil {
				t.Errorf("CheckAndConsume() error = %v", err)
				return
			}
			if IsAllowed(r) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Errorf("allowed = %d, want 5", allowed)
	}
	members, _ := store.GetSet(context.Background(), DefaultKeyPrefix+"henry")
	if len(members) != 5 {
		t.Errorf("stored %d timestamps, want 5 distinct entries", len(members))
	}
}

func TestLimiter_RemainingBounds(t *testing.T) {
	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 4, PerHour: 6})

	prev := 5
	for i := 0; i < 12; i++ {
		r := mustConsume(t, l, "ivy")
		rem := Remaining(r)
		if rem < 0 || rem > 4 {
			t.Fatalf("call %d: Remaining = %d, outside [0, 4]", i, rem)
		}
		if IsAllowed(r) && rem >= prev {
			t.Fatalf("call %d: Remaining = %d did not decrease from %d", i, rem, prev)
		}
		if IsAllowed(r) {
			prev = rem
		}
		clk.Advance(time.Second)
	}
}

func TestLimiter_Reset(t *testing.T) {
	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 1})

	mustConsume(t, l, "jack")
	if err := l.Reset(context.Background(), "jack"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := mustConsume(t, l, "jack"); !IsAllowed(got) {
		t.Errorf("after Reset() = %#v, want Allowed", got)
	}
}

func TestLimiter_EmptyIdentity(t *testing.T) {
	l := newTestLimiter(t, kvstore.NewMemoryStore(), newFakeClock(), Config{})
	if _, err := l.CheckAndConsume(context.Background(), ""); !errors.Is(err, ErrEmptyIdentity) {
		t.Errorf("error = %v, want ErrEmptyIdentity", err)
	}
}

type failingStore struct{ kvstore.MemoryStore }

func (*failingStore) GetSet(context.Context, string) ([]string, error) {
	return nil, kvstore.ErrUnavailable
}

func TestLimiter_StoreFailure(t *testing.T) {
	l := newTestLimiter(t, &failingStore{}, newFakeClock(), Config{})
	_, err := l.CheckAndConsume(context.Background(), "kim")
	if !errors.Is(err, kvstore.ErrUnavailable) {
		t.Errorf("error = %v, want kvstore.ErrUnavailable", err)
	}
}

func TestBlocked_Err(t *testing.T) {
	err := Blocked{Reason: ReasonHourly, RetryAfterSeconds: 3600, Window: WindowHour}.Err()
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Err() = %v, want ErrRateLimited", err)
	}
	var be *BlockedError
	if !errors.As(err, &be) || be.RetryAfter != time.Hour {
		t.Errorf("Err() = %#v, want *BlockedError with 1h retry", err)
	}
}

func TestLimiter_Metrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()

	clk := newFakeClock()
	l := newTestLimiter(t, kvstore.NewMemoryStore(), clk, Config{PerMinute: 1, Meter: mp.Meter("test")})
	mustConsume(t, l, "leo")
	mustConsume(t, l, "leo")
	mustStatus(t, l, "leo")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "recipeguard.ratelimit.decisions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("data type = %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				d, _ := dp.Attributes.Value(attribute.Key("decision"))
				op, _ := dp.Attributes.Value(attribute.Key("op"))
				counts[op.AsString()+"/"+d.AsString()] += dp.Value
			}
		}
	}

	want := map[string]int64{
		"consume/allowed":        1,
		"consume/blocked_minute": 1,
		"status/blocked_minute":  1,
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("counts[%s] = %d, want %d (all: %v)", k, counts[k], v, counts)
		}
	}
}
