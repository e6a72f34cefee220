package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestPolicy_TimeoutPerAttempt(t *testing.T) {
	p := NewPolicy(PolicyConfig{
		Timeout: 20 * time.Millisecond,
		Retry:   RetryConfig{MaxAttempts: 2, Sleep: noSleep},
	})
	attempts := 0
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("ErrTimeout should wrap context.DeadlineExceeded")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestPolicy_SlowAttemptFinishesBeforeRetry(t *testing.T) {
	p := NewPolicy(PolicyConfig{
		Timeout: 10 * time.Millisecond,
		Retry:   RetryConfig{MaxAttempts: 3, Sleep: noSleep},
	})
	var inFlight, maxInFlight, attempts atomic.Int32
	result := ""
	err := p.Execute(context.Background(), func(context.Context) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		i := attempts.Add(1)
		time.Sleep(25 * time.Millisecond)
		result = fmt.Sprintf("attempt %d", i)
		if i < 3 {
			return errors.New("backend busy")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := inFlight.Load(); got != 0 {
		t.Errorf("%d attempts still running after Execute returned", got)
	}
	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent attempts = %d, want 1", got)
	}
	if result != "attempt 3" {
		t.Errorf("result = %q, want %q", result, "attempt 3")
	}
}

func TestPolicy_LateSuccessIsKept(t *testing.T) {
	p := NewPolicy(PolicyConfig{Timeout: 5 * time.Millisecond, Retry: RetryConfig{MaxAttempts: 2, Sleep: noSleep}})
	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		time.Sleep(15 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicy_BreakerCountsExecutions(t *testing.T) {
	p := NewPolicy(PolicyConfig{
		Retry:   RetryConfig{MaxAttempts: 3, Sleep: noSleep},
		Breaker: BreakerConfig{MaxFailures: 2},
	})
	calls := 0
	op := func(context.Context) error { calls++; return errors.New("down") }

	_ = p.Execute(context.Background(), op)
	_ = p.Execute(context.Background(), op)
	if calls != 6 {
		t.Errorf("calls = %d, want 6", calls)
	}
	if p.Breaker().State() != StateOpen {
		t.Fatalf("State() = %s, want open", p.Breaker().State())
	}
	if err := p.Execute(context.Background(), op); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if calls != 6 {
		t.Errorf("open breaker still called op")
	}
}

func TestPolicy_BreakerDisabled(t *testing.T) {
	p := NewPolicy(PolicyConfig{Breaker: BreakerConfig{MaxFailures: -1}, Retry: RetryConfig{MaxAttempts: 1}})
	if p.Breaker() != nil {
		t.Fatal("Breaker() should be nil when disabled")
	}
	for i := 0; i < 10; i++ {
		_ = p.Execute(context.Background(), fail)
	}
	if err := p.Execute(context.Background(), succeed); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestPolicy_ParentDeadlinePassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPolicy(PolicyConfig{Timeout: time.Second, Retry: RetryConfig{MaxAttempts: 1}})
	err := p.Execute(ctx, func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
