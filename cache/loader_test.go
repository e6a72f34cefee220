package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoader_MissThenHit(t *testing.T) {
	l := NewLoader(NewLRU(Config{}), nil)
	calls := 0
	gen := func(context.Context) (string, error) {
		calls++
		return "chocolate cake", nil
	}

	e, err := l.Load(context.Background(), key("a"), gen)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if e.Source != SourceAIGenerated {
		t.Errorf("first Source = %v, want ai_generated", e.Source)
	}

	e, err = l.Load(context.Background(), key("a"), gen)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if e.Source != SourceCached || e.Response != "chocolate cake" {
		t.Errorf("second Load() = %+v, want cached response", e)
	}
	if calls != 1 {
		t.Errorf("generate called %d times, want 1", calls)
	}
}

func TestLoader_ErrorsNotCached(t *testing.T) {
	l := NewLoader(NewLRU(Config{}), nil)
	boom := errors.New("backend down")
	_, err := l.Load(context.Background(), key("a"), func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want %v", err, boom)
	}
	if l.Cache().Len() != 0 {
		t.Error("failed generation must not be cached")
	}
}

func TestLoader_AcceptFilters(t *testing.T) {
	l := NewLoader(NewLRU(Config{}), func(r string) bool { return !strings.Contains(r, "100°F") })
	e, err := l.Load(context.Background(), key("a"), func(context.Context) (string, error) {
		return "Cook chicken at 100°F", nil
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if e.Response == "" {
		t.Error("rejected response should still be returned to the caller")
	}
	if l.Cache().Len() != 0 {
		t.Error("rejected response must not be cached")
	}
}

func TestLoader_CollapsesConcurrentMisses(t *testing.T) {
	l := NewLoader(NewLRU(Config{}), nil)
	var calls atomic.Int32
	release := make(chan struct{})
	gen := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "pie", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(context.Background(), key("same"), gen); err != nil {
				t.Errorf("Load() error = %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 8 {
		t.Fatalf("generate called %d times", n)
	}
	if l.Cache().Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Cache().Len())
	}
}

func TestLoader_Invalid(t *testing.T) {
	var nilLoader *Loader
	if _, err := nilLoader.Load(context.Background(), key("a"), nil); !errors.Is(err, ErrNilCache) {
		t.Errorf("nil loader error = %v, want ErrNilCache", err)
	}
	l := NewLoader(NewLRU(Config{}), nil)
	if _, err := l.Load(context.Background(), key("a"), nil); err == nil {
		t.Error("nil generate should fail")
	}
	gen := func(context.Context) (string, error) { return "x", nil }
	if _, err := l.Load(context.Background(), Key{}, gen); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("empty key error = %v, want ErrInvalidKey", err)
	}
}

func TestLoader_CanceledCallerDoesNotFailOthers(t *testing.T) {
	l := NewLoader(NewLRU(Config{}), nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	gen := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "pavlova", nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := l.Load(ctxA, key("shared"), gen)
		errA <- err
	}()
	<-started

	type result struct {
		e   Entry
		err error
	}
	resB := make(chan result, 1)
	go func() {
		e, err := l.Load(context.Background(), key("shared"), gen)
		resB <- result{e, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled Load() error = %v, want context.Canceled", err)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)

	b := <-resB
	if b.err != nil {
		t.Fatalf("second Load() error = %v", b.err)
	}
	if b.e.Response != "pavlova" {
		t.Errorf("second Load() = %q, want %q", b.e.Response, "pavlova")
	}
	if e, ok := l.Cache().Get(key("shared")); !ok || e.Response != "pavlova" {
		t.Errorf("Get() = %+v, %v, want the shared result cached", e, ok)
	}
}
