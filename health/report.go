package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each check when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Options configures Run.
type Options struct {
	// Timeout bounds each check. A check that exceeds it is unhealthy.
	Timeout time.Duration
}

// Report is the folded outcome of Run. Checks keep the order they were
// passed in.
type Report struct {
	Status Status   `json:"status"`
	Checks []Result `json:"checks"`
}

// Failed returns the checks that are not healthy.
func (r Report) Failed() []Result {
	var out []Result
	for _, c := range r.Checks {
		if c.Status != StatusHealthy {
			out = append(out, c)
		}
	}
	return out
}

// Run executes every checker concurrently. With no checkers the report is
// healthy and empty.
func Run(ctx context.Context, opts Options, checkers ...Checker) Report {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	results := make([]Result, len(checkers))

	var g errgroup.Group
	for i, c := range checkers {
		i, c := i, c
		g.Go(func() error {
			results[i] = runCheck(ctx, opts.Timeout, c)
			return nil
		})
	}
	_ = g.Wait()

	return Report{Status: Overall(results), Checks: results}
}

// Overall returns the worst status in results, healthy when empty.
func Overall(results []Result) Status {
	status := StatusHealthy
	for _, r := range results {
		if r.Status > status {
			status = r.Status
		}
	}
	return status
}

func runCheck(ctx context.Context, timeout time.Duration, c Checker) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	ch := make(chan Result, 1)
	go func() { ch <- c.Check(ctx) }()

	var r Result
	select {
	case r = <-ch:
	case <-ctx.Done():
		r = Unhealthy("check timed out", ErrCheckTimeout)
	}
	r.Name = c.Name()
	r.Duration = time.Since(start)
	return r
}
