package envcheck

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the verdict of a check.
type Status int

const (
	// StatusSecure means no probe found a problem.
	StatusSecure Status = iota
	// StatusInsecure means at least one probe failed.
	StatusInsecure
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSecure:
		return "secure"
	case StatusInsecure:
		return "insecure"
	default:
		return "unknown"
	}
}

// Finding is what one probe observed.
type Finding struct {
	Probe   string
	Secure  bool
	Message string
}

// Pass creates a passing finding.
func Pass(message string) Finding {
	return Finding{Secure: true, Message: message}
}

// Fail creates a failing finding.
func Fail(format string, args ...any) Finding {
	return Finding{Secure: false, Message: fmt.Sprintf(format, args...)}
}

// Probe inspects one aspect of the environment.
type Probe interface {
	// Name returns the name of this probe.
	Name() string

	// Probe inspects env and reports a finding.
	Probe(ctx context.Context, env Environment) Finding
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc struct {
	name string
	fn   func(context.Context, Environment) Finding
}

// NewProbeFunc creates a named Probe from fn.
func NewProbeFunc(name string, fn func(context.Context, Environment) Finding) *ProbeFunc {
	return &ProbeFunc{name: name, fn: fn}
}

// Name returns the name of this probe.
func (f *ProbeFunc) Name() string { return f.name }

// Probe runs the wrapped function.
func (f *ProbeFunc) Probe(ctx context.Context, env Environment) Finding { return f.fn(ctx, env) }

// Result is the folded outcome of every probe. It is either Secure, or
// Insecure with Reason set to the first failing probe's message (in
// registration order) and Details listing every failing message.
type Result struct {
	Status   Status
	Reason   string
	Details  []string
	Findings []Finding
}

// Secure reports whether the environment passed every probe.
func (r Result) Secure() bool { return r.Status == StatusSecure }

// Err returns nil for a secure result, otherwise an error wrapping
// ErrInsecureEnvironment.
func (r Result) Err() error {
	if r.Secure() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInsecureEnvironment, r.Reason)
}

// String renders the verdict and failing details on one line.
func (r Result) String() string {
	if r.Secure() {
		return StatusSecure.String()
	}
	return fmt.Sprintf("%s: %s", StatusInsecure, strings.Join(r.Details, "; "))
}

// CheckerConfig configures a Checker.
type CheckerConfig struct {
	// Timeout bounds each probe. A probe that exceeds it fails.
	// Default: 2 seconds
	Timeout time.Duration `yaml:"timeout"`
}

// Checker runs a fixed set of probes against an Environment.
type Checker struct {
	env    Environment
	config CheckerConfig

	mu     sync.RWMutex
	probes []Probe
}

// NewChecker creates a Checker with the given probes, in order.
func NewChecker(env Environment, config CheckerConfig, probes ...Probe) *Checker {
	if env == nil {
		env = OS()
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	return &Checker{env: env, config: config, probes: append([]Probe(nil), probes...)}
}

// Register appends a probe. A probe with the same name replaces the old one
// in place.
func (c *Checker) Register(p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.probes {
		if existing.Name() == p.Name() {
			c.probes[i] = p
			return
		}
	}
	c.probes = append(c.probes, p)
}

// ProbeNames returns the registered probe names in order.
func (c *Checker) ProbeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.probes))
	for i, p := range c.probes {
		names[i] = p.Name()
	}
	return names
}

// Check runs every probe concurrently and folds the findings.
func (c *Checker) Check(ctx context.Context) Result {
	c.mu.RLock()
	probes := append([]Probe(nil), c.probes...)
	c.mu.RUnlock()

	findings := make([]Finding, len(probes))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			findings[i] = c.run(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Status: StatusSecure, Findings: findings}
	for _, f := range findings {
		if f.Secure {
			continue
		}
		if res.Status == StatusSecure {
			res.Status = StatusInsecure
			res.Reason = f.Message
		}
		res.Details = append(res.Details, f.Message)
	}
	return res
}

func (c *Checker) run(ctx context.Context, p Probe) Finding {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	ch := make(chan Finding, 1)
	go func() {
		ch <- p.Probe(ctx, c.env)
	}()

	var f Finding
	select {
	case f = <-ch:
	case <-ctx.Done():
		f = Fail("%s: %v", p.Name(), ErrProbeTimeout)
	}
	f.Probe = p.Name()
	return f
}
