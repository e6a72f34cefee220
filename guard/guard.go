package guard

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/envcheck"
	"github.com/jonwraymond/recipeguard/errcat"
	"github.com/jonwraymond/recipeguard/health"
	"github.com/jonwraymond/recipeguard/identity"
	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/observe"
	"github.com/jonwraymond/recipeguard/ratelimit"
	"github.com/jonwraymond/recipeguard/resilience"
	"github.com/jonwraymond/recipeguard/validate"
)

// Errors returned through Outcome.Err.
var (
	ErrNoClient  = errors.New("guard: ai client is nil")
	ErrNoLimiter = errors.New("guard: rate limiter is required")
)

// Options assembles a Guard. Only Limiter is required; nil fields get
// defaults built from the zero configs of their packages.
type Options struct {
	Input    *validate.InputValidator
	Response *validate.ResponseValidator
	Limiter  *ratelimit.Limiter

	// Checker is the environment check. Nil skips the stage.
	Checker *envcheck.Checker

	Cache *cache.LRU
	Keyer cache.Keyer

	// Backend wraps each AI call. RetryIf, DelayFor and IsFailure are
	// filled from the categorizer when nil.
	Backend resilience.PolicyConfig

	Categorizer *errcat.Categorizer
	Middleware  *observe.Middleware

	// Store is the rate limit store, probed by Health. Nil skips the probe.
	Store kvstore.Store

	// Health configures Health. Memory is only checked when
	// Health.Memory is non-nil.
	Health HealthOptions
}

// HealthOptions configures Guard.Health.
type HealthOptions struct {
	Timeout time.Duration
	Memory  *health.MemoryCheckerConfig
}

// Guard runs the analysis pipeline. It is safe for concurrent use.
type Guard struct {
	input    *validate.InputValidator
	response *validate.ResponseValidator
	limiter  *ratelimit.Limiter
	checker  *envcheck.Checker
	loader   *cache.Loader
	keyer    cache.Keyer
	policy   *resilience.Policy
	cat      *errcat.Categorizer
	mw       *observe.Middleware
	checks   []health.Checker
	health   health.Options

	closers []func() error
}

// New creates a Guard.
func New(opts Options) (*Guard, error) {
	if opts.Limiter == nil {
		return nil, ErrNoLimiter
	}
	g := &Guard{
		input:    opts.Input,
		response: opts.Response,
		limiter:  opts.Limiter,
		checker:  opts.Checker,
		keyer:    opts.Keyer,
		cat:      opts.Categorizer,
		mw:       opts.Middleware,
	}
	if g.input == nil {
		g.input = validate.NewInputValidator(validate.InputConfig{})
	}
	if g.response == nil {
		g.response = validate.NewResponseValidator(validate.ResponseConfig{})
	}
	if g.keyer == nil {
		g.keyer = cache.SHA256Keyer{}
	}
	if g.cat == nil {
		g.cat = errcat.New(errcat.Config{MaxInputLength: g.input.MaxPromptLength()})
	}
	if g.mw == nil {
		g.mw = observe.NewMiddleware(nil, nil, nil)
	}
	lru := opts.Cache
	if lru == nil {
		lru = cache.NewLRU(cache.Config{})
	}
	g.loader = cache.NewLoader(lru, g.cacheable)
	g.policy = resilience.NewPolicy(g.backendPolicy(opts.Backend))

	g.health = health.Options{Timeout: opts.Health.Timeout}
	if opts.Store != nil {
		g.checks = append(g.checks, health.StoreChecker{Store: opts.Store})
	}
	g.checks = append(g.checks,
		health.BreakerChecker{Breaker: g.policy.Breaker()},
		health.CacheChecker{Cache: lru},
		health.EnvChecker{Checker: g.checker},
	)
	if opts.Health.Memory != nil {
		g.checks = append(g.checks, health.NewMemoryChecker(*opts.Health.Memory))
	}
	return g, nil
}

// Health checks the store, the AI backend circuit, the cache, the
// environment and, when configured, memory.
func (g *Guard) Health(ctx context.Context) health.Report {
	return health.Run(ctx, g.health, g.checks...)
}

// DefaultBackendTimeout bounds one backend attempt when Options.Backend sets
// no timeout. Shared generations run detached from their callers.
const DefaultBackendTimeout = 30 * time.Second

func (g *Guard) backendPolicy(cfg resilience.PolicyConfig) resilience.PolicyConfig {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBackendTimeout
	}
	if cfg.Retry.RetryIf == nil {
		cfg.Retry.RetryIf = g.transient
	}
	if cfg.Retry.DelayFor == nil {
		cfg.Retry.DelayFor = func(err error) time.Duration {
			return g.cat.Categorize(err, "").RetryDelay
		}
	}
	if cfg.Breaker.IsFailure == nil {
		cfg.Breaker.IsFailure = g.transient
	}
	return cfg
}

// transient reports whether err is a network or server failure, the only
// kinds worth retrying within one request.
func (g *Guard) transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch g.cat.Categorize(err, "").Category {
	case errcat.CategoryNetwork, errcat.CategoryServer:
		return true
	default:
		return false
	}
}

// cacheable rejects responses that could never be shown.
func (g *Guard) cacheable(response string) bool {
	switch g.response.Validate(response).Kind() {
	case validate.KindUnsafe, validate.KindInvalid:
		return false
	default:
		return true
	}
}

// Limiter returns the rate limiter.
func (g *Guard) Limiter() *ratelimit.Limiter { return g.limiter }

// Cache returns the response cache.
func (g *Guard) Cache() *cache.LRU { return g.loader.Cache() }

// Breaker returns the backend circuit breaker, nil when disabled.
func (g *Guard) Breaker() *resilience.Breaker { return g.policy.Breaker() }

// Logger returns the pipeline logger.
func (g *Guard) Logger() observe.Logger { return g.mw.Logger() }

// Close releases resources opened by FromConfig.
func (g *Guard) Close() error {
	var errs []error
	for i := len(g.closers) - 1; i >= 0; i-- {
		errs = append(errs, g.closers[i]())
	}
	g.closers = nil
	return errors.Join(errs...)
}

// Status reports the rate limit state of id without consuming a request.
func (g *Guard) Status(ctx context.Context, id string) (ratelimit.Result, error) {
	return g.limiter.Status(ctx, g.resolveIdentity(ctx, id))
}

// Analyze runs req through the pipeline. client is only called on a cache
// miss.
func (g *Guard) Analyze(ctx context.Context, req Request, client AIClient) Outcome {
	id := g.resolveIdentity(ctx, req.Identity)
	ctx = identity.WithIdentity(ctx, identity.Identity(id))

	var out Outcome
	_ = g.mw.Run(ctx, g.meta(observe.StageAnalyze, id), func(ctx context.Context) error {
		out = g.analyze(ctx, id, req, client)
		return out.Error()
	})
	return out
}

func (g *Guard) analyze(ctx context.Context, id string, req Request, client AIClient) Outcome {
	var out Outcome
	fail := func(err error) Outcome {
		out.Err = g.cat.Categorize(err, req.Prompt)
		return out
	}
	if client == nil {
		return fail(ErrNoClient)
	}

	err := g.mw.Run(ctx, g.meta(observe.StageImage, id), func(context.Context) error {
		return g.input.ValidateImage(req.Image)
	}, observe.F("image_bytes", len(req.Image)))
	if err != nil {
		return fail(err)
	}

	var prompt string
	err = g.mw.Run(ctx, g.meta(observe.StageInput, id), func(context.Context) error {
		return validate.MatchInput(g.input.Validate(req.Prompt),
			func(v validate.InputValid) error {
				prompt = v.Sanitized
				return nil
			},
			func(v validate.InputInvalid) error { return v.Err() },
		)
	}, observe.F("prompt", req.Prompt))
	if err != nil {
		return fail(err)
	}

	err = g.mw.Run(ctx, g.meta(observe.StageLimit, id), func(ctx context.Context) error {
		res, err := g.limiter.CheckAndConsume(ctx, id)
		if err != nil {
			return err
		}
		out.RateLimit = res
		return ratelimit.MatchResult(res,
			func(ratelimit.Allowed) error { return nil },
			func(b ratelimit.Blocked) error { return b.Err() },
		)
	})
	if err != nil {
		return fail(err)
	}

	if g.checker != nil {
		err = g.mw.Run(ctx, g.meta(observe.StageEnv, id), func(ctx context.Context) error {
			return g.checker.Check(ctx).Err()
		})
		if err != nil {
			return fail(err)
		}
	}

	var entry cache.Entry
	err = g.mw.Run(ctx, g.meta(observe.StageCache, id), func(ctx context.Context) error {
		key, err := g.keyer.Key(req.Image, prompt)
		if err != nil {
			return err
		}
		entry, err = g.loader.Load(ctx, key, func(ctx context.Context) (string, error) {
			return g.generate(ctx, id, client, req.Image, prompt)
		})
		if err == nil && entry.Source == cache.SourceCached {
			g.mw.Logger().Debug(ctx, "cache hit", observe.F("key", key.String()))
		}
		return err
	})
	if err != nil {
		return fail(err)
	}

	var shown validate.Displayable
	var kind validate.Kind
	err = g.mw.Run(ctx, g.meta(observe.StageResponse, id), func(context.Context) error {
		res := g.response.Validate(entry.Response)
		kind = res.Kind()
		var err error
		shown, err = validate.Display(res)
		return err
	}, observe.F("source", entry.Source.String()))
	if err != nil {
		out.Kind = kind
		return fail(err)
	}

	out.Text = shown.Text
	out.Note = shown.Note
	out.Kind = kind
	out.Source = entry.Source
	return out
}

func (g *Guard) generate(ctx context.Context, id string, client AIClient, image []byte, prompt string) (string, error) {
	var text string
	err := g.mw.Run(ctx, g.meta(observe.StageGenerate, id), func(ctx context.Context) error {
		return g.policy.Execute(ctx, func(ctx context.Context) error {
			out, err := client.Generate(ctx, image, prompt)
			if err != nil {
				return err
			}
			text = out
			return nil
		})
	})
	return text, err
}

func (g *Guard) meta(stage, id string) observe.StageMeta {
	return observe.StageMeta{Name: stage, Component: "guard", Identity: id}
}

func (g *Guard) resolveIdentity(ctx context.Context, id string) string {
	if id != "" {
		return id
	}
	if from := identity.FromContext(ctx); !from.IsZero() {
		return from.String()
	}
	return identity.Anonymous.String()
}
