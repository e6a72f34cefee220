package guard

import (
	"context"
	"fmt"

	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/config"
	"github.com/jonwraymond/recipeguard/envcheck"
	"github.com/jonwraymond/recipeguard/errcat"
	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/observe"
	"github.com/jonwraymond/recipeguard/pattern"
	"github.com/jonwraymond/recipeguard/ratelimit"
	"github.com/jonwraymond/recipeguard/resilience"
	"github.com/jonwraymond/recipeguard/validate"
)

// FromConfig builds a Guard and everything it depends on from cfg. The
// caller must Close the Guard to release the rate limit store. A nil obs
// records nothing.
func FromConfig(ctx context.Context, cfg *config.Config, obs observe.Observer) (g *Guard, err error) {
	if obs == nil {
		obs = observe.Noop()
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	tables, err := pattern.LoadTables(cfg.Validation.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("guard: rules: %w", err)
	}
	icfg, err := validate.InputConfigFrom(tables)
	if err != nil {
		return nil, err
	}
	icfg.MaxPromptLength = cfg.Validation.MaxPromptLength
	icfg.MaxImageBytes = cfg.Validation.MaxImageBytes
	rcfg, err := validate.ResponseConfigFrom(tables)
	if err != nil {
		return nil, err
	}
	rcfg.MaxResponseLength = cfg.Validation.MaxResponseLength

	keyer, err := cache.NewKeyer(cfg.Cache.Keyer)
	if err != nil {
		return nil, err
	}

	store, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("guard: open store: %w", err)
	}
	closers := []func() error{store.Close}
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	rl := cfg.RateLimit
	rl.Meter = obs.Meter()
	limiter, err := ratelimit.New(store, rl)
	if err != nil {
		return nil, err
	}

	var checker *envcheck.Checker
	if !cfg.Env.Disabled {
		checker = envcheck.NewChecker(envcheck.OS(),
			envcheck.CheckerConfig{Timeout: cfg.Env.Timeout},
			envcheck.DefaultProbes(cfg.Env.Probes)...)
	}

	lru := cache.NewLRU(cfg.Cache)
	reg, err := cache.RegisterMetrics(obs.Meter(), lru, "responses")
	if err != nil {
		return nil, err
	}
	closers = append(closers, reg.Unregister)

	backend := cfg.Backend
	log := obs.Logger()
	backend.Breaker.OnStateChange = func(from, to resilience.State) {
		log.Warn(context.Background(), "ai backend circuit changed state",
			observe.F("from", from.String()), observe.F("to", to.String()))
	}

	g, err = New(Options{
		Input:       validate.NewInputValidator(icfg),
		Response:    validate.NewResponseValidator(rcfg),
		Limiter:     limiter,
		Checker:     checker,
		Cache:       lru,
		Keyer:       keyer,
		Backend:     backend,
		Categorizer: errcat.New(errcat.Config{MaxInputLength: cfg.Validation.MaxPromptLength}),
		Middleware:  mw,
		Store:       store,
		Health:      HealthOptions{Timeout: cfg.Health.Timeout, Memory: &cfg.Health.Memory},
	})
	if err != nil {
		return nil, err
	}
	g.closers = closers
	return g, nil
}
