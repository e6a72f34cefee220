package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/envcheck"
	"github.com/jonwraymond/recipeguard/health"
	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/observe"
	"github.com/jonwraymond/recipeguard/ratelimit"
	"github.com/jonwraymond/recipeguard/resilience"
	"github.com/jonwraymond/recipeguard/validate"
)

// Sentinel errors.
var (
	ErrMissingEnv = errors.New("config: missing required environment variables")
	ErrSecret     = errors.New("config: secret resolution failed")
	ErrInvalid    = errors.New("config: invalid configuration")
)

// Defaults.
const (
	DefaultServiceName = "recipeguard"
	DefaultStorePath   = "recipeguard.db"
	DefaultEnvTimeout  = 2 * time.Second
	DefaultAITimeout   = 30 * time.Second
	MinSecretLength    = 32
	envPrefix          = "RECIPEGUARD_"
)

// Config is the full recipeguard configuration.
type Config struct {
	Observe    observe.Config          `yaml:"observe"`
	Validation ValidationConfig        `yaml:"validation"`
	Store      kvstore.Config          `yaml:"store"`
	RateLimit  ratelimit.Config        `yaml:"rate_limit"`
	Env        EnvConfig               `yaml:"env"`
	Cache      cache.Config            `yaml:"cache"`
	Backend    resilience.PolicyConfig `yaml:"backend"`
	Session    SessionConfig           `yaml:"session"`
	Health     HealthConfig            `yaml:"health"`
}

// ValidationConfig configures prompt, image and response checks.
type ValidationConfig struct {
	MaxPromptLength   int   `yaml:"max_prompt_length"`
	MaxResponseLength int   `yaml:"max_response_length"`
	MaxImageBytes     int64 `yaml:"max_image_bytes"`

	// RulesFile is a YAML file of extra pattern rules.
	RulesFile string `yaml:"rules_file"`
}

// EnvConfig configures the environment check.
type EnvConfig struct {
	// Disabled skips the check entirely.
	Disabled bool                 `yaml:"disabled"`
	Timeout  time.Duration        `yaml:"timeout"`
	Probes   envcheck.ProbeConfig `yaml:"probes"`
}

// HealthConfig configures component health checks.
type HealthConfig struct {
	Timeout time.Duration              `yaml:"timeout"`
	Memory  health.MemoryCheckerConfig `yaml:"memory"`
}

// SessionConfig configures session token verification. An empty Secret
// disables session identities.
type SessionConfig struct {
	// Secret is the HS256 key, usually a secretref.
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Claim    string        `yaml:"claim"`
	Leeway   time.Duration `yaml:"leeway"`
	Strict   bool          `yaml:"strict"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path. A missing file returns Default with environment
// overrides applied.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := Parse(data, &cfg); err != nil {
				return nil, err
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse expands environment references in data and decodes it into cfg.
// Unknown keys are an error.
func Parse(data []byte, cfg *Config) error {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Observe.ServiceName == "" {
		c.Observe.ServiceName = DefaultServiceName
	}
	if c.Observe.Logging.Level == "" {
		c.Observe.Logging.Level = "info"
	}
	if c.Validation.MaxPromptLength <= 0 {
		c.Validation.MaxPromptLength = validate.DefaultMaxPromptLength
	}
	if c.Validation.MaxResponseLength <= 0 {
		c.Validation.MaxResponseLength = validate.DefaultMaxResponseLength
	}
	if c.Validation.MaxImageBytes <= 0 {
		c.Validation.MaxImageBytes = validate.DefaultMaxImageBytes
	}
	if c.Store.Driver == "" {
		c.Store.Driver = kvstore.DriverBolt
	}
	if c.Store.Driver == kvstore.DriverBolt && c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = ratelimit.DefaultPerMinute
	}
	if c.RateLimit.PerHour == 0 {
		c.RateLimit.PerHour = ratelimit.DefaultPerHour
	}
	if c.RateLimit.Retention == 0 {
		c.RateLimit.Retention = ratelimit.DefaultRetention
	}
	if c.Env.Timeout <= 0 {
		c.Env.Timeout = DefaultEnvTimeout
	}
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = cache.DefaultCapacity
	}
	if c.Health.Timeout <= 0 {
		c.Health.Timeout = health.DefaultTimeout
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultAITimeout
	}
}

// applyEnv applies RECIPEGUARD_* overrides.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, envPrefix, name, v)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.Observe.Logging.Level)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_PATH", &c.Store.Path)
	str("REDIS_URL", &c.Store.RedisURL)
	str("RULES_FILE", &c.Validation.RulesFile)
	str("SESSION_SECRET", &c.Session.Secret)
	str("CACHE_KEYER", &c.Cache.Keyer)
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok && v != "" {
		c.Observe.Logging.Enabled = true
	}

	return errors.Join(
		num("RATE_PER_MINUTE", &c.RateLimit.PerMinute),
		num("RATE_PER_HOUR", &c.RateLimit.PerHour),
		num("CACHE_CAPACITY", &c.Cache.Capacity),
	)
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}
	add("observe", c.Observe.Validate())
	add("store", c.Store.Validate())
	add("rate_limit", c.RateLimit.Validate())
	add("cache", c.Cache.Validate())
	if c.Validation.MaxPromptLength < 0 || c.Validation.MaxResponseLength < 0 || c.Validation.MaxImageBytes < 0 {
		add("validation", errors.New("limits must not be negative"))
	}
	if c.Backend.Timeout < 0 {
		add("backend", errors.New("timeout must not be negative"))
	}
	if s := c.Session.Secret; s != "" && !strings.HasPrefix(s, secretRefPrefix) && len(s) < MinSecretLength {
		add("session", fmt.Errorf("secret must be at least %d bytes", MinSecretLength))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// SessionSecret resolves the session signing key. It returns nil when no
// secret is configured.
func (c *Config) SessionSecret(ctx context.Context, r *SecretResolver) ([]byte, error) {
	if c.Session.Secret == "" {
		return nil, nil
	}
	if r == nil {
		r = NewSecretResolver()
	}
	v, err := r.Resolve(ctx, c.Session.Secret)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}
