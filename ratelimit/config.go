package ratelimit

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Defaults applied by New for zero config fields.
const (
	DefaultPerMinute = 2
	DefaultPerHour   = 20
	DefaultRetention = 24 * time.Hour
	DefaultKeyPrefix = "rate_limit_timestamps_"
	DefaultStripes   = 32
)

const (
	minuteWindow = 60 * time.Second
	hourWindow   = time.Hour
)

// Config configures a Limiter.
type Config struct {
	// PerMinute is the burst limit over the last 60 seconds.
	// Default: 2
	PerMinute int `yaml:"per_minute"`

	// PerHour is the limit over the last hour.
	// Default: 20
	PerHour int `yaml:"per_hour"`

	// Retention is how long request times are kept before pruning.
	// Default: 24h
	Retention time.Duration `yaml:"retention"`

	// KeyPrefix is prepended to the identity to form the store key.
	// Default: "rate_limit_timestamps_"
	KeyPrefix string `yaml:"key_prefix"`

	// Stripes is the number of mutexes identities are hashed onto.
	// Default: 32
	Stripes int `yaml:"stripes"`

	// Now is the clock. Default: time.Now
	Now func() time.Time `yaml:"-"`

	// Meter receives the decisions counter. Default: no-op meter.
	Meter metric.Meter `yaml:"-"`
}

func (c *Config) applyDefaults() {
	if c.PerMinute <= 0 {
		c.PerMinute = DefaultPerMinute
	}
	if c.PerHour <= 0 {
		c.PerHour = DefaultPerHour
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.Stripes <= 0 {
		c.Stripes = DefaultStripes
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Validate rejects configurations that could never allow a request or would
// prune entries that still count.
func (c Config) Validate() error {
	if c.PerMinute < 0 || c.PerHour < 0 {
		return fmt.Errorf("ratelimit: limits must not be negative")
	}
	if c.Retention != 0 && c.Retention < hourWindow {
		return fmt.Errorf("ratelimit: retention %s is shorter than the hourly window", c.Retention)
	}
	return nil
}
