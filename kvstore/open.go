package kvstore

import (
	"context"
	"fmt"
	"time"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
)

// Config selects and configures a driver.
type Config struct {
	Driver string `yaml:"driver"`

	// Path is the bbolt database file.
	Path string `yaml:"path"`

	RedisURL  string        `yaml:"redis_url"`
	RedisAddr string        `yaml:"redis_addr"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// Validate checks that the driver is known and has what it needs.
func (c Config) Validate() error {
	switch c.Driver {
	case "", DriverMemory:
		return nil
	case DriverBolt:
		if c.Path == "" {
			return fmt.Errorf("kvstore: bolt driver requires path")
		}
		return nil
	case DriverRedis:
		if c.RedisURL == "" && c.RedisAddr == "" {
			return fmt.Errorf("kvstore: redis driver requires redis_url or redis_addr")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
}

// Open creates the store named by cfg.Driver. An empty driver means memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverBolt:
		return OpenBolt(BoltConfig{Path: cfg.Path})
	case DriverRedis:
		return OpenRedis(ctx, RedisConfig{
			URL:       cfg.RedisURL,
			Addr:      cfg.RedisAddr,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		})
	default:
		return NewMemoryStore(), nil
	}
}
