package cache

import (
	"errors"
	"time"
)

// DefaultCapacity is the number of responses kept when Config.Capacity is zero.
const DefaultCapacity = 50

// Config configures an LRU.
type Config struct {
	// Capacity is the maximum number of entries. Zero selects DefaultCapacity.
	Capacity int `yaml:"capacity"`

	// Retention drops entries older than this on lookup. Zero disables expiry.
	Retention time.Duration `yaml:"retention"`

	// Keyer names the image keyer: "sha256" (default) or "perceptual".
	Keyer string `yaml:"keyer"`

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time `yaml:"-"`
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Capacity < 0 {
		return errors.New("cache: capacity must not be negative")
	}
	if c.Retention < 0 {
		return errors.New("cache: retention must not be negative")
	}
	switch c.Keyer {
	case "", KeyerSHA256, KeyerPerceptual:
	default:
		return ErrUnknownKeyer
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
