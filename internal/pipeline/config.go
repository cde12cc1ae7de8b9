package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tallyhq/tally/pkg/formatting"
)

// Config holds pipeline sweeper and processing parameters.
type Config struct {
	SweepInterval string `toml:"sweep_interval"`
	Concurrency   int    `toml:"concurrency"`
	MaxSourceSize string `toml:"max_source_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	SweepInterval string
	Concurrency   string
	MaxSourceSize string
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *Config) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// MaxSourceSizeBytes returns MaxSourceSize as a byte count.
func (c *Config) MaxSourceSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxSourceSize)
	if err != nil {
		return 10 * 1024 * 1024 // 10MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.MaxSourceSize != "" {
		c.MaxSourceSize = overlay.MaxSourceSize
	}
}

func (c *Config) loadDefaults() {
	if c.SweepInterval == "" {
		c.SweepInterval = "30s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.MaxSourceSize == "" {
		c.MaxSourceSize = "10MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.SweepInterval != "" {
		if v := os.Getenv(env.SweepInterval); v != "" {
			c.SweepInterval = v
		}
	}
	if env.Concurrency != "" {
		if v := os.Getenv(env.Concurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Concurrency = n
			}
		}
	}
	if env.MaxSourceSize != "" {
		if v := os.Getenv(env.MaxSourceSize); v != "" {
			c.MaxSourceSize = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.SweepInterval); err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	if _, err := formatting.ParseBytes(c.MaxSourceSize); err != nil {
		return fmt.Errorf("invalid max_source_size: %w", err)
	}
	return nil
}
