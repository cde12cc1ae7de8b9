package storage

import (
	"fmt"
	"os"
	"time"
)

// Config holds Azure Blob Storage connection parameters for the
// uploads and results containers.
type Config struct {
	ConnectionString string `toml:"connection_string"`
	UploadsContainer string `toml:"uploads_container"`
	ResultsContainer string `toml:"results_container"`
	LinkTTL          string `toml:"link_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ConnectionString string
	UploadsContainer string
	ResultsContainer string
	LinkTTL          string
}

// LinkTTLDuration returns LinkTTL as a time.Duration.
func (c *Config) LinkTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.LinkTTL)
	return d
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
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.UploadsContainer != "" {
		c.UploadsContainer = overlay.UploadsContainer
	}
	if overlay.ResultsContainer != "" {
		c.ResultsContainer = overlay.ResultsContainer
	}
	if overlay.LinkTTL != "" {
		c.LinkTTL = overlay.LinkTTL
	}
}

func (c *Config) loadDefaults() {
	if c.UploadsContainer == "" {
		c.UploadsContainer = "uploads"
	}
	if c.ResultsContainer == "" {
		c.ResultsContainer = "results"
	}
	if c.LinkTTL == "" {
		c.LinkTTL = "1h"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.UploadsContainer != "" {
		if v := os.Getenv(env.UploadsContainer); v != "" {
			c.UploadsContainer = v
		}
	}
	if env.ResultsContainer != "" {
		if v := os.Getenv(env.ResultsContainer); v != "" {
			c.ResultsContainer = v
		}
	}
	if env.LinkTTL != "" {
		if v := os.Getenv(env.LinkTTL); v != "" {
			c.LinkTTL = v
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if c.UploadsContainer == "" {
		return fmt.Errorf("uploads_container required")
	}
	if c.ResultsContainer == "" {
		return fmt.Errorf("results_container required")
	}
	if c.UploadsContainer == c.ResultsContainer {
		return fmt.Errorf("uploads_container and results_container must differ")
	}
	if _, err := time.ParseDuration(c.LinkTTL); err != nil {
		return fmt.Errorf("invalid link_ttl: %w", err)
	}
	return nil
}
