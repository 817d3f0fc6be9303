package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvOracleTimeout     = "FUNDSCOPE_ORACLE_TIMEOUT"
	EnvOracleAttempts    = "FUNDSCOPE_ORACLE_ATTEMPTS"
	EnvOracleBackoff     = "FUNDSCOPE_ORACLE_BACKOFF"
	EnvOracleConcurrency = "FUNDSCOPE_ORACLE_CONCURRENCY"
)

// OracleConfig holds retry, timeout, and concurrency settings for the
// language-model judgment client.
type OracleConfig struct {
	Timeout     string `toml:"timeout"`
	Attempts    int    `toml:"attempts"`
	Backoff     string `toml:"backoff"`
	Concurrency int    `toml:"concurrency"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *OracleConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// BackoffDuration returns Backoff as a time.Duration.
func (c *OracleConfig) BackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.Backoff)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *OracleConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *OracleConfig) Merge(overlay *OracleConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Attempts != 0 {
		c.Attempts = overlay.Attempts
	}
	if overlay.Backoff != "" {
		c.Backoff = overlay.Backoff
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
}

func (c *OracleConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.Backoff == "" {
		c.Backoff = "2s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
}

func (c *OracleConfig) loadEnv() {
	if v := os.Getenv(EnvOracleTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvOracleAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Attempts = n
		}
	}
	if v := os.Getenv(EnvOracleBackoff); v != "" {
		c.Backoff = v
	}
	if v := os.Getenv(EnvOracleConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
}

func (c *OracleConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Backoff); err != nil {
		return fmt.Errorf("invalid backoff: %w", err)
	}
	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", c.Attempts)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
