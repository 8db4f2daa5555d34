// Package config loads and validates togi CLI configuration from
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all CLI configuration.
type Config struct {
	// Log reading settings.
	MaxLineBytes int // Longest accepted record line in a log file.

	// Check settings.
	CheckConcurrency int  // Files validated in parallel by "togi check".
	FailFast         bool // Stop a check at the first bad line instead of reporting all.

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible
// defaults. Every malformed variable is reported, not just the first.
func Load() (Config, error) {
	var errs []error
	maxLine, err := envInt("TOGI_MAX_LINE_BYTES", 16*1024*1024)
	if err != nil {
		errs = append(errs, err)
	}
	concurrency, err := envInt("TOGI_CHECK_CONCURRENCY", 4)
	if err != nil {
		errs = append(errs, err)
	}
	failFast, err := envBool("TOGI_CHECK_FAIL_FAST", false)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	cfg := Config{
		MaxLineBytes:     maxLine,
		CheckConcurrency: concurrency,
		FailFast:         failFast,
		LogLevel:         envStr("TOGI_LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("config: TOGI_MAX_LINE_BYTES must be positive")
	}
	if c.CheckConcurrency <= 0 {
		return fmt.Errorf("config: TOGI_CHECK_CONCURRENCY must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}
