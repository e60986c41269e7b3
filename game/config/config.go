package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/wricardo/mcp-training/duelgame/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// EnvPrefix is prepended to every environment variable the config reads
const EnvPrefix = "DUEL_"

// Config holds the coordinator policies
type Config struct {
	RoundResetDelay time.Duration `env:"ROUND_RESET_DELAY"`
	RematchPolicy   string        `env:"REMATCH_POLICY"`
	SessionTTL      time.Duration `env:"SESSION_TTL"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"`
}

// fileConfig is the on-disk shape; durations are written as "2s", "24h"
type fileConfig struct {
	RoundResetDelay string `json:"round_reset_delay"`
	RematchPolicy   string `json:"rematch_policy"`
	SessionTTL      string `json:"session_ttl"`
	CleanupInterval string `json:"cleanup_interval"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		RoundResetDelay: service.DefaultRoundResetDelay,
		RematchPolicy:   string(service.RematchNone),
		SessionTTL:      24 * time.Hour,
		CleanupInterval: time.Hour,
	}
}

// Load builds a Config from defaults, the optional JSON file at path and
// DUEL_* environment variables, in that order, then validates it
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the fields set in a JSON file
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"round_reset_delay", fc.RoundResetDelay, &c.RoundResetDelay},
		{"session_ttl", fc.SessionTTL, &c.SessionTTL},
		{"cleanup_interval", fc.CleanupInterval, &c.CleanupInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, d.name, err)
		}
		*d.dst = parsed
	}
	if fc.RematchPolicy != "" {
		c.RematchPolicy = fc.RematchPolicy
	}
	return nil
}

// ApplyEnv overlays DUEL_* environment variables. Unset variables leave the
// current value alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var problems []string

	if c.RoundResetDelay <= 0 {
		problems = append(problems, "round reset delay must be positive")
	}
	if _, err := service.ParseRematchPolicy(c.RematchPolicy); err != nil {
		problems = append(problems, err.Error())
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "session TTL must be positive")
	}
	if c.CleanupInterval <= 0 {
		problems = append(problems, "cleanup interval must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// CoordinatorOptions converts the config into service options.
// Call Validate first; an unknown rematch policy falls back to none.
func (c *Config) CoordinatorOptions() service.Options {
	policy, err := service.ParseRematchPolicy(c.RematchPolicy)
	if err != nil {
		policy = service.RematchNone
	}
	return service.Options{
		RoundResetDelay: c.RoundResetDelay,
		Rematch:         policy,
	}
}
