// Package config loads the engine configuration from an HCL file. A missing
// file yields the full default configuration; partial files are backfilled
// with defaults before validation.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/scoring"
	"github.com/geodle/geodle/internal/session"
)

// Config is the complete engine configuration.
type Config struct {
	Logging  LoggingSettings `hcl:"logging,block"`
	Oracle   OracleSettings  `hcl:"oracle,block"`
	Session  SessionSettings `hcl:"session,block"`
	Results  ResultsSettings `hcl:"results,block"`
	Variants []VariantConfig `hcl:"variant,block"`
}

// LoggingSettings contains log output configuration.
type LoggingSettings struct {
	Level  string `hcl:"level,optional"`
	Pretty bool   `hcl:"pretty,optional"`
}

// OracleSettings tunes the knowledge-oracle gateway.
type OracleSettings struct {
	URL            string `hcl:"url,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	RetryAttempts  int    `hcl:"retry_attempts,optional"`
	RetryBackoffMS int    `hcl:"retry_backoff_ms,optional"`
}

// SessionSettings contains engine-wide session parameters.
type SessionSettings struct {
	IdleTimeoutMinutes   int    `hcl:"idle_timeout_minutes,optional"`
	SweepIntervalSeconds int    `hcl:"sweep_interval_seconds,optional"`
	Locale               string `hcl:"locale,optional"`
}

// ResultsSettings tunes result persistence.
type ResultsSettings struct {
	DatabasePath  string `hcl:"database_path,optional"`
	RetryAttempts int    `hcl:"retry_attempts,optional"`
}

// VariantConfig overrides round parameters for one game variant.
type VariantConfig struct {
	Name          string  `hcl:"name,label"`
	MaxTurns      int     `hcl:"max_turns,optional"`
	BasePoints    int     `hcl:"base_points,optional"`
	PenaltyFactor float64 `hcl:"penalty_factor,optional"`
	MinimumFloor  int     `hcl:"minimum_floor,optional"`
	Cooldown      int     `hcl:"cooldown,optional"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingSettings{
			Level: "info",
		},
		Oracle: OracleSettings{
			URL:            "http://localhost:8100",
			TimeoutSeconds: 10,
			RetryAttempts:  2,
			RetryBackoffMS: 500,
		},
		Session: SessionSettings{
			IdleTimeoutMinutes:   30,
			SweepIntervalSeconds: 60,
			Locale:               "en",
		},
		Results: ResultsSettings{
			DatabasePath:  "geodle.db",
			RetryAttempts: 3,
		},
	}
}

// Load reads the HCL file at path. A nonexistent file is not an error; the
// defaults are returned instead.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Oracle.URL == "" {
		c.Oracle.URL = def.Oracle.URL
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = def.Oracle.TimeoutSeconds
	}
	if c.Oracle.RetryAttempts == 0 {
		c.Oracle.RetryAttempts = def.Oracle.RetryAttempts
	}
	if c.Oracle.RetryBackoffMS == 0 {
		c.Oracle.RetryBackoffMS = def.Oracle.RetryBackoffMS
	}
	if c.Session.IdleTimeoutMinutes == 0 {
		c.Session.IdleTimeoutMinutes = def.Session.IdleTimeoutMinutes
	}
	if c.Session.SweepIntervalSeconds == 0 {
		c.Session.SweepIntervalSeconds = def.Session.SweepIntervalSeconds
	}
	if c.Session.Locale == "" {
		c.Session.Locale = def.Session.Locale
	}
	if c.Results.DatabasePath == "" {
		c.Results.DatabasePath = def.Results.DatabasePath
	}
	if c.Results.RetryAttempts == 0 {
		c.Results.RetryAttempts = def.Results.RetryAttempts
	}

	base := session.DefaultRules()
	for i := range c.Variants {
		v := &c.Variants[i]
		if v.MaxTurns == 0 {
			v.MaxTurns = base.MaxTurns
		}
		if v.BasePoints == 0 {
			v.BasePoints = base.Scoring.BasePoints
		}
		if v.PenaltyFactor == 0 {
			v.PenaltyFactor = base.Scoring.PenaltyFactor
		}
		if v.MinimumFloor == 0 {
			v.MinimumFloor = base.Scoring.MinimumFloor
		}
		if v.Cooldown == 0 {
			v.Cooldown = base.Cooldown
		}
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	if c.Oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("oracle timeout must be positive")
	}
	if c.Oracle.RetryAttempts < 1 {
		return fmt.Errorf("oracle retry attempts must be at least 1")
	}
	if c.Session.IdleTimeoutMinutes <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}

	for _, v := range c.Variants {
		if !catalog.Variant(v.Name).Valid() {
			return fmt.Errorf("variant %s: unknown variant", v.Name)
		}
		if v.MaxTurns < 1 {
			return fmt.Errorf("variant %s: max_turns must be at least 1", v.Name)
		}
		if v.BasePoints <= 0 {
			return fmt.Errorf("variant %s: base_points must be positive", v.Name)
		}
		if v.PenaltyFactor < 0 || v.PenaltyFactor > 1 {
			return fmt.Errorf("variant %s: penalty_factor must be within [0, 1]", v.Name)
		}
		if v.MinimumFloor < 0 || v.MinimumFloor > v.BasePoints {
			return fmt.Errorf("variant %s: minimum_floor must be within [0, base_points]", v.Name)
		}
		if v.Cooldown < 0 {
			return fmt.Errorf("variant %s: cooldown must not be negative", v.Name)
		}
	}

	return nil
}

// OracleTimeout returns the gateway deadline as a duration.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// OracleBackoff returns the base retry delay as a duration.
func (c *Config) OracleBackoff() time.Duration {
	return time.Duration(c.Oracle.RetryBackoffMS) * time.Millisecond
}

// IdleTimeout returns the session idle deadline as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval returns how often the expiry sweep runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSeconds) * time.Second
}

// VariantRules maps the variant blocks onto the per-variant session rules.
func (c *Config) VariantRules() map[catalog.Variant]session.Rules {
	idle := c.IdleTimeout()
	rules := make(map[catalog.Variant]session.Rules, len(c.Variants))
	for _, v := range c.Variants {
		rules[catalog.Variant(v.Name)] = session.Rules{
			MaxTurns: v.MaxTurns,
			Scoring: scoring.Rules{
				BasePoints:    v.BasePoints,
				PenaltyFactor: v.PenaltyFactor,
				MinimumFloor:  v.MinimumFloor,
			},
			IdleTimeout: idle,
			Cooldown:    v.Cooldown,
		}
	}
	return rules
}

// DefaultRules returns the engine-wide fallback rules for variants without a
// dedicated block.
func (c *Config) DefaultRules() session.Rules {
	rules := session.DefaultRules()
	rules.IdleTimeout = c.IdleTimeout()
	return rules
}
