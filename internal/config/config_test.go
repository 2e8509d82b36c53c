package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodle/geodle/internal/catalog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geodle.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.OracleTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.OracleBackoff())
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, time.Minute, cfg.SweepInterval())
	assert.Empty(t, cfg.Variants)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
logging {
  level  = "debug"
  pretty = true
}

oracle {
  url             = "http://oracle.internal:9000"
  timeout_seconds = 5
  retry_attempts  = 3
}

session {
  idle_timeout_minutes   = 10
  sweep_interval_seconds = 15
  locale                 = "pl"
}

results {
  database_path = "/var/lib/geodle/results.db"
}

variant "countries" {
  max_turns      = 25
  base_points    = 200
  penalty_factor = 0.5
  minimum_floor  = 20
  cooldown       = 10
}

variant "powiaty" {
  max_turns = 15
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, "http://oracle.internal:9000", cfg.Oracle.URL)
	assert.Equal(t, 5*time.Second, cfg.OracleTimeout())
	assert.Equal(t, 3, cfg.Oracle.RetryAttempts)
	assert.Equal(t, 10*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "pl", cfg.Session.Locale)
	assert.Equal(t, "/var/lib/geodle/results.db", cfg.Results.DatabasePath)

	rules := cfg.VariantRules()
	countries := rules[catalog.Countries]
	assert.Equal(t, 25, countries.MaxTurns)
	assert.Equal(t, 200, countries.Scoring.BasePoints)
	assert.Equal(t, 0.5, countries.Scoring.PenaltyFactor)
	assert.Equal(t, 10, countries.Cooldown)
	assert.Equal(t, 10*time.Minute, countries.IdleTimeout)
}

func TestPartialVariantBlockIsBackfilled(t *testing.T) {
	path := writeConfig(t, `
variant "us_states" {
  max_turns = 12
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	rules := cfg.VariantRules()[catalog.USStates]
	assert.Equal(t, 12, rules.MaxTurns)
	assert.Equal(t, 100, rules.Scoring.BasePoints)
	assert.Equal(t, 0.6, rules.Scoring.PenaltyFactor)
	assert.Equal(t, 10, rules.Scoring.MinimumFloor)
	assert.Equal(t, 5, rules.Cooldown)
}

func TestLoadRejectsUnknownVariant(t *testing.T) {
	path := writeConfig(t, `
variant "oceans" {
  max_turns = 12
}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variant")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", `logging { level = "loud" }`},
		{"penalty factor above one", `variant "countries" { penalty_factor = 1.5 }`},
		{"floor above base", `variant "countries" { base_points = 50 minimum_floor = 60 }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `variant "countries" {`))
	assert.Error(t, err)
}
