package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/adastrea-verse/internal/cadence"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cadence.Coalesce, cfg.CadenceMode())
	assert.InDelta(t, 60, cfg.Sim.StepSeconds, 1e-9)
	assert.Equal(t, []string{"player"}, cfg.Sim.Players)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "verse.yaml", `
sim:
  seed: 7
  tick_interval: 250ms
  cadence: catchup
  players: [ada, grace]
api:
  port: 9000
log:
  level: debug
  format: json
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Sim.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.Sim.TickInterval)
	assert.Equal(t, cadence.CatchUp, cfg.CadenceMode())
	assert.Equal(t, []string{"ada", "grace"}, cfg.Sim.Players)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, 30, cfg.API.AdminRate, "untouched fields keep defaults")
	assert.Equal(t, "data/verse.db", cfg.DB.Path)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.API.Port)

	_, err = Load(missing, false)
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "bad.yaml", "sim: [unclosed")
	_, err := Load(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAdminKey, "secret")
	t.Setenv(EnvDB, "")
	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvRandomOrgKey, "rk")

	cfg, err := Load("", true)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.API.AdminKey)
	assert.Empty(t, cfg.DB.Path, "an empty VERSESIM_DB disables the journal")
	assert.Equal(t, 7070, cfg.API.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "rk", cfg.Entropy.RandomOrgKey)
}

func TestEnvPortMustBeNumeric(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	_, err := Load("", true)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero step", func(c *Config) { c.Sim.StepSeconds = 0 }},
		{"zero interval", func(c *Config) { c.Sim.TickInterval = 0 }},
		{"negative speed", func(c *Config) { c.Sim.Speed = -1 }},
		{"no players", func(c *Config) { c.Sim.Players = nil }},
		{"blank player", func(c *Config) { c.Sim.Players = []string{" "} }},
		{"duplicate player", func(c *Config) { c.Sim.Players = []string{"a", "a"} }},
		{"unknown cadence", func(c *Config) { c.Sim.Cadence = "sometimes" }},
		{"port out of range", func(c *Config) { c.API.Port = 70000 }},
		{"zero admin rate", func(c *Config) { c.API.AdminRate = 0 }},
		{"zero event buffer", func(c *Config) { c.Sim.EventBuffer = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "VERSESIM_TEST_DOTENV=from-file\n")
	t.Setenv("VERSESIM_TEST_DOTENV", "")
	os.Unsetenv("VERSESIM_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "from-file", os.Getenv("VERSESIM_TEST_DOTENV"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := LogConfig{Level: "info", Format: "json"}.NewLogger(&buf)
	l.Debug("hidden")
	l.Info("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
