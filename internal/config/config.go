// Package config loads the simulation's runtime settings from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/adastrea-verse/internal/cadence"
)

// Environment variables that override file values.
const (
	EnvAdminKey     = "VERSESIM_ADMIN_KEY"
	EnvDB           = "VERSESIM_DB"
	EnvPort         = "VERSESIM_PORT"
	EnvLogLevel     = "VERSESIM_LOG_LEVEL"
	EnvRandomOrgKey = "RANDOM_ORG_API_KEY"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings for one simulation process.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Content ContentConfig `yaml:"content"`
	DB      DBConfig      `yaml:"db"`
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Entropy EntropyConfig `yaml:"entropy"`
}

// SimConfig controls the tick loop and the simulated population.
type SimConfig struct {
	Seed uint64 `yaml:"seed"`
	// TickInterval is the wall-clock time between engine ticks at speed 1.
	TickInterval time.Duration `yaml:"tick_interval"`
	// StepSeconds is how much simulated time one tick advances.
	StepSeconds float64 `yaml:"step_seconds"`
	Speed       float64 `yaml:"speed"`
	// Cadence is "coalesce" or "catchup".
	Cadence string   `yaml:"cadence"`
	Players []string `yaml:"players"`
	// HighHeat is the heat at which an antagonist counts as dangerous.
	HighHeat int `yaml:"high_heat"`
	// EventBuffer caps the in-memory event log.
	EventBuffer int `yaml:"event_buffer"`
}

// ContentConfig selects the catalog. An empty path uses the embedded one.
type ContentConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DBConfig points at the sqlite journal. An empty path disables it.
type DBConfig struct {
	Path string `yaml:"path,omitempty"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key,omitempty"`
	// AdminRate is the number of admin requests allowed per AdminWindow.
	AdminRate   int           `yaml:"admin_rate"`
	AdminWindow time.Duration `yaml:"admin_window"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EntropyConfig optionally routes rival rolls through random.org.
type EntropyConfig struct {
	RandomOrgKey      string `yaml:"random_org_key,omitempty"`
	RandomOrgEndpoint string `yaml:"random_org_endpoint,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Sim: SimConfig{
			Seed:         42,
			TickInterval: time.Second,
			StepSeconds:  60,
			Speed:        1,
			Cadence:      cadence.Coalesce.String(),
			Players:      []string{"player"},
			HighHeat:     70,
			EventBuffer:  500,
		},
		DB: DBConfig{
			Path: "data/verse.db",
		},
		API: APIConfig{
			Port:        8080,
			AdminRate:   30,
			AdminWindow: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing path is not an error when optional is true.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && optional:
			slog.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
		slog.Debug("loaded environment file", "path", f)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvAdminKey); v != "" {
		c.API.AdminKey = v
	}
	if v, ok := os.LookupEnv(EnvDB); ok {
		c.DB.Path = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.API.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvRandomOrgKey); v != "" && c.Entropy.RandomOrgKey == "" {
		c.Entropy.RandomOrgKey = v
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Sim.StepSeconds <= 0:
		return fmt.Errorf("%w: sim.step_seconds must be positive", ErrInvalid)
	case c.Sim.TickInterval <= 0:
		return fmt.Errorf("%w: sim.tick_interval must be positive", ErrInvalid)
	case c.Sim.Speed < 0:
		return fmt.Errorf("%w: sim.speed must not be negative", ErrInvalid)
	case len(c.Sim.Players) == 0:
		return fmt.Errorf("%w: sim.players is empty", ErrInvalid)
	case c.Sim.EventBuffer <= 0:
		return fmt.Errorf("%w: sim.event_buffer must be positive", ErrInvalid)
	case c.API.Port < 0 || c.API.Port > 65535:
		return fmt.Errorf("%w: api.port %d out of range", ErrInvalid, c.API.Port)
	case c.API.AdminRate <= 0 || c.API.AdminWindow <= 0:
		return fmt.Errorf("%w: api admin rate limit must be positive", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Sim.Players))
	for _, p := range c.Sim.Players {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: blank player name", ErrInvalid)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalid, p)
		}
		seen[p] = true
	}
	if _, ok := cadence.ParseMode(c.Sim.Cadence); !ok {
		return fmt.Errorf("%w: unknown cadence %q", ErrInvalid, c.Sim.Cadence)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// CadenceMode returns the parsed tick cadence.
func (c *Config) CadenceMode() cadence.Mode {
	m, _ := cadence.ParseMode(c.Sim.Cadence)
	return m
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the process logger.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
