package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). Every field has a
// sensible default so the server runs with no file at all; environment
// variables override the file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Polygon PolygonConfig `yaml:"polygon"`
	Engine  EngineConfig  `yaml:"engine"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	LogLevel  string `yaml:"log_level"`
}

type PolygonConfig struct {
	// BaseURL overrides the Polygon endpoint, mainly for tests.
	// The API key always comes from the POLYGON_API_KEY env var.
	BaseURL string `yaml:"base_url"`
}

// EngineConfig supplies request defaults for runs that omit parameters.
type EngineConfig struct {
	Step      string `yaml:"step"`
	Spread    string `yaml:"spread"`
	RTH       *bool  `yaml:"rth"`
	ExactOnly *bool  `yaml:"exact_only"`
	TopLevels int    `yaml:"top_levels"`
}

// Default returns the built-in configuration.
func Default() *Config {
	rth := true
	exact := false
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			StaticDir: "./web/dist",
			LogLevel:  "info",
		},
		Engine: EngineConfig{
			Step:      "0.01",
			Spread:    "0.01",
			RTH:       &rth,
			ExactOnly: &exact,
			TopLevels: 10,
		},
	}
}

// Load reads path, merges it over the defaults, applies env overrides and
// validates. An empty path yields the defaults (with env overrides).
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("POLYGON_BASE_URL"); v != "" {
		c.Polygon.BaseURL = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	step, err := decimal.NewFromString(c.Engine.Step)
	if err != nil || step.Sign() <= 0 {
		return fmt.Errorf("engine.step must be a positive decimal, got %q", c.Engine.Step)
	}
	spread, err := decimal.NewFromString(c.Engine.Spread)
	if err != nil || spread.Sign() <= 0 {
		return fmt.Errorf("engine.spread must be a positive decimal, got %q", c.Engine.Spread)
	}
	if c.Engine.TopLevels < 0 {
		return fmt.Errorf("engine.top_levels must not be negative, got %d", c.Engine.TopLevels)
	}
	return nil
}

// DefaultRTH resolves the RTH default (true when unset).
func (c *Config) DefaultRTH() bool {
	if c.Engine.RTH == nil {
		return true
	}
	return *c.Engine.RTH
}

// DefaultExactOnly resolves the exact-only default (false when unset).
func (c *Config) DefaultExactOnly() bool {
	if c.Engine.ExactOnly == nil {
		return false
	}
	return *c.Engine.ExactOnly
}
