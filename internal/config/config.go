package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dreamer configuration.
//
// The Gemini API key is deliberately absent: it is supplied by the user at
// runtime and never read from or written to disk.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Generative-text service
	LLM LLMConfig `yaml:"llm"`

	// Symbol catalog
	Catalog CatalogConfig `yaml:"catalog"`

	// Presentation limits
	Display DisplayConfig `yaml:"display"`

	// HTTP surface
	Server ServerConfig `yaml:"server"`

	// Session lifetime
	Memory MemoryConfig `yaml:"memory"`

	// Downloads
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig locates the symbol catalog CSV.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the JSON API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
}

// MemoryConfig configures in-memory session retention.
type MemoryConfig struct {
	// Idle sessions older than this are dropped by the server.
	SessionTTL string `yaml:"session_ttl"`
}

// ExportConfig configures where the TUI writes downloads.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "dreamer",
		Version: "1.0.0",

		LLM: LLMConfig{
			Model:        "gemini-1.5-flash",
			Timeout:      "120s",
			RateInterval: "12s",
			DailyQuota:   250,
			Language:     "English",
		},

		Catalog: CatalogConfig{
			Path: "data/dream_symbols.csv",
		},

		Display: DefaultDisplayConfig(),

		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    "15s",
			WriteTimeout:   "150s",
		},

		Memory: MemoryConfig{
			SessionTTL: "24h",
		},

		Export: ExportConfig{
			Dir: ".",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			DebugMode: false,
			Dir:       ".dreamer/logs",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("DREAMER_CATALOG"); path != "" {
		c.Catalog.Path = path
	}
	if addr := os.Getenv("DREAMER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if model := os.Getenv("DREAMER_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("DREAMER_EXPORT_DIR"); dir != "" {
		c.Export.Dir = dir
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 120*time.Second)
}

// GetRateInterval returns the minimum delay between service calls in a session.
func (c *Config) GetRateInterval() time.Duration {
	return parseDuration(c.LLM.RateInterval, 12*time.Second)
}

// GetSessionTTL returns the idle session TTL as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Memory.SessionTTL, 24*time.Hour)
}

// GetReadTimeout returns the HTTP read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout. It must outlast the LLM timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 150*time.Second)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must be set")
	}
	if c.LLM.DailyQuota < 0 {
		return fmt.Errorf("llm.daily_quota must not be negative (got %d)", c.LLM.DailyQuota)
	}
	if c.LLM.RateInterval != "" {
		if _, err := time.ParseDuration(c.LLM.RateInterval); err != nil {
			return fmt.Errorf("invalid llm.rate_interval %q: %w", c.LLM.RateInterval, err)
		}
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path must be set")
	}
	if err := c.Display.Validate(); err != nil {
		return err
	}
	if !isValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
