package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Telemetry TelemetryConfig `toml:"telemetry"`
	Database  DatabaseConfig  `toml:"database"`
}

// TelemetryConfig contains settings for the remote telemetry service.
type TelemetryConfig struct {
	BaseURL        string `toml:"base_url"`
	PollSeconds    int    `toml:"poll_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ReadingLimit   int    `toml:"reading_limit"`
}

// DatabaseConfig contains database connection settings for the cycle journal.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PollInterval returns the refresh period as a [time.Duration].
func (t TelemetryConfig) PollInterval() time.Duration {
	return time.Duration(t.PollSeconds) * time.Second
}

// RequestTimeout returns the per-request budget as a [time.Duration].
func (t TelemetryConfig) RequestTimeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides config values from the process environment.
//
// Recognized variables: TDX_BASE_URL, TDX_POLL_SECONDS, TDX_TIMEOUT_SECONDS,
// TDX_READING_LIMIT, TDX_DATABASE_PATH. Invalid numeric values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TDX_BASE_URL"); v != "" {
		c.Telemetry.BaseURL = v
	}
	if v := os.Getenv("TDX_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Telemetry.PollSeconds = n
		}
	}
	if v := os.Getenv("TDX_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Telemetry.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("TDX_READING_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Telemetry.ReadingLimit = n
		}
	}
	if v := os.Getenv("TDX_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
