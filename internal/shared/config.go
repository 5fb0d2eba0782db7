package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Workflow WorkflowConfig `toml:"workflow"`
}

// AppConfig contains settings that shape recruiter-facing output.
type AppConfig struct {
	CompanyName  string `toml:"company_name"`
	DemoFallback bool   `toml:"demo_fallback"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	APIKey         string   `toml:"api_key"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WorkflowConfig contains settings for the automation webhook service.
//
// Durations are kept as strings in the file and parsed on access.
type WorkflowConfig struct {
	BaseURL    string              `toml:"base_url"`
	APIKey     string              `toml:"api_key"`
	Timeout    string              `toml:"timeout"`
	MaxRetries int                 `toml:"max_retries"`
	BaseDelay  string              `toml:"base_delay"`
	RateLimit  float64             `toml:"rate_limit"`
	Endpoints  map[string][]string `toml:"endpoints"`
}

// TimeoutDuration parses Timeout, defaulting to 30s when unset.
func (w WorkflowConfig) TimeoutDuration() (time.Duration, error) {
	return parseDurationOr(w.Timeout, 30*time.Second, "workflow.timeout")
}

// BaseDelayDuration parses BaseDelay, defaulting to 1s when unset.
func (w WorkflowConfig) BaseDelayDuration() (time.Duration, error) {
	return parseDurationOr(w.BaseDelay, time.Second, "workflow.base_delay")
}

func parseDurationOr(raw string, def time.Duration, field string) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s %q: %v", ErrInvalidConfig, field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, field)
	}
	return d, nil
}

// Validate checks fields that cannot be defaulted at use sites.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Workflow.MaxRetries < 0 {
		return fmt.Errorf("%w: workflow.max_retries must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Workflow.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Workflow.BaseDelayDuration(); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}
