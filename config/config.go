// Package config loads bizdir settings from a YAML file, an optional .env
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nisimpson/bizdir"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all bizdir configuration.
type Config struct {
	Server     ServerConfig            `yaml:"server"`
	AWS        AWSConfig               `yaml:"aws"`
	Tables     TablesConfig            `yaml:"tables"`
	Validation bizdir.ValidationPolicy `yaml:"validation"`
	Logging    LoggingConfig           `yaml:"logging"`
	Client     ClientConfig            `yaml:"client"`
}

// ServerConfig configures the REST server.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	AllowOrigins    []string `yaml:"allow_origins"` // Empty allows every origin
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

// AWSConfig configures the DynamoDB client.
type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // e.g. http://localhost:8000 for DynamoDB Local
}

// TablesConfig names the DynamoDB tables.
type TablesConfig struct {
	Businesses   string `yaml:"businesses"`
	Counter      string `yaml:"counter"`
	CounterKey   string `yaml:"counter_key"`
	ScanPageSize int32  `yaml:"scan_page_size"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	PerPage int    `yaml:"per_page"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            9000,
			ShutdownTimeout: "10s",
		},
		AWS: AWSConfig{
			Region: "eu-north-1",
		},
		Tables: TablesConfig{
			Businesses: "Businesses",
			Counter:    "idCounter",
			CounterKey: "BusinessId",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:9000",
			Timeout: "10s",
			PerPage: 5,
		},
	}
}

// Load loads configuration from a YAML file. An empty path or a missing file
// yields the defaults. Variables from a .env file next to the working directory
// are loaded without replacing ones already set, then environment overrides
// are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Return defaults if config file doesn't exist
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWS.Region = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		c.AWS.Endpoint = v
	}
	if v := os.Getenv("BIZDIR_BUSINESSES_TABLE"); v != "" {
		c.Tables.Businesses = v
	}
	if v := os.Getenv("BIZDIR_COUNTER_TABLE"); v != "" {
		c.Tables.Counter = v
	}
	if v := os.Getenv("BIZDIR_API_URL"); v != "" {
		c.Client.BaseURL = v
	}
	if v := os.Getenv("BIZDIR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// GetShutdownTimeout returns the server shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetClientTimeout returns the HTTP client timeout as a duration.
func (c *Config) GetClientTimeout() time.Duration {
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Addr returns the listen address of the REST server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Table returns the bizdir table configuration.
func (c *Config) Table() *bizdir.Table {
	t := bizdir.NewTable(c.Tables.Businesses,
		bizdir.WithCounterTable(c.Tables.Counter),
		bizdir.WithCounterKey(c.Tables.CounterKey),
	)
	t.ScanPageSize = c.Tables.ScanPageSize
	return t
}

// DynamoDB returns the settings for bizdir.NewClient.
func (c *Config) DynamoDB() bizdir.ClientConfig {
	return bizdir.ClientConfig{
		Region:   c.AWS.Region,
		Endpoint: c.AWS.Endpoint,
	}
}

// Logger builds a zap logger from the logging section. Verbose forces debug level.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	if c.Logging.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// ValidLogFormats lists the supported log encodings.
var ValidLogFormats = []string{"json", "console"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Tables.Businesses == "" || c.Tables.Counter == "" {
		return fmt.Errorf("table names must not be empty")
	}
	if c.Tables.CounterKey == "" {
		return fmt.Errorf("counter key must not be empty")
	}
	if c.Tables.ScanPageSize < 0 {
		return fmt.Errorf("invalid scan page size: %d", c.Tables.ScanPageSize)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout %q: %w", c.Server.ShutdownTimeout, err)
	}
	if _, err := time.ParseDuration(c.Client.Timeout); err != nil {
		return fmt.Errorf("invalid client timeout %q: %w", c.Client.Timeout, err)
	}
	if c.Client.PerPage <= 0 {
		return fmt.Errorf("invalid page size: %d", c.Client.PerPage)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	validFormat := false
	for _, f := range ValidLogFormats {
		if c.Logging.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}

	return nil
}
