package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

const (
	// EnvToken is the environment variable holding the PushBullet access
	// token. When set it takes precedence over the config file, so the
	// example commands run without any config present.
	EnvToken = "PUSHBULLET_TOKEN"

	MinRelayWorkers = 1
	MaxRelayWorkers = 100
	MinQueueSize    = 1
	MaxQueueSize    = 10000
)

// Config represents the main application configuration
type Config struct {
	BindAddress  string           `toml:"bind_address"`
	Port         int              `toml:"port"`
	Username     string           `toml:"username"`
	Password     string           `toml:"password"`
	Loglevel     string           `toml:"loglevel"`
	RelayWorkers int              `toml:"relay_workers"`
	QueueSize    int              `toml:"queue_size"`
	Pushbullet   PushbulletConfig `toml:"pushbullet"`
}

// PushbulletConfig holds PushBullet API configuration
type PushbulletConfig struct {
	APIKey string `toml:"api_key"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		BindAddress:  "0.0.0.0",
		Port:         8066,
		Loglevel:     "info",
		RelayWorkers: 4,
		QueueSize:    100,
	}
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "gopushbullet")

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads configuration from a TOML file
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// TokenFromEnv returns the access token from the environment, if set.
func TokenFromEnv() string {
	return os.Getenv(EnvToken)
}

// Token returns the access token to use: the environment variable wins,
// otherwise the config file value.
func (c *Config) Token() string {
	if token := TokenFromEnv(); token != "" {
		return token
	}
	return c.Pushbullet.APIKey
}

// Validate checks if the configuration is valid for running the relay server
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if _, err := logrus.ParseLevel(c.Loglevel); err != nil {
		return fmt.Errorf("loglevel must be one of: panic, fatal, error, warn, info, debug, trace")
	}
	if c.Token() == "" {
		return fmt.Errorf("pushbullet.api_key is required (or set %s)", EnvToken)
	}
	if c.RelayWorkers < MinRelayWorkers || c.RelayWorkers > MaxRelayWorkers {
		return fmt.Errorf("relay_workers must be between %d and %d", MinRelayWorkers, MaxRelayWorkers)
	}
	if c.QueueSize < MinQueueSize || c.QueueSize > MaxQueueSize {
		return fmt.Errorf("queue_size must be between %d and %d", MinQueueSize, MaxQueueSize)
	}

	return nil
}
