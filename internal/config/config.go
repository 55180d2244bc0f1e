// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. EVENTPLANNER_API_BASE_URL.
const EnvPrefix = "EVENTPLANNER"

// DefaultPath is used when no --config flag is given.
const DefaultPath = "./data/config.yaml"

// Config represents the configuration settings for the application.
type Config struct {
	// APIBaseURL is the fixed base of the events REST API.
	APIBaseURL string `yaml:"api_base_url" mapstructure:"api_base_url"`

	// RequestTimeoutSeconds bounds every API call. Zero means no timeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`

	DatabaseType string `yaml:"database_type" mapstructure:"database_type"`
	DatabaseDir  string `yaml:"database_dir" mapstructure:"database_dir"`
	DatabaseFile string `yaml:"database_file" mapstructure:"database_file"`

	LogFolder  string `yaml:"log_folder" mapstructure:"log_folder"`
	CommandLog string `yaml:"command_log" mapstructure:"command_log"`
	ErrorLog   string `yaml:"error_log" mapstructure:"error_log"`
	InfoLog    string `yaml:"info_log" mapstructure:"info_log"`
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`

	HistoryFile string `yaml:"history_file" mapstructure:"history_file"`

	// Color is one of "auto", "always" or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:8080/api",
		RequestTimeoutSeconds: 0,
		DatabaseType:          "sqlite",
		DatabaseDir:           "./data",
		DatabaseFile:          "eventplanner.db",
		LogFolder:             "./log",
		CommandLog:            "commands.log",
		ErrorLog:              "errors.log",
		InfoLog:               "info.log",
		LogLevel:              "info",
		HistoryFile:           "./data/history",
		Color:                 "auto",
	}
}

// Normalize fills in missing values with defaults so that partially-filled
// configs from older versions still work.
func (c *Config) Normalize() {
	def := DefaultConfig()
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = def.APIBaseURL
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.DatabaseType == "" {
		c.DatabaseType = def.DatabaseType
	}
	if c.DatabaseDir == "" {
		c.DatabaseDir = def.DatabaseDir
	}
	if c.DatabaseFile == "" {
		c.DatabaseFile = def.DatabaseFile
	}
	if c.LogFolder == "" {
		c.LogFolder = def.LogFolder
	}
	if c.CommandLog == "" {
		c.CommandLog = def.CommandLog
	}
	if c.ErrorLog == "" {
		c.ErrorLog = def.ErrorLog
	}
	if c.InfoLog == "" {
		c.InfoLog = def.InfoLog
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.HistoryFile == "" {
		c.HistoryFile = def.HistoryFile
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		c.Color = "auto"
	}
}

// RequestTimeout returns the API timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DatabasePath returns the full path of the local database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DatabaseDir, c.DatabaseFile)
}

// ConfigLoad loads the configuration from the YAML file at path.
// If the file doesn't exist, it creates a default configuration first.
// A .env file next to the config (or in the working directory) is loaded into
// the environment, and EVENTPLANNER_* variables override file values.
func ConfigLoad(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	for _, envFile := range []string{filepath.Join(filepath.Dir(path), ".env"), ".env"} {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := ConfigSave(path, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.Normalize()

	return cfg, nil
}

// setDefaults registers every key so that env overrides apply even when the
// file omits the key.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("api_base_url", def.APIBaseURL)
	v.SetDefault("request_timeout_seconds", def.RequestTimeoutSeconds)
	v.SetDefault("database_type", def.DatabaseType)
	v.SetDefault("database_dir", def.DatabaseDir)
	v.SetDefault("database_file", def.DatabaseFile)
	v.SetDefault("log_folder", def.LogFolder)
	v.SetDefault("command_log", def.CommandLog)
	v.SetDefault("error_log", def.ErrorLog)
	v.SetDefault("info_log", def.InfoLog)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("history_file", def.HistoryFile)
	v.SetDefault("color", def.Color)
}

// ConfigSave writes the configuration to path atomically (temp file + rename)
// with 0600 permissions.
func ConfigSave(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".eventplanner-config-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp config file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing config file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing config file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("error setting config permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
