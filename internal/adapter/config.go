package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCRAPEDECK_SERVER_URL.
const EnvPrefix = "SCRAPEDECK"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Stream  StreamConfig  `mapstructure:"stream"`
	Poll    PollConfig    `mapstructure:"poll"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds task service configuration
type ServerConfig struct {
	URL            string        `mapstructure:"url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // per command round trip
}

// StreamConfig holds log feed configuration
type StreamConfig struct {
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// PollConfig holds status polling configuration
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// HistoryConfig holds target history configuration
type HistoryConfig struct {
	File  string `mapstructure:"file"` // empty keeps history in memory
	Limit int    `mapstructure:"limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the optional Prometheus listener
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // e.g. ":9090", empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:5001",
			RequestTimeout: 10 * time.Second,
		},
		Stream: StreamConfig{
			ReconnectDelay: 5 * time.Second,
		},
		Poll: PollConfig{
			Interval: time.Second,
			Timeout:  5 * time.Second,
		},
		History: HistoryConfig{
			File:  filepath.Join(defaultDataPath(), "history.db"),
			Limit: 20,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "scrapedeck.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "scrapedeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "scrapedeck")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "scrapedeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "scrapedeck")
	}
}

// DefaultConfigFile is where SaveConfig writes when no path is given
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// newViper builds a viper instance seeded with defaults and env overrides
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()

	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.request_timeout", cfg.Server.RequestTimeout)
	v.SetDefault("stream.reconnect_delay", cfg.Stream.ReconnectDelay)
	v.SetDefault("poll.interval", cfg.Poll.Interval)
	v.SetDefault("poll.timeout", cfg.Poll.Timeout)
	v.SetDefault("history.file", cfg.History.File)
	v.SetDefault("history.limit", cfg.History.Limit)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("metrics.listen", cfg.Metrics.Listen)

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from .env, the config file and environment.
// An empty configFile searches the default config directory and the working
// directory for config.yaml.
func LoadConfig(configFile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	v := newViper(cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.History.File = ExpandPath(cfg.History.File)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv exports variables from path without overriding ones already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// SaveConfig writes cfg as YAML to path, or to the default location when
// path is empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to keep snake_case key names
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.request_timeout", cfg.Server.RequestTimeout.String())
	v.Set("stream.reconnect_delay", cfg.Stream.ReconnectDelay.String())
	v.Set("poll.interval", cfg.Poll.Interval.String())
	v.Set("poll.timeout", cfg.Poll.Timeout.String())
	v.Set("history.file", cfg.History.File)
	v.Set("history.limit", cfg.History.Limit)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("metrics.listen", cfg.Metrics.Listen)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects settings the client cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.url must be an http(s) URL, got %q", c.Server.URL)
	}

	durations := []struct {
		key string
		val time.Duration
	}{
		{"server.request_timeout", c.Server.RequestTimeout},
		{"stream.reconnect_delay", c.Stream.ReconnectDelay},
		{"poll.interval", c.Poll.Interval},
		{"poll.timeout", c.Poll.Timeout},
	}
	for _, d := range durations {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.key, d.val)
		}
	}

	if c.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
