// Package config loads and validates the TOML configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ServerConfig configures the HTTP and WebSocket listener
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// FeedConfig configures the upstream data feed poller
type FeedConfig struct {
	URL                   string `toml:"url"`
	PollIntervalSeconds   int    `toml:"poll_interval_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	AirportsFile          string `toml:"airports_file"`
	BoundariesFile        string `toml:"boundaries_file"`
}

// WeatherConfig configures METAR fetching
type WeatherConfig struct {
	Enabled               bool   `toml:"enabled"`
	APIBaseURL            string `toml:"api_base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	CacheExpiryMinutes    int    `toml:"cache_expiry_minutes"`
	NegativeExpiryMinutes int    `toml:"negative_expiry_minutes"`
	BatchSize             int    `toml:"batch_size"`
}

// RelayConfig tunes the distribution core
type RelayConfig struct {
	Workers      int `toml:"workers"`
	SessionQueue int `toml:"session_queue"`
}

// TracksConfig configures pilot track persistence
type TracksConfig struct {
	Enabled        bool   `toml:"enabled"`
	DBPath         string `toml:"db_path"`
	RetentionHours int    `toml:"retention_hours"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Feed    FeedConfig    `toml:"feed"`
	Weather WeatherConfig `toml:"weather"`
	Relay   RelayConfig   `toml:"relay"`
	Tracks  TracksConfig  `toml:"tracks"`
	Logging LoggingConfig `toml:"logging"`
}

// Default returns the built-in configuration; Load overlays the file on top
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Feed: FeedConfig{
			URL:                   "https://data.vatsim.net/v3/vatsim-data.json",
			PollIntervalSeconds:   15,
			RequestTimeoutSeconds: 10,
			AirportsFile:          "data/airports.json",
			BoundariesFile:        "data/boundaries.json",
		},
		Weather: WeatherConfig{
			Enabled:               true,
			APIBaseURL:            "https://aviationweather.gov/api/data",
			RequestTimeoutSeconds: 10,
			CacheExpiryMinutes:    10,
			NegativeExpiryMinutes: 30,
			BatchSize:             50,
		},
		Relay: RelayConfig{
			Workers:      8,
			SessionQueue: 256,
		},
		Tracks: TracksConfig{
			Enabled:        true,
			DBPath:         "vatmap.db",
			RetentionHours: 24,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file over the defaults and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url must be set")
	}
	if c.Feed.PollIntervalSeconds <= 0 {
		return fmt.Errorf("feed.poll_interval_seconds must be positive")
	}
	if c.Feed.AirportsFile == "" || c.Feed.BoundariesFile == "" {
		return fmt.Errorf("feed.airports_file and feed.boundaries_file must be set")
	}
	if c.Tracks.Enabled && c.Tracks.DBPath == "" {
		return fmt.Errorf("tracks.db_path must be set when tracks are enabled")
	}
	if c.Tracks.RetentionHours <= 0 {
		return fmt.Errorf("tracks.retention_hours must be positive")
	}
	return nil
}

// PollInterval returns the feed poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollIntervalSeconds) * time.Second
}

// FeedTimeout returns the feed request timeout as a duration
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.RequestTimeoutSeconds) * time.Second
}

// TrackRetention returns the track retention window as a duration
func (c *Config) TrackRetention() time.Duration {
	return time.Duration(c.Tracks.RetentionHours) * time.Hour
}
