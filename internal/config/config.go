// Package config loads application configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Hunt     HuntConfig     `mapstructure:"hunt"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// HuntConfig holds search dispatcher configuration.
type HuntConfig struct {
	// SearchAllSources forces every source in the priority order to be
	// queried even when an earlier one already returned releases.
	SearchAllSources bool `mapstructure:"search_all_sources"`
	// MaxResultsPerSource caps the aggregate release list to
	// cap * sourcesSearched. 0 disables the cap.
	MaxResultsPerSource int `mapstructure:"max_results_per_source"`
}

// JobsConfig holds scheduled job configuration.
type JobsConfig struct {
	// AutoHuntIntervalHours is how often the auto-hunt job runs.
	AutoHuntIntervalHours int `mapstructure:"autohunt_interval_hours"`
	// CompletionCron is the schedule for the download-completion monitor.
	CompletionCron string `mapstructure:"completion_cron"`
	// PreventOverlap skips a job tick while the previous tick of the same
	// job is still running. Off by default: overlapping ticks are the
	// documented behavior.
	PreventOverlap bool `mapstructure:"prevent_overlap"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8484,
		},
		Database: DatabaseConfig{
			Path: "./data/retriever.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Hunt: HuntConfig{
			SearchAllSources:    false,
			MaxResultsPerSource: 0,
		},
		Jobs: JobsConfig{
			AutoHuntIntervalHours: 12,
			CompletionCron:        "* * * * *",
			PreventOverlap:        false,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.retriever")
	}

	v.SetEnvPrefix("RETRIEVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)

	v.SetDefault("hunt.search_all_sources", d.Hunt.SearchAllSources)
	v.SetDefault("hunt.max_results_per_source", d.Hunt.MaxResultsPerSource)

	v.SetDefault("jobs.autohunt_interval_hours", d.Jobs.AutoHuntIntervalHours)
	v.SetDefault("jobs.completion_cron", d.Jobs.CompletionCron)
	v.SetDefault("jobs.prevent_overlap", d.Jobs.PreventOverlap)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
