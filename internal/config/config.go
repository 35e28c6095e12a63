// Package config provides application configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig
	Journal   JournalConfig
	Analysis  AnalysisConfig
	Analytics AnalyticsConfig
	Server    ServerConfig
	LogLevel  string
}

// DataConfig holds local persistence settings.
type DataConfig struct {
	Dir string
}

// JournalConfig holds journal behavior settings.
type JournalConfig struct {
	HistoryLimit  int
	AutosaveDelay time.Duration
	MinWordCount  int
	Locale        string
}

// AnalysisConfig holds inference sidecar settings.
type AnalysisConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// AnalyticsConfig holds the optional remote analytics sink.
type AnalyticsConfig struct {
	Enabled  bool
	Endpoint string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads configuration from environment variables with the QUILL_
// prefix.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("quill")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Data: DataConfig{
			Dir: v.GetString("data.dir"),
		},
		Journal: JournalConfig{
			HistoryLimit:  v.GetInt("journal.history_limit"),
			AutosaveDelay: v.GetDuration("journal.autosave_delay"),
			MinWordCount:  v.GetInt("journal.min_word_count"),
			Locale:        v.GetString("journal.locale"),
		},
		Analysis: AnalysisConfig{
			Endpoint: v.GetString("analysis.endpoint"),
			Timeout:  v.GetDuration("analysis.timeout"),
		},
		Analytics: AnalyticsConfig{
			Enabled:  v.GetBool("analytics.enabled"),
			Endpoint: v.GetString("analytics.endpoint"),
		},
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		LogLevel: v.GetString("log.level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("data.dir", filepath.Join(home, ".quill"))

	v.SetDefault("journal.history_limit", 100)
	v.SetDefault("journal.autosave_delay", 2*time.Second)
	v.SetDefault("journal.min_word_count", 10)
	v.SetDefault("journal.locale", "en")

	v.SetDefault("analysis.endpoint", "http://localhost:8550")
	v.SetDefault("analysis.timeout", 60*time.Second)

	v.SetDefault("analytics.enabled", false)
	v.SetDefault("analytics.endpoint", "")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8551)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("log.level", "info")
}

// Validate checks that all required configuration is present and sane.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Journal.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive (got %d)", c.Journal.HistoryLimit)
	}
	if c.Journal.MinWordCount <= 0 {
		return fmt.Errorf("minimum word count must be positive (got %d)", c.Journal.MinWordCount)
	}
	if c.Journal.Locale != "en" && c.Journal.Locale != "zh" {
		return fmt.Errorf("unsupported locale %q (supported: en, zh)", c.Journal.Locale)
	}
	if c.Analytics.Enabled && c.Analytics.Endpoint == "" {
		return fmt.Errorf("analytics endpoint is required when analytics is enabled")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// DatabasePath returns the bbolt file location under the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.Dir, "quill.db")
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
