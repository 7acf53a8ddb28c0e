// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Site      SiteConfig      `mapstructure:"site"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	GNews     GNewsConfig     `mapstructure:"gnews"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Events    EventsConfig    `mapstructure:"events"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// AuthConfig defines API authentication toggles for the admin endpoints.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// SiteConfig holds site identity used in authored content defaults.
type SiteConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
}

// MongoConfig controls access to the article document store.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// AnalyticsConfig controls the visit-tracking store and its business
// windows. The window durations are arbitrary site thresholds carried over
// as configuration rather than hardcoded.
type AnalyticsConfig struct {
	DSN                  string `mapstructure:"dsn"`
	SessionWindowMinutes int    `mapstructure:"session_window_minutes"`
	ActiveWindowMinutes  int    `mapstructure:"active_window_minutes"`
	ExitRewindMinutes    int    `mapstructure:"exit_rewind_minutes"`
}

// SessionWindow is how long a repeat view of the same page by the same
// visitor counts as the same session.
func (a AnalyticsConfig) SessionWindow() time.Duration {
	return time.Duration(a.SessionWindowMinutes) * time.Minute
}

// ActiveWindow is the heartbeat recency that counts a visitor as active.
func (a AnalyticsConfig) ActiveWindow() time.Duration {
	return time.Duration(a.ActiveWindowMinutes) * time.Minute
}

// ExitRewind is how far an exit beacon rewinds the last heartbeat so the
// visitor drops out of the active set immediately.
func (a AnalyticsConfig) ExitRewind() time.Duration {
	return time.Duration(a.ExitRewindMinutes) * time.Minute
}

// GNewsConfig configures the external news source client. An empty APIKey
// disables the browse-triggered ingestion path.
type GNewsConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Lang           string `mapstructure:"lang"`
	Country        string `mapstructure:"country"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout bounds one external fetch so a hung call cannot stall the sweep.
func (g GNewsConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// IngestConfig governs the background ingestion worker and sweep.
type IngestConfig struct {
	QueueDepth    int    `mapstructure:"queue_depth"`
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// StorageConfig selects the image blob provider.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
	PublicURL string `mapstructure:"public_url"`
}

// EventsConfig holds metadata for publish-subscribe notifications emitted
// after ingestion runs.
type EventsConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.timeout_seconds", 60)
	v.SetDefault("site.name", "News Chakra")
	v.SetDefault("mongo.database", "newsdesk")
	v.SetDefault("analytics.session_window_minutes", 30)
	v.SetDefault("analytics.active_window_minutes", 5)
	v.SetDefault("analytics.exit_rewind_minutes", 10)
	v.SetDefault("gnews.base_url", "https://gnews.io/api/v4")
	v.SetDefault("gnews.lang", "en")
	v.SetDefault("gnews.country", "in")
	v.SetDefault("gnews.timeout_seconds", 10)
	v.SetDefault("ingest.queue_depth", 32)
	v.SetDefault("ingest.sweep_schedule", "0 */6 * * *")
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("storage.prefix", "uploads")
	v.SetDefault("events.provider", "noop")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Analytics.SessionWindowMinutes <= 0 {
		return fmt.Errorf("analytics.session_window_minutes must be > 0")
	}
	if c.Analytics.ActiveWindowMinutes <= 0 {
		return fmt.Errorf("analytics.active_window_minutes must be > 0")
	}
	if c.GNews.TimeoutSeconds <= 0 {
		return fmt.Errorf("gnews.timeout_seconds must be > 0")
	}
	if c.Ingest.QueueDepth <= 0 {
		return fmt.Errorf("ingest.queue_depth must be > 0")
	}
	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
		}
	case "local", "noop":
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	switch c.Events.Provider {
	case "pubsub":
		if c.Events.ProjectID == "" || c.Events.TopicName == "" {
			return fmt.Errorf("events.project_id and events.topic_name must be set when events.provider is pubsub")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown events provider: %s", c.Events.Provider)
	}
	return nil
}
